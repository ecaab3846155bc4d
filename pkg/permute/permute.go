package permute

import (
	"encoding/binary"
	"iter"
	"math/bits"

	sbits "github.com/soniakeys/bits"
	"github.com/zeebo/xxh3"
)

const (
	seedMulA = 3
	seedMulB = 5
)

// Set is an immutable pseudorandom permutation of [0, 2^b).
// It is safe for concurrent use.
type Set struct {
	bits   uint
	odd    uint64 // 1 when bits is odd
	lShift uint
	hrMask uint64
	grMask uint64
	gbMask uint64
	seeds  [2]uint64
}

// New builds a permutation covering [0, 2^ceil(log2 n)) keyed by seed.
// For n <= 1 the domain is the single value 0.
func New(n, seed uint64) *Set {
	b := ceilLog2(n)
	odd := uint64(b & 1)
	half := b / 2

	s := &Set{
		bits:   b,
		odd:    odd,
		lShift: half + uint(odd),
		hrMask: (uint64(1) << (half + uint(odd))) - 1,
		grMask: (uint64(1) << half) - 1,
		gbMask: odd << half,
	}
	s.seeds[0] = seed * seedMulA
	s.seeds[1] = s.seeds[0] * seedMulB
	return s
}

// Bits returns the bit width b of the domain.
func (s *Set) Bits() uint { return s.bits }

// Size returns the domain size 2^b.
func (s *Set) Size() uint64 { return uint64(1) << s.bits }

// Index returns the image of i. i must be below Size.
func (s *Set) Index(i uint64) uint64 {
	return s.h(s.g(i, s.seeds[0]), s.seeds[1])
}

// All yields Index(0), Index(1), ..., Index(Size()-1).
func (s *Set) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i := range s.Size() {
			if !yield(s.Index(i)) {
				return
			}
		}
	}
}

// Verify scans the whole domain and reports whether every value was hit
// exactly once. Memory use is one bit per domain element.
func (s *Set) Verify() bool {
	if s.bits >= bits.UintSize-1 {
		return false
	}
	seen := sbits.New(int(s.Size()))
	for v := range s.All() {
		if v >= s.Size() || seen.Bit(int(v)) == 1 {
			return false
		}
		seen.SetBit(int(v), 1)
	}
	return true
}

// h is the round splitting i as L | R | parity.
func (s *Set) h(i, seed uint64) uint64 {
	l := i >> s.lShift
	r := (i & s.hrMask) >> s.odd
	p := i & s.odd

	mixed := (hash(r, seed) & s.grMask) ^ l
	return (r << s.lShift) | (mixed << s.odd) | p
}

// g is the round splitting i as L | parity | R.
func (s *Set) g(i, seed uint64) uint64 {
	l := i >> s.lShift
	r := i & s.grMask
	p := i & s.gbMask

	mixed := (hash(r, seed) & s.grMask) ^ l
	return (r << s.lShift) | mixed | p
}

func hash(v, seed uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return xxh3.HashSeed(buf[:], seed)
}

// ceilLog2 returns ceil(log2 n), with ceilLog2(0) = ceilLog2(1) = 0.
func ceilLog2(n uint64) uint {
	if n <= 1 {
		return 0
	}
	return uint(bits.Len64(n - 1))
}
