package permute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBitWidth(t *testing.T) {
	tests := []struct {
		n    uint64
		bits uint
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{28, 5},
		{32, 5},
		{33, 6},
		{1 << 20, 20},
		{1<<20 + 1, 21},
	}

	for _, tt := range tests {
		s := New(tt.n, 7)
		assert.Equal(t, tt.bits, s.Bits(), "n=%d", tt.n)
		assert.Equal(t, uint64(1)<<tt.bits, s.Size(), "n=%d", tt.n)
	}
}

func TestIndexValues(t *testing.T) {
	// Reference outputs for seed 42. The even width exercises the plain
	// split; the odd width carries a parity bit through both rounds.
	tests := []struct {
		bits uint
		want map[uint64]uint64
	}{
		{10, map[uint64]uint64{0: 366, 1: 298, 2: 1005, 3: 819, 7: 593, 100: 101, 1023: 474}},
		{11, map[uint64]uint64{0: 361, 1: 281, 2: 1003, 3: 817, 7: 600, 100: 1049, 2047: 1524}},
	}
	for _, tt := range tests {
		s := New(uint64(1)<<tt.bits, 42)
		for i, want := range tt.want {
			assert.Equal(t, want, s.Index(i), "bits=%d i=%d", tt.bits, i)
		}
	}
}

func TestBijection(t *testing.T) {
	seeds := []uint64{0, 1, 42, 287424, 0xdeadbeefcafe}
	for b := uint(0); b <= 16; b++ {
		for _, seed := range seeds {
			s := New(uint64(1)<<b, seed)
			require.True(t, s.Verify(), "bits=%d seed=%d", b, seed)
		}
	}
}

func TestBijectionLarge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large domain scan in short mode")
	}
	// One even and one odd width, as the parity bit only exists for odd widths.
	for _, b := range []uint{18, 19} {
		s := New(uint64(1)<<b, 1234567)
		require.True(t, s.Verify(), "bits=%d", b)
	}
}

func TestBijectionNonPowerOfTwo(t *testing.T) {
	// The domain is the bit ceiling, so every value below it is still covered.
	s := New(1000, 99)
	require.Equal(t, uint64(1024), s.Size())

	seen := make(map[uint64]bool, s.Size())
	for v := range s.All() {
		require.Less(t, v, s.Size())
		require.False(t, seen[v], "duplicate %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, 1024)
}

func TestDeterministic(t *testing.T) {
	a := New(1<<12, 555)
	b := New(1<<12, 555)
	for i := range a.Size() {
		require.Equal(t, a.Index(i), b.Index(i))
	}
}

func TestSeedChangesOrder(t *testing.T) {
	a := New(1<<12, 1)
	b := New(1<<12, 2)

	differ := 0
	for i := range a.Size() {
		if a.Index(i) != b.Index(i) {
			differ++
		}
	}
	assert.Greater(t, differ, int(a.Size()/2))
}

func TestNotIdentity(t *testing.T) {
	s := New(1<<10, 42)
	fixed := 0
	for i := range s.Size() {
		if s.Index(i) == i {
			fixed++
		}
	}
	assert.Less(t, fixed, 64)
}

func TestAllStopsEarly(t *testing.T) {
	s := New(1<<8, 3)
	n := 0
	for range s.All() {
		n++
		if n == 10 {
			break
		}
	}
	assert.Equal(t, 10, n)
}

func TestSingleElementDomain(t *testing.T) {
	s := New(1, 42)
	assert.Equal(t, uint64(0), s.Index(0))
	assert.True(t, s.Verify())
}

func BenchmarkIndex(b *testing.B) {
	s := New(1<<30, 42)
	var sum uint64
	for i := 0; i < b.N; i++ {
		sum += s.Index(uint64(i) & (s.Size() - 1))
	}
	_ = sum
}
