// Package adjacency tracks edge presence for a simple undirected graph as a
// triangular bit array: one bit per unordered vertex pair, n*(n-1)/2 bits in
// total, instead of a dense n*n matrix.
//
// A Matrix is used transiently to replay update streams: generators assign
// INSERT/DELETE types with it, and tools use it to validate or collapse a
// stream into its final graph.
package adjacency

import (
	"iter"

	"github.com/soniakeys/bits"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// Matrix is a presence flag per unordered pair of vertices in [0, n).
type Matrix struct {
	n     uint64
	set   bits.Bits
	count uint64
}

// New returns an empty Matrix over n vertices.
func New(n stream.VertexID) *Matrix {
	size := Pairs(n)
	return &Matrix{n: uint64(n), set: bits.New(int(size))}
}

// Pairs returns the number of unordered pairs over n vertices.
func Pairs(n stream.VertexID) uint64 {
	v := uint64(n)
	if v < 2 {
		return 0
	}
	return v * (v - 1) / 2
}

// Vertices returns the vertex count.
func (m *Matrix) Vertices() stream.VertexID { return stream.VertexID(m.n) }

// Count returns the number of present pairs.
func (m *Matrix) Count() uint64 { return m.count }

// index maps a canonical pair (lo < hi) to its bit: row lo starts after the
// n-1 + n-2 + ... + n-lo pairs of the earlier rows.
func (m *Matrix) index(e stream.Edge) (int, error) {
	c := e.Canonical()
	if c.IsSelfLoop() {
		return 0, errors.New(errors.ErrCodeInvalidInput, "self loop %s has no adjacency slot", e)
	}
	if uint64(c.Dst) >= m.n {
		return 0, errors.New(errors.ErrCodeInvalidInput, "edge %s out of range for %d vertices", e, m.n)
	}
	lo, hi := uint64(c.Src), uint64(c.Dst)
	return int(lo*(2*m.n-lo-1)/2 + (hi - lo - 1)), nil
}

// Has reports whether e is present.
func (m *Matrix) Has(e stream.Edge) (bool, error) {
	i, err := m.index(e)
	if err != nil {
		return false, err
	}
	return m.set.Bit(i) == 1, nil
}

// Toggle flips e and returns whether it is present afterwards.
func (m *Matrix) Toggle(e stream.Edge) (bool, error) {
	i, err := m.index(e)
	if err != nil {
		return false, err
	}
	if m.set.Bit(i) == 1 {
		m.set.SetBit(i, 0)
		m.count--
		return false, nil
	}
	m.set.SetBit(i, 1)
	m.count++
	return true, nil
}

// Set marks e present or absent.
func (m *Matrix) Set(e stream.Edge, present bool) error {
	i, err := m.index(e)
	if err != nil {
		return err
	}
	was := m.set.Bit(i) == 1
	switch {
	case present && !was:
		m.set.SetBit(i, 1)
		m.count++
	case !present && was:
		m.set.SetBit(i, 0)
		m.count--
	}
	return nil
}

// Apply replays one update: the type it should have given the current state
// is returned (Delete if e is present, Insert otherwise) and e is toggled.
func (m *Matrix) Apply(e stream.Edge) (stream.UpdateType, error) {
	present, err := m.Toggle(e)
	if err != nil {
		return 0, err
	}
	if present {
		return stream.Insert, nil
	}
	return stream.Delete, nil
}

// Edges yields the present pairs in ascending canonical order.
func (m *Matrix) Edges() iter.Seq[stream.Edge] {
	return func(yield func(stream.Edge) bool) {
		i := 0
		for lo := uint64(0); lo+1 < m.n; lo++ {
			for hi := lo + 1; hi < m.n; hi++ {
				if m.set.Bit(i) == 1 {
					if !yield(stream.Edge{Src: stream.VertexID(lo), Dst: stream.VertexID(hi)}) {
						return
					}
				}
				i++
			}
		}
	}
}
