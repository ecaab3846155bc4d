package generator

import (
	"math/bits"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/permute"
	"github.com/matzehuels/streamgen/pkg/stream"
)

const staticName = "StaticErdos"

// Static emits a random graph on n vertices as a sequence of distinct INSERT
// updates, without materializing the edge universe.
//
// A permutation over the n*n/2 pair indices is walked in order. Each index
// decodes either to an unordered pair or to one of n/2 diagonal slots; the
// diagonal decodes are skipped.
type Static struct {
	n      stream.VertexID
	vBits  uint
	total  uint64
	perm   *permute.Set
	cursor uint64
	skip   uint64
}

// NewStatic returns a generator of floor(C(n,2) * density) distinct edges.
// n must be a power of two and density must lie in (0, 1].
func NewStatic(n stream.VertexID, density float64, seed uint64, opts ...Option) (*Static, error) {
	if err := errors.ValidatePowerOfTwo(staticName, uint64(n)); err != nil {
		return nil, err
	}
	if err := errors.ValidateDensity(staticName, density); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	vBits := uint(bits.TrailingZeros64(uint64(n)))
	s := &Static{
		n:     n,
		vBits: vBits,
		total: uint64(float64(adjacency.Pairs(n)) * density),
		perm:  permute.New(uint64(n)*uint64(n)/2, seed),
	}
	o.logger.Debug("static generator ready",
		"vertices", n,
		"updates", s.total,
		"permutation_bits", s.perm.Bits())
	return s, nil
}

// Name implements the naming convention used by [Name].
func (s *Static) Name() string { return staticName }

// NumVertices returns n.
func (s *Static) NumVertices() stream.VertexID { return s.n }

// NumUpdates returns the number of edges the generator emits.
func (s *Static) NumUpdates() uint64 { return s.total }

// Next returns the next INSERT update.
func (s *Static) Next() (stream.Update, bool) {
	if s.cursor >= s.total {
		return stream.Update{}, false
	}
	e := s.decode(s.perm.Index(s.cursor + s.skip))
	for e.IsSelfLoop() {
		s.skip++
		e = s.decode(s.perm.Index(s.cursor + s.skip))
	}
	s.cursor++
	return stream.Update{Type: stream.Insert, Edge: e.Canonical()}, true
}

// decode maps a pair index to an edge. The high bits select an even source
// row, the low bits a destination; entries below the diagonal of the even
// row are folded onto the odd row above it.
func (s *Static) decode(p uint64) stream.Edge {
	src := (p >> s.vBits) << 1
	dst := p & (uint64(s.n) - 1)
	if src > dst && dst&1 == 0 {
		src++
		dst++
	}
	return stream.Edge{Src: stream.VertexID(src), Dst: stream.VertexID(dst)}
}
