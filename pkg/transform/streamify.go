package transform

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// SeekReader is a [stream.Reader] whose cursor can be repositioned.
type SeekReader interface {
	stream.Reader
	stream.Seeker
}

// StreamifyOptions controls [Streamify].
type StreamifyOptions struct {
	// Checkpoints are densities in [0, 1], as fractions of the source's
	// updates. The output moves the graph from one checkpoint to the next,
	// inserting or deleting source edges as needed.
	Checkpoints []float64

	// Extra is the number of random insert/delete pairs added per source
	// update moved between two checkpoints. 2 doubles the churn of a
	// checkpoint.
	Extra float64

	// Preprocessed starts from density 1: the whole source graph is taken as
	// already loaded, so the first checkpoint deletes down to its density.
	Preprocessed bool

	// Shuffle permutes the source updates before streamifying. The source is
	// held in memory while shuffled.
	Shuffle bool

	Seed   uint64
	Logger *log.Logger
}

// Validate checks the option ranges.
func (o StreamifyOptions) Validate() error {
	if len(o.Checkpoints) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one density checkpoint is required")
	}
	for i, d := range o.Checkpoints {
		if d < 0 || d > 1 || math.IsNaN(d) {
			return errors.New(errors.ErrCodeInvalidInput, "checkpoint %d: density %v out of range [0, 1]", i, d)
		}
	}
	if o.Extra < 0 || math.IsNaN(o.Extra) {
		return errors.New(errors.ErrCodeInvalidInput, "extra factor %v must be >= 0", o.Extra)
	}
	return nil
}

// StreamifyStats summarizes a streamify run.
type StreamifyStats struct {
	Updates     uint64 // updates written
	Moved       uint64 // source updates written
	ExtraPairs  uint64 // random insert/delete pairs written
	Checkpoints int
}

// Streamify treats the updates of src as the edges of a graph and writes a
// stream that walks that graph through a series of density checkpoints.
// Moving from density a to b writes the source updates in
// [floor(a*m), floor(b*m)) as inserts, or those in [floor(b*m), floor(a*m))
// as deletes when b < a, where m is the source length. Between them it
// interleaves floor(moved*Extra) random edge insertions and the matching
// deletions, so extra edges never outlive their checkpoint. Output types are
// assigned by replay, starting from the empty graph (or from the full source
// graph when Preprocessed).
func Streamify(ctx context.Context, src SeekReader, dst stream.Writer, opts StreamifyOptions) (StreamifyStats, error) {
	var stats StreamifyStats
	if err := opts.Validate(); err != nil {
		return stats, err
	}
	n := src.Vertices()
	if n < 2 && opts.Extra > 0 {
		return stats, errors.New(errors.ErrCodeInvalidInput, "extra updates need at least 2 vertices, stream has %d", n)
	}
	logger := discardLogger(opts.Logger)
	start := time.Now()

	source, err := newEdgeSource(ctx, src, opts)
	if err != nil {
		return stats, err
	}
	adj := adjacency.New(n)
	if opts.Preprocessed {
		if err := source.each(ctx, 0, source.size(), func(e stream.Edge) error {
			if _, err := adj.Toggle(e); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s", e)
			}
			return nil
		}); err != nil {
			return stats, err
		}
	}

	if err := dst.WriteHeader(n, 0); err != nil {
		return stats, err
	}
	out := stream.NewBatchWriter(dst, stream.BatchSize)

	current := 0.0
	if opts.Preprocessed {
		current = 1
	}
	for i, goal := range opts.Checkpoints {
		cp := checkpoint{
			seed:  opts.Seed * uint64(i+1),
			from:  uint64(current * float64(source.size())),
			to:    uint64(goal * float64(source.size())),
			extra: opts.Extra,
		}
		logger.Debug("density checkpoint", "from", current, "to", goal)
		moved, pairs, err := cp.run(ctx, source, adj, out)
		if err != nil {
			return stats, err
		}
		stats.Moved += moved
		stats.ExtraPairs += pairs
		stats.Checkpoints++
		current = goal
	}

	if err := out.Flush(); err != nil {
		return stats, err
	}
	stats.Updates = out.Written()
	if err := dst.WriteHeader(n, stats.Updates); err != nil {
		return stats, err
	}

	logger.Debug("streamified stream",
		"updates", stats.Updates,
		"moved", stats.Moved,
		"extra_pairs", stats.ExtraPairs,
		"duration", time.Since(start))
	return stats, nil
}

// checkpoint moves the graph between two positions of the source.
type checkpoint struct {
	seed     uint64
	from, to uint64
	extra    float64
}

func (cp checkpoint) run(ctx context.Context, src *edgeSource, adj *adjacency.Matrix, out *stream.BatchWriter) (moved, pairs uint64, err error) {
	lo, hi := cp.from, cp.to
	if hi < lo {
		lo, hi = hi, lo
	}
	moved = hi - lo
	pairs = uint64(float64(moved) * cp.extra)

	// add and remove draw the same edge sequence, so the i-th removal undoes
	// the i-th addition.
	add := rand.New(rand.NewPCG(cp.seed*53, cp.seed))
	remove := rand.New(rand.NewPCG(cp.seed*53, cp.seed))
	choice := rand.New(rand.NewPCG(cp.seed*3, cp.seed))

	n := adj.Vertices()
	emit := func(e stream.Edge) error {
		t, err := adj.Apply(e)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s", e)
		}
		return out.Add(stream.Update{Type: t, Edge: e})
	}

	var (
		moveLeft   = moved
		addLeft    = pairs
		removeLeft = pairs
		removable  uint64
	)
	interleave := func() error {
		for {
			c := choice.Uint64N(moveLeft + addLeft + removable)
			switch {
			case c < moveLeft:
				moveLeft--
				return nil
			case c < moveLeft+addLeft:
				addLeft--
				removable++
				if err := emit(randomEdge(add, n)); err != nil {
					return err
				}
			default:
				removeLeft--
				removable--
				if err := emit(randomEdge(remove, n)); err != nil {
					return err
				}
			}
		}
	}

	err = src.each(ctx, lo, hi, func(e stream.Edge) error {
		if err := interleave(); err != nil {
			return err
		}
		return emit(e)
	})
	if err != nil {
		return 0, 0, err
	}
	for ; addLeft > 0; addLeft-- {
		if err := emit(randomEdge(add, n)); err != nil {
			return 0, 0, err
		}
	}
	for ; removeLeft > 0; removeLeft-- {
		if err := emit(randomEdge(remove, n)); err != nil {
			return 0, 0, err
		}
	}
	return moved, pairs, nil
}

// edgeSource gives ranged access to the edges of a stream, either by seeking
// the stream or from a shuffled in-memory copy.
type edgeSource struct {
	r     SeekReader
	n     uint64
	edges []stream.Edge // non-nil when shuffled
}

func newEdgeSource(ctx context.Context, r SeekReader, opts StreamifyOptions) (*edgeSource, error) {
	s := &edgeSource{r: r, n: r.Updates()}
	if !opts.Shuffle {
		return s, nil
	}
	edges := make([]stream.Edge, 0, s.n)
	if err := s.each(ctx, 0, s.n, func(e stream.Edge) error {
		edges = append(edges, e)
		return nil
	}); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(opts.Seed*107, opts.Seed))
	rng.Shuffle(len(edges), func(i, j int) {
		edges[i], edges[j] = edges[j], edges[i]
	})
	s.edges = edges
	return s, nil
}

func (s *edgeSource) size() uint64 { return s.n }

// each calls fn for the edges at positions [lo, hi).
func (s *edgeSource) each(ctx context.Context, lo, hi uint64, fn func(stream.Edge) error) error {
	if s.edges != nil {
		for i, e := range s.edges[lo:hi] {
			if i%stream.BatchSize == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	}

	if err := s.r.Seek(lo); err != nil {
		return err
	}
	buf := make([]stream.Update, stream.BatchSize)
	for pos := lo; pos < hi; {
		if err := ctx.Err(); err != nil {
			return err
		}
		k, err := s.r.ReadUpdates(buf[:min(uint64(len(buf)), hi-pos)])
		if err != nil {
			return err
		}
		if k == 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "stream ended at update %d, expected %d", pos, hi)
		}
		for _, u := range buf[:k] {
			switch u.Type {
			case stream.Breakpoint:
				return errors.New(errors.ErrCodeInvalidFormat, "unexpected breakpoint at update %d", pos)
			case stream.Query:
				return errors.New(errors.ErrCodeInvalidInput, "update %d: cannot streamify a QUERY update", pos)
			}
			if err := fn(u.Edge); err != nil {
				return err
			}
			pos++
		}
	}
	return nil
}

func randomEdge(rng *rand.Rand, n stream.VertexID) stream.Edge {
	var src, dst stream.VertexID
	for src == dst {
		src = stream.VertexID(rng.Uint32N(uint32(n)))
		dst = stream.VertexID(rng.Uint32N(uint32(n)))
	}
	return stream.Edge{Src: src, Dst: dst}
}
