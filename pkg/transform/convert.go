package transform

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// ConvertOptions controls [Convert].
type ConvertOptions struct {
	// Remap assigns vertex ids in [0, n) in order of first appearance. The
	// number of distinct ids must not exceed the declared vertex count.
	Remap bool

	// Static writes only the edges present at the end of the stream.
	Static bool

	// Logger receives progress and warnings. Nil discards them.
	Logger *log.Logger
}

// ConvertStats summarizes a conversion.
type ConvertStats struct {
	Read      uint64 // updates read from the source
	Written   uint64 // updates written to the destination
	SelfLoops uint64 // self loops dropped
	Retyped   uint64 // updates whose type disagreed with the replay
	Queries   uint64 // queries passed through
}

// Convert copies src to dst, normalizing it on the way. The destination
// header is patched with the number of updates actually written.
func Convert(ctx context.Context, src stream.Reader, dst stream.Writer, opts ConvertOptions) (ConvertStats, error) {
	logger := discardLogger(opts.Logger)
	start := time.Now()
	n := src.Vertices()

	var stats ConvertStats
	if err := dst.WriteHeader(n, src.Updates()); err != nil {
		return stats, err
	}

	remap := newRemapper(n, opts.Remap)
	adj := adjacency.New(n)
	out := stream.NewBatchWriter(dst, stream.BatchSize)

	err := forEach(ctx, src, func(u stream.Update) error {
		stats.Read++
		e, err := remap.edge(u.Edge)
		if err != nil {
			return err
		}
		e = e.Canonical()
		if e.IsSelfLoop() {
			stats.SelfLoops++
			logger.Debug("dropping self loop", "update", stats.Read-1, "vertex", e.Src)
			return nil
		}
		if !e.InRange(n) {
			return errors.New(errors.ErrCodeInvalidInput,
				"update %d: edge %s out of range for %d vertices", stats.Read-1, e, n)
		}

		if u.Type == stream.Query {
			stats.Queries++
			if opts.Static {
				return nil
			}
			return out.Add(stream.Update{Type: stream.Query, Edge: e})
		}

		typ, err := adj.Apply(e)
		if err != nil {
			return err
		}
		if typ != u.Type {
			stats.Retyped++
		}
		if opts.Static {
			return nil
		}
		return out.Add(stream.Update{Type: typ, Edge: e})
	})
	if err != nil {
		return stats, err
	}

	if opts.Static {
		for e := range adj.Edges() {
			if err := out.Add(stream.Update{Type: stream.Insert, Edge: e}); err != nil {
				return stats, err
			}
		}
	}
	if err := out.Flush(); err != nil {
		return stats, err
	}
	stats.Written = out.Written()
	if err := dst.WriteHeader(n, stats.Written); err != nil {
		return stats, err
	}

	if stats.Retyped > 0 {
		logger.Warn("reassigned update types",
			"count", stats.Retyped,
			"hint", "double insert or delete before insert")
	}
	if stats.SelfLoops > 0 {
		logger.Warn("dropped self loops", "count", stats.SelfLoops)
	}
	logger.Debug("converted stream",
		"read", stats.Read,
		"written", stats.Written,
		"static", opts.Static,
		"duration", time.Since(start))
	return stats, nil
}

// ToStatic writes the final graph of src to dst as INSERT updates.
func ToStatic(ctx context.Context, src stream.Reader, dst stream.Writer, logger *log.Logger) (uint64, error) {
	stats, err := Convert(ctx, src, dst, ConvertOptions{Static: true, Logger: logger})
	return stats.Written, err
}

// remapper assigns dense vertex ids in order of first appearance.
type remapper struct {
	enabled bool
	limit   stream.VertexID
	ids     map[stream.VertexID]stream.VertexID
}

func newRemapper(limit stream.VertexID, enabled bool) *remapper {
	r := &remapper{enabled: enabled, limit: limit}
	if enabled {
		r.ids = make(map[stream.VertexID]stream.VertexID)
	}
	return r
}

func (r *remapper) edge(e stream.Edge) (stream.Edge, error) {
	if !r.enabled {
		return e, nil
	}
	src, err := r.id(e.Src)
	if err != nil {
		return e, err
	}
	dst, err := r.id(e.Dst)
	if err != nil {
		return e, err
	}
	return stream.Edge{Src: src, Dst: dst}, nil
}

func (r *remapper) id(v stream.VertexID) (stream.VertexID, error) {
	if id, ok := r.ids[v]; ok {
		return id, nil
	}
	next := stream.VertexID(len(r.ids))
	if uint64(len(r.ids)) >= uint64(r.limit) {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"stream uses more than the %d vertices declared in its header", r.limit)
	}
	r.ids[v] = next
	return next, nil
}
