package generator

import (
	"context"
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/observability"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// Generator is a single-pass source of edge updates.
//
// Next returns the following update and true, or false once NumUpdates
// updates have been returned. Generators cannot be rewound; build a new one
// with the same parameters to replay a stream.
type Generator interface {
	NumVertices() stream.VertexID
	NumUpdates() uint64
	Next() (stream.Update, bool)
}

// Option configures generator construction and [Export].
type Option func(*options)

type options struct {
	logger    *log.Logger
	batchSize int
}

// WithLogger sets the logger for progress messages. The default discards
// all output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBatchSize sets the number of updates handed to the writer per call.
// Non-positive values select [stream.BatchSize].
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:    log.New(io.Discard),
		batchSize: stream.BatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Name returns a short label for g used in logs and hooks.
func Name(g Generator) string {
	if n, ok := g.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "generator"
}

// All drains g as an iterator. Stopping early leaves the remaining updates
// in g.
func All(g Generator) iter.Seq[stream.Update] {
	return func(yield func(stream.Update) bool) {
		for {
			u, ok := g.Next()
			if !ok || !yield(u) {
				return
			}
		}
	}
}

// Export writes the header of g followed by every remaining update to w and
// returns the number of updates written. The context is checked between
// batches. If g was partially drained before the call, the header is patched
// to the number actually written.
func Export(ctx context.Context, g Generator, w stream.Writer, opts ...Option) (uint64, error) {
	o := newOptions(opts)
	name := Name(g)
	hooks := observability.Generator()
	start := time.Now()

	written, err := export(ctx, g, w, o, name)
	hooks.OnExportComplete(ctx, name, written, time.Since(start), err)
	if err != nil {
		return written, err
	}
	o.logger.Debug("exported stream",
		"generator", name,
		"vertices", g.NumVertices(),
		"updates", written,
		"duration", time.Since(start))
	return written, nil
}

func export(ctx context.Context, g Generator, w stream.Writer, o options, name string) (uint64, error) {
	total := g.NumUpdates()
	if err := w.WriteHeader(g.NumVertices(), total); err != nil {
		return 0, err
	}

	hooks := observability.Generator()
	buf := make([]stream.Update, 0, o.batchSize)
	var written uint64
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := w.WriteUpdates(buf); err != nil {
			return err
		}
		written += uint64(len(buf))
		buf = buf[:0]
		hooks.OnExportBatch(ctx, name, written, total)
		return nil
	}

	for u := range All(g) {
		buf = append(buf, u)
		if len(buf) < cap(buf) {
			continue
		}
		if err := flush(); err != nil {
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, errors.Wrap(errors.ErrCodeInternal, err, "export %s", name)
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	if written != total {
		if err := w.WriteHeader(g.NumVertices(), written); err != nil {
			return written, err
		}
	}
	return written, nil
}

