package transform

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// Replay applies every INSERT and DELETE of r as a toggle and returns the
// resulting graph. Queries are skipped. Self loops and out-of-range ids fail
// with ErrCodeInvalidInput.
func Replay(ctx context.Context, r stream.Reader) (*adjacency.Matrix, error) {
	adj := adjacency.New(r.Vertices())
	var pos uint64
	err := forEach(ctx, r, func(u stream.Update) error {
		defer func() { pos++ }()
		if !u.Type.Mutates() {
			return nil
		}
		if _, err := adj.Toggle(u.Edge); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "update %d (%s)", pos, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adj, nil
}

// forEach reads r batch by batch until the next breakpoint, calling fn for
// every update and checking ctx between batches.
func forEach(ctx context.Context, r stream.Reader, fn func(stream.Update) error) error {
	buf := make([]stream.Update, stream.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.ReadUpdates(buf)
		if err != nil {
			return err
		}
		for _, u := range buf[:n] {
			if u.Type == stream.Breakpoint {
				return nil
			}
			if err := fn(u); err != nil {
				return err
			}
		}
	}
}

func discardLogger(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard)
}
