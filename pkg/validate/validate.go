// Package validate checks update streams for well-formedness.
//
// [Stream] replays a stream against an adjacency matrix and reports every
// self loop, out-of-range vertex id and update whose type disagrees with the
// replay (an INSERT of a present edge or a DELETE of an absent one). QUERY
// updates are checked for self loops and range only.
//
// [Report.CompareCumulative] then checks the final graph against a
// cumulative edge list such as the one written by
// [generator.Dynamic.WriteCumulative].
package validate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// DefaultMaxProblems bounds the problems kept in a [Report].
const DefaultMaxProblems = 100

// ProblemKind classifies a [Problem].
type ProblemKind int

const (
	SelfLoop ProblemKind = iota
	OutOfRange
	WrongType
	UnknownType
	MissingEdge // in the stream's final graph but not the cumulative list
	ExtraEdge   // in the cumulative list but not the final graph
)

func (k ProblemKind) String() string {
	switch k {
	case SelfLoop:
		return "self loop"
	case OutOfRange:
		return "vertex out of range"
	case WrongType:
		return "wrong type"
	case UnknownType:
		return "unknown type"
	case MissingEdge:
		return "missing from cumulative"
	case ExtraEdge:
		return "absent from stream"
	default:
		return fmt.Sprintf("ProblemKind(%d)", int(k))
	}
}

// Problem is a single validation failure.
type Problem struct {
	Kind   ProblemKind
	Index  uint64 // stream position; zero for cumulative problems
	Update stream.Update
	// Expected is the type the replay assigns, for WrongType problems.
	Expected stream.UpdateType
}

func (p Problem) String() string {
	switch p.Kind {
	case WrongType:
		return fmt.Sprintf("update %d %s: %s, expected %s", p.Index, p.Update, p.Kind, p.Expected)
	case MissingEdge, ExtraEdge:
		return fmt.Sprintf("edge %s: %s", p.Update.Edge, p.Kind)
	default:
		return fmt.Sprintf("update %d %s: %s", p.Index, p.Update, p.Kind)
	}
}

// Options controls [Stream].
type Options struct {
	// MaxProblems bounds Report.Problems. Zero selects DefaultMaxProblems;
	// further problems are only counted.
	MaxProblems int
	Logger      *log.Logger
}

// Report is the outcome of a validation.
type Report struct {
	Vertices stream.VertexID
	Declared uint64 // update count from the header
	Read     uint64
	Queries  uint64
	Edges    uint64 // edges in the final graph

	Problems     []Problem
	ProblemCount uint64 // including problems beyond MaxProblems

	CumulativeChecked bool

	max   int
	final *adjacency.Matrix
}

// OK reports whether no problem was found.
func (r *Report) OK() bool { return r.ProblemCount == 0 }

// Final returns the graph at the end of the stream.
func (r *Report) Final() *adjacency.Matrix { return r.final }

func (r *Report) add(p Problem) {
	r.ProblemCount++
	if len(r.Problems) < r.max {
		r.Problems = append(r.Problems, p)
	}
}

// Stream validates r up to its next breakpoint. The returned error reports
// read failures; problems with the stream's content are collected in the
// report.
func Stream(ctx context.Context, r stream.Reader, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.MaxProblems <= 0 {
		opts.MaxProblems = DefaultMaxProblems
	}
	start := time.Now()

	n := r.Vertices()
	rep := &Report{
		Vertices: n,
		Declared: r.Updates(),
		max:      opts.MaxProblems,
		final:    adjacency.New(n),
	}

	buf := make([]stream.Update, stream.BatchSize)
	for done := false; !done; {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		count, err := r.ReadUpdates(buf)
		if err != nil {
			return rep, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read update %d", rep.Read)
		}
		for _, u := range buf[:count] {
			if u.Type == stream.Breakpoint {
				done = true
				break
			}
			rep.check(u)
			rep.Read++
		}
	}
	rep.Edges = rep.final.Count()

	logger.Debug("validated stream",
		"updates", rep.Read,
		"problems", rep.ProblemCount,
		"duration", time.Since(start))
	return rep, nil
}

func (r *Report) check(u stream.Update) {
	idx := r.Read
	switch {
	case !u.Type.Valid():
		r.add(Problem{Kind: UnknownType, Index: idx, Update: u})
		return
	case u.Edge.IsSelfLoop():
		r.add(Problem{Kind: SelfLoop, Index: idx, Update: u})
		return
	case !u.Edge.InRange(r.Vertices):
		r.add(Problem{Kind: OutOfRange, Index: idx, Update: u})
		return
	case u.Type == stream.Query:
		r.Queries++
		return
	}

	// the edge is valid here, so Apply cannot fail
	expected, _ := r.final.Apply(u.Edge)
	if expected != u.Type {
		r.add(Problem{Kind: WrongType, Index: idx, Update: u, Expected: expected})
	}
}

// CompareCumulative checks the final graph against the edge list in c, a
// stream of distinct INSERT updates over the same vertex count. Differences
// are added to the report as MissingEdge and ExtraEdge problems. Malformed
// cumulative lists return an error.
func (r *Report) CompareCumulative(ctx context.Context, c stream.Reader) error {
	if c.Vertices() != r.Vertices {
		return errors.New(errors.ErrCodeInvalidInput,
			"cumulative list has %d vertices, stream has %d", c.Vertices(), r.Vertices)
	}
	cumul := adjacency.New(r.Vertices)

	var idx uint64
	_, err := stream.ReadAll(c, func(u stream.Update) error {
		defer func() { idx++ }()
		if idx%stream.BatchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		present, err := cumul.Toggle(u.Edge)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "cumulative edge %d", idx)
		}
		if !present {
			return errors.New(errors.ErrCodeInvalidFormat, "cumulative edge %s appears more than once", u.Edge)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for e := range r.final.Edges() {
		if ok, _ := cumul.Has(e); !ok {
			r.add(Problem{Kind: MissingEdge, Update: stream.Update{Type: stream.Insert, Edge: e}})
		}
	}
	for e := range cumul.Edges() {
		if ok, _ := r.final.Has(e); !ok {
			r.add(Problem{Kind: ExtraEdge, Update: stream.Update{Type: stream.Insert, Edge: e}})
		}
	}
	r.CumulativeChecked = true
	return nil
}
