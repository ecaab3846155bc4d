package generator

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

const dynamicName = "DynamicErdos"

// DynamicParams configures a [Dynamic] generator.
type DynamicParams struct {
	Seed     uint64
	Vertices stream.VertexID
	// Density is the fraction of all pairs present in the final graph.
	Density float64
	// PortionDelete is the fraction of target edges deleted and reinserted
	// in every round.
	PortionDelete float64
	// PortionAdditional is the fraction of non-target pairs inserted and
	// deleted again in every round.
	PortionAdditional float64
	Rounds            int
}

// Validate checks the parameter ranges.
func (p DynamicParams) Validate() error {
	if err := errors.ValidateDensity(dynamicName, p.Density); err != nil {
		return err
	}
	if err := errors.ValidatePortion(dynamicName, "portion_delete", p.PortionDelete); err != nil {
		return err
	}
	if err := errors.ValidatePortion(dynamicName, "portion_adtl", p.PortionAdditional); err != nil {
		return err
	}
	if p.Rounds < 0 {
		return errors.Precondition(dynamicName, "rounds must be >= 0, got %d", p.Rounds)
	}
	if p.Rounds == 0 && (p.PortionDelete > 0 || p.PortionAdditional > 0) {
		return errors.Precondition(dynamicName, "rounds must be > 0 if portion_adtl or portion_delete > 0")
	}
	return nil
}

// Dynamic emits a shuffled stream of insertions and deletions whose final
// graph is a random target graph.
//
// The whole update list is materialized at construction, so memory grows
// with C(n, 2). Use [Static] for large vertex counts.
type Dynamic struct {
	n       stream.VertexID
	target  []stream.Edge
	updates []stream.Update
	pos     int
}

// NewDynamic builds the update list for p.
func NewDynamic(p DynamicParams, opts ...Option) (*Dynamic, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0xdeadbeef))

	universe := adjacency.Pairs(p.Vertices)
	all := make([]stream.Edge, 0, universe)
	for i := stream.VertexID(0); i < p.Vertices; i++ {
		for j := i + 1; j < p.Vertices; j++ {
			all = append(all, stream.Edge{Src: i, Dst: j})
		}
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })

	total := uint64(float64(universe) * p.Density)
	// churn pools round up: a nonzero portion always touches at least one pair
	churnTarget := uint64(math.Ceil(float64(total) * p.PortionDelete))
	churnOther := uint64(math.Ceil(float64(universe-total) * p.PortionAdditional))
	rounds := uint64(p.Rounds)

	touches := make([]stream.Edge, 0, total+2*rounds*(churnTarget+churnOther))
	touches = append(touches, all[:total]...)
	for r := uint64(0); r < rounds; r++ {
		for _, e := range all[:churnTarget] {
			touches = append(touches, e, e)
		}
		for _, e := range all[total : total+churnOther] {
			touches = append(touches, e, e)
		}
	}
	rng.Shuffle(len(touches), func(i, j int) { touches[i], touches[j] = touches[j], touches[i] })

	adj := adjacency.New(p.Vertices)
	updates := make([]stream.Update, len(touches))
	for i, e := range touches {
		t, err := adj.Apply(e)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: replay update %d", dynamicName, i)
		}
		updates[i] = stream.Update{Type: t, Edge: e}
	}

	d := &Dynamic{
		n:       p.Vertices,
		target:  all[:total:total],
		updates: updates,
	}
	o.logger.Debug("dynamic generator ready",
		"vertices", p.Vertices,
		"target_edges", total,
		"updates", len(updates),
		"rounds", p.Rounds)
	return d, nil
}

// Name implements the naming convention used by [Name].
func (d *Dynamic) Name() string { return dynamicName }

// NumVertices returns n.
func (d *Dynamic) NumVertices() stream.VertexID { return d.n }

// NumUpdates returns the length of the stream including churn.
func (d *Dynamic) NumUpdates() uint64 { return uint64(len(d.updates)) }

// Next returns the next update.
func (d *Dynamic) Next() (stream.Update, bool) {
	if d.pos >= len(d.updates) {
		return stream.Update{}, false
	}
	u := d.updates[d.pos]
	d.pos++
	return u, true
}

// TargetEdges returns a copy of the edges present after the whole stream is
// applied, in generation order.
func (d *Dynamic) TargetEdges() []stream.Edge {
	return slices.Clone(d.target)
}

// WriteCumulative writes the target graph to w as INSERT updates. It does
// not move the update cursor.
func (d *Dynamic) WriteCumulative(ctx context.Context, w stream.Writer, opts ...Option) (uint64, error) {
	return Export(ctx, &edgeList{n: d.n, edges: d.target}, w, opts...)
}

// edgeList replays a fixed edge set as INSERT updates.
type edgeList struct {
	n     stream.VertexID
	edges []stream.Edge
	pos   int
}

func (l *edgeList) Name() string                 { return dynamicName + "/cumulative" }
func (l *edgeList) NumVertices() stream.VertexID { return l.n }
func (l *edgeList) NumUpdates() uint64           { return uint64(len(l.edges)) }

func (l *edgeList) Next() (stream.Update, bool) {
	if l.pos >= len(l.edges) {
		return stream.Update{}, false
	}
	e := l.edges[l.pos]
	l.pos++
	return stream.Update{Type: stream.Insert, Edge: e}, true
}
