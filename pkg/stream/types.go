package stream

import (
	"cmp"
	"fmt"
)

// VertexID identifies a vertex. Streams address vertices in [0, Vertices()).
type VertexID uint32

// UpdateType tags an [Update].
type UpdateType uint8

// Update types. Breakpoint and Query are produced by the stream layer and by
// tools; generators only ever emit Insert and Delete.
const (
	Insert UpdateType = iota
	Delete
	Breakpoint
	Query
)

var typeNames = [...]string{
	Insert:     "INSERT",
	Delete:     "DELETE",
	Breakpoint: "BREAKPOINT",
	Query:      "QUERY",
}

// String returns INSERT, DELETE, BREAKPOINT or QUERY.
func (t UpdateType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("UpdateType(%d)", uint8(t))
}

// Valid reports whether t is one of the four defined types.
func (t UpdateType) Valid() bool {
	return t <= Query
}

// Mutates reports whether t changes graph state.
func (t UpdateType) Mutates() bool {
	return t == Insert || t == Delete
}

// Edge is an unordered vertex pair. Src and Dst are kept as written; use
// [Edge.Canonical] for the (low, high) form.
type Edge struct {
	Src VertexID
	Dst VertexID
}

// Canonical returns the edge with Src < Dst (or Src == Dst for a self loop).
func (e Edge) Canonical() Edge {
	if e.Src > e.Dst {
		return Edge{Src: e.Dst, Dst: e.Src}
	}
	return e
}

// IsSelfLoop reports whether both endpoints are the same vertex.
func (e Edge) IsSelfLoop() bool {
	return e.Src == e.Dst
}

// Same reports whether e and o name the same unordered pair.
func (e Edge) Same(o Edge) bool {
	return e.Canonical() == o.Canonical()
}

// Compare orders edges by their canonical pair.
func (e Edge) Compare(o Edge) int {
	a, b := e.Canonical(), o.Canonical()
	if c := cmp.Compare(a.Src, b.Src); c != 0 {
		return c
	}
	return cmp.Compare(a.Dst, b.Dst)
}

// InRange reports whether both endpoints are below n.
func (e Edge) InRange(n VertexID) bool {
	return e.Src < n && e.Dst < n
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d)", e.Src, e.Dst)
}

// Update is a single stream element.
type Update struct {
	Type UpdateType
	Edge Edge
}

func (u Update) String() string {
	return u.Type.String() + " " + u.Edge.String()
}
