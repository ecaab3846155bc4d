package generator

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func TestStaticDeterministicSmallGraph(t *testing.T) {
	g, err := NewStatic(8, 0.5, 42)
	require.NoError(t, err)
	assert.Equal(t, stream.VertexID(8), g.NumVertices())
	assert.Equal(t, uint64(14), g.NumUpdates())

	got := slices.Collect(All(g))
	require.Len(t, got, 14)

	want := []stream.Edge{
		{Src: 2, Dst: 3}, {Src: 0, Dst: 3}, {Src: 2, Dst: 7}, {Src: 0, Dst: 7},
		{Src: 3, Dst: 6}, {Src: 4, Dst: 7}, {Src: 6, Dst: 7}, {Src: 3, Dst: 4},
		{Src: 0, Dst: 2}, {Src: 2, Dst: 6}, {Src: 0, Dst: 6}, {Src: 3, Dst: 7},
		{Src: 4, Dst: 6}, {Src: 3, Dst: 5},
	}
	for i, u := range got {
		assert.Equal(t, want[i], u.Edge, "update %d", i)
	}

	seen := make(map[stream.Edge]bool)
	for _, u := range got {
		assert.Equal(t, stream.Insert, u.Type)
		assert.Less(t, u.Edge.Src, u.Edge.Dst, "edge %v not canonical", u.Edge)
		assert.Less(t, u.Edge.Dst, stream.VertexID(8))
		assert.False(t, seen[u.Edge], "duplicate edge %v", u.Edge)
		seen[u.Edge] = true
	}

	again, err := NewStatic(8, 0.5, 42)
	require.NoError(t, err)
	assert.Equal(t, got, slices.Collect(All(again)))
}

func TestStaticFullDensityCoversAllPairs(t *testing.T) {
	for _, n := range []stream.VertexID{2, 4, 8, 16, 32, 64} {
		g, err := NewStatic(n, 1, 7)
		require.NoError(t, err)

		adj := adjacency.New(n)
		for u := range All(g) {
			require.False(t, u.Edge.IsSelfLoop())
			present, err := adj.Toggle(u.Edge)
			require.NoError(t, err)
			require.True(t, present, "n=%d: edge %v emitted twice", n, u.Edge)
		}
		assert.Equal(t, adjacency.Pairs(n), adj.Count(), "n=%d", n)
	}
}

func TestStaticNoSelfLoopsAcrossSeeds(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		g, err := NewStatic(128, 0.3, seed)
		require.NoError(t, err)
		var count uint64
		for u := range All(g) {
			if u.Edge.IsSelfLoop() {
				t.Fatalf("seed %d: self loop %v", seed, u.Edge)
			}
			count++
		}
		assert.Equal(t, g.NumUpdates(), count)
	}
}

func TestStaticSeedChangesStream(t *testing.T) {
	a, err := NewStatic(64, 0.2, 1)
	require.NoError(t, err)
	b, err := NewStatic(64, 0.2, 2)
	require.NoError(t, err)
	assert.NotEqual(t, slices.Collect(All(a)), slices.Collect(All(b)))
}

func TestStaticEndOfStream(t *testing.T) {
	g, err := NewStatic(4, 0.5, 3)
	require.NoError(t, err)
	for range All(g) {
	}
	_, ok := g.Next()
	assert.False(t, ok)
	_, ok = g.Next()
	assert.False(t, ok)
}

func TestStaticSingleVertex(t *testing.T) {
	g, err := NewStatic(1, 1, 0)
	require.NoError(t, err)
	assert.Zero(t, g.NumUpdates())
	_, ok := g.Next()
	assert.False(t, ok)
}

func TestStaticPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		n       stream.VertexID
		density float64
	}{
		{"not power of two", 6, 0.5},
		{"zero vertices", 0, 0.5},
		{"zero density", 8, 0},
		{"negative density", 8, -0.1},
		{"density above one", 8, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStatic(tt.n, tt.density, 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeGenerationPrecondition))
			assert.Contains(t, errors.UserMessage(err), "StaticErdos")
		})
	}
}

func TestStaticDecodeIsBijection(t *testing.T) {
	g, err := NewStatic(16, 1, 0)
	require.NoError(t, err)

	diagonal := 0
	seen := make(map[stream.Edge]bool)
	for p := uint64(0); p < 16*16/2; p++ {
		e := g.decode(p)
		if e.IsSelfLoop() {
			diagonal++
			continue
		}
		c := e.Canonical()
		require.False(t, seen[c], "pair %v decoded twice", c)
		seen[c] = true
	}
	assert.Equal(t, 8, diagonal)
	assert.Len(t, seen, 120)
}
