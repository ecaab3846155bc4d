package generator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func insert(src, dst stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Insert, Edge: stream.Edge{Src: src, Dst: dst}}
}

func remove(src, dst stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Delete, Edge: stream.Edge{Src: src, Dst: dst}}
}

func TestCutStructureLarge(t *testing.T) {
	const n = 8192
	g, err := NewCut(n, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(n/8), g.Rounds())
	assert.Equal(t, uint64(n-2+2*(n/8)*n), g.NumUpdates())

	// paths
	for u := stream.VertexID(0); u < n/2-1; u++ {
		a, _ := g.Next()
		b, _ := g.Next()
		require.Equal(t, insert(u, u+1), a)
		require.Equal(t, insert(u+n/2, u+1+n/2), b)
	}

	// first round
	for u := stream.VertexID(0); u < n/2; u++ {
		got, _ := g.Next()
		require.Equal(t, insert(u, u+n/2), got)
	}
	for u := stream.VertexID(0); u < n/2; u++ {
		got, _ := g.Next()
		require.Equal(t, remove(u, u+n/2), got)
	}
	for u := stream.VertexID(0); u < n/2; u++ {
		a, _ := g.Next()
		b, _ := g.Next()
		require.Equal(t, insert(u, u+n/2), a)
		require.Equal(t, remove(u, u+n/2), b)
	}

	// drain the remaining rounds
	emitted := uint64(n - 2 + 2*n)
	var last stream.Update
	for u := range All(g) {
		last = u
		emitted++
	}
	assert.Equal(t, g.NumUpdates(), emitted)
	assert.Equal(t, remove(n/2-1, n-1), last)
}

func TestCutReplayLeavesTwoPaths(t *testing.T) {
	const n = 256
	g, err := NewCut(n, 3)
	require.NoError(t, err)

	adj := adjacency.New(n)
	for u := range All(g) {
		typ, err := adj.Apply(u.Edge)
		require.NoError(t, err)
		require.Equal(t, typ, u.Type, "update %v inconsistent with replay", u)
	}
	assert.Equal(t, uint64(n-2), adj.Count())
	for e := range adj.Edges() {
		assert.Equal(t, e.Src+1, e.Dst)
		assert.NotEqual(t, stream.VertexID(n/2-1), e.Src, "path crosses the cut")
	}
}

func TestCutLogsRounds(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	g, err := NewCut(16, 0, WithLogger(logger))
	require.NoError(t, err)
	for range All(g) {
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "generating round"))
}

func TestCutPreconditions(t *testing.T) {
	tests := []struct {
		name   string
		n      stream.VertexID
		rounds int
	}{
		{"not power of two", 12, 1},
		{"zero vertices", 0, 1},
		{"single vertex", 1, 1},
		{"negative rounds", 8, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCut(tt.n, tt.rounds)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeGenerationPrecondition))
		})
	}
}

func TestCutTwoVertices(t *testing.T) {
	g, err := NewCut(2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), g.NumUpdates())

	var got []stream.Update
	for u := range All(g) {
		got = append(got, u)
	}
	assert.Equal(t, []stream.Update{insert(0, 1), remove(0, 1), insert(0, 1), remove(0, 1)}, got)
}
