package render

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/adjacency"
	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func TestToDOT(t *testing.T) {
	adj := adjacency.New(4)
	require.NoError(t, adj.Set(stream.Edge{Src: 2, Dst: 0}, true))
	require.NoError(t, adj.Set(stream.Edge{Src: 1, Dst: 3}, true))

	dot := ToDOT(adj, Options{})
	assert.True(t, strings.HasPrefix(dot, "graph G {\n"))
	assert.Contains(t, dot, "  0 -- 2;\n")
	assert.Contains(t, dot, "  1 -- 3;\n")
	assert.NotContains(t, dot, "->")
	assert.Less(t, strings.Index(dot, "0 -- 2"), strings.Index(dot, "1 -- 3"))
	assert.NotContains(t, dot, "  3;\n")

	withIsolated := ToDOT(adj, Options{Isolated: true})
	assert.Contains(t, withIsolated, "  3;\n")
}

func TestToDOTGolden(t *testing.T) {
	adj := adjacency.New(5)
	for _, e := range []stream.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}, {Src: 2, Dst: 3}, {Src: 3, Dst: 0}} {
		require.NoError(t, adj.Set(e, true))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "cycle4_isolated", []byte(ToDOT(adj, Options{Isolated: true})))
}

func writeStream(t *testing.T, vertices stream.VertexID, upds []stream.Update) *stream.BinaryFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s.bin")
	w, err := stream.CreateBinary(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(vertices, uint64(len(upds))))
	require.NoError(t, w.WriteUpdates(upds))
	require.NoError(t, w.Close())
	r, err := stream.OpenBinary(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestStreamToDOT(t *testing.T) {
	r := writeStream(t, 3, []stream.Update{
		{Type: stream.Insert, Edge: stream.Edge{Src: 0, Dst: 1}},
		{Type: stream.Insert, Edge: stream.Edge{Src: 1, Dst: 2}},
		{Type: stream.Delete, Edge: stream.Edge{Src: 0, Dst: 1}},
	})
	dot, err := StreamToDOT(context.Background(), r, Options{})
	require.NoError(t, err)
	assert.Contains(t, dot, "1 -- 2")
	assert.NotContains(t, dot, "0 -- 1")
}

func TestStreamToDOTLimit(t *testing.T) {
	r := writeStream(t, 64, nil)
	_, err := StreamToDOT(context.Background(), r, Options{MaxVertices: 32})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestRenderSVG(t *testing.T) {
	adj := adjacency.New(3)
	require.NoError(t, adj.Set(stream.Edge{Src: 0, Dst: 1}, true))

	svg, err := RenderSVG(context.Background(), ToDOT(adj, Options{}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), `viewBox="0 0`)
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="44pt" viewBox="0.00 0.00 62.00 44.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Contains(t, out, `viewBox="0 0 62.00 44.00" width="62" height="44"`)
	assert.NotContains(t, out, "62pt")

	plain := []byte(`<svg><g/></svg>`)
	assert.Equal(t, plain, normalizeViewBox(plain))
}
