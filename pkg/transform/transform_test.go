package transform

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/generator"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func ins(src, dst stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Insert, Edge: stream.Edge{Src: src, Dst: dst}}
}

func del(src, dst stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Delete, Edge: stream.Edge{Src: src, Dst: dst}}
}

func qry(src, dst stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Query, Edge: stream.Edge{Src: src, Dst: dst}}
}

// writeBinary stores upds in a new binary stream and reopens it for reading.
func writeBinary(t *testing.T, vertices stream.VertexID, upds []stream.Update) *stream.BinaryFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.bin")
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

// output creates an empty binary stream and returns it with a function that
// closes it and reads back its contents.
func output(t *testing.T) (*stream.BinaryFile, func() (stream.VertexID, []stream.Update)) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.bin")
	w, err := stream.CreateBinary(path)
	require.NoError(t, err)
	return w, func() (stream.VertexID, []stream.Update) {
		require.NoError(t, w.Close())
		r, err := stream.OpenBinary(path)
		require.NoError(t, err)
		defer r.Close()
		got, err := stream.Collect(r)
		require.NoError(t, err)
		require.Equal(t, uint64(len(got)), r.Updates())
		return r.Vertices(), got
	}
}

func TestConvertRemapsAndRetypes(t *testing.T) {
	// two self loops, and a double insert that must become a delete
	src := writeBinary(t, 4, []stream.Update{
		ins(900, 17),
		ins(17, 17),
		ins(17, 900),
		ins(42, 5),
		del(5, 5),
		ins(900, 42),
	})
	dst, read := output(t)

	stats, err := Convert(context.Background(), src, dst, ConvertOptions{Remap: true})
	require.NoError(t, err)

	vertices, got := read()
	assert.Equal(t, stream.VertexID(4), vertices)
	assert.Equal(t, []stream.Update{
		ins(0, 1),
		del(0, 1),
		ins(2, 3),
		ins(0, 2),
	}, got)
	assert.Equal(t, ConvertStats{Read: 6, Written: 4, SelfLoops: 2, Retyped: 1}, stats)
}

func TestConvertRemapTooManyVertices(t *testing.T) {
	src := writeBinary(t, 2, []stream.Update{ins(10, 11), ins(12, 13)})
	dst, _ := output(t)

	_, err := Convert(context.Background(), src, dst, ConvertOptions{Remap: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestConvertRejectsOutOfRange(t *testing.T) {
	src := writeBinary(t, 4, []stream.Update{ins(0, 1), ins(2, 9)})
	dst, _ := output(t)

	_, err := Convert(context.Background(), src, dst, ConvertOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestConvertPassesQueries(t *testing.T) {
	src := writeBinary(t, 4, []stream.Update{ins(0, 1), qry(2, 3), del(1, 0)})
	dst, read := output(t)

	stats, err := Convert(context.Background(), src, dst, ConvertOptions{})
	require.NoError(t, err)
	_, got := read()
	assert.Equal(t, []stream.Update{ins(0, 1), qry(2, 3), del(0, 1)}, got)
	assert.Equal(t, uint64(1), stats.Queries)
}

func TestToStaticMatchesDynamicTarget(t *testing.T) {
	g, err := generator.NewDynamic(generator.DynamicParams{
		Seed: 21, Vertices: 32, Density: 0.25, PortionDelete: 0.3, PortionAdditional: 0.1, Rounds: 2,
	})
	require.NoError(t, err)
	target := g.TargetEdges()
	src := writeBinary(t, 32, slices.Collect(generator.All(g)))
	dst, read := output(t)

	n, err := ToStatic(context.Background(), src, dst, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(target)), n)

	_, got := read()
	edges := make([]stream.Edge, len(got))
	for i, u := range got {
		require.Equal(t, stream.Insert, u.Type)
		edges[i] = u.Edge
	}
	slices.SortFunc(target, stream.Edge.Compare)
	assert.Equal(t, target, edges)
}

func TestReplay(t *testing.T) {
	src := writeBinary(t, 5, []stream.Update{ins(0, 1), ins(3, 2), qry(0, 4), del(1, 0), ins(4, 0)})
	adj, err := Replay(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []stream.Edge{{Src: 0, Dst: 4}, {Src: 2, Dst: 3}}, slices.Collect(adj.Edges()))

	bad := writeBinary(t, 5, []stream.Update{ins(0, 1), ins(2, 2)})
	_, err = Replay(context.Background(), bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestReplayHonorsContext(t *testing.T) {
	src := writeBinary(t, 4, []stream.Update{ins(0, 1)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Replay(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
