package adjacency

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func TestPairs(t *testing.T) {
	assert.Equal(t, uint64(0), Pairs(0))
	assert.Equal(t, uint64(0), Pairs(1))
	assert.Equal(t, uint64(1), Pairs(2))
	assert.Equal(t, uint64(28), Pairs(8))
	assert.Equal(t, uint64(523776), Pairs(1024))
}

func TestIndexIsDenseAndUnique(t *testing.T) {
	const n = 13
	m := New(n)
	seen := make(map[int]bool)
	for lo := stream.VertexID(0); lo < n; lo++ {
		for hi := lo + 1; hi < n; hi++ {
			i, err := m.index(stream.Edge{Src: hi, Dst: lo})
			require.NoError(t, err)
			require.False(t, seen[i], "index %d reused", i)
			require.Less(t, i, int(Pairs(n)))
			seen[i] = true
		}
	}
	assert.Len(t, seen, int(Pairs(n)))
}

func TestToggleAndHas(t *testing.T) {
	m := New(8)
	e := stream.Edge{Src: 5, Dst: 2}

	has, err := m.Has(e)
	require.NoError(t, err)
	assert.False(t, has)

	present, err := m.Toggle(e)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, uint64(1), m.Count())

	has, err = m.Has(stream.Edge{Src: 2, Dst: 5})
	require.NoError(t, err)
	assert.True(t, has)

	present, err = m.Toggle(e)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, uint64(0), m.Count())
}

func TestApply(t *testing.T) {
	m := New(4)
	e := stream.Edge{Src: 0, Dst: 3}

	typ, err := m.Apply(e)
	require.NoError(t, err)
	assert.Equal(t, stream.Insert, typ)

	typ, err = m.Apply(e)
	require.NoError(t, err)
	assert.Equal(t, stream.Delete, typ)
}

func TestSet(t *testing.T) {
	m := New(4)
	e := stream.Edge{Src: 1, Dst: 2}
	require.NoError(t, m.Set(e, true))
	require.NoError(t, m.Set(e, true))
	assert.Equal(t, uint64(1), m.Count())
	require.NoError(t, m.Set(e, false))
	require.NoError(t, m.Set(e, false))
	assert.Equal(t, uint64(0), m.Count())
}

func TestInvalidEdges(t *testing.T) {
	m := New(4)
	_, err := m.Toggle(stream.Edge{Src: 2, Dst: 2})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = m.Has(stream.Edge{Src: 0, Dst: 4})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestEdgesAscending(t *testing.T) {
	m := New(6)
	for _, e := range []stream.Edge{{Src: 4, Dst: 5}, {Src: 3, Dst: 0}, {Src: 1, Dst: 2}, {Src: 0, Dst: 5}} {
		_, err := m.Toggle(e)
		require.NoError(t, err)
	}
	got := slices.Collect(m.Edges())
	assert.Equal(t, []stream.Edge{{Src: 0, Dst: 3}, {Src: 0, Dst: 5}, {Src: 1, Dst: 2}, {Src: 4, Dst: 5}}, got)
}
