package stream

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/streamgen/pkg/errors"
)

func sampleUpdates(n int) []Update {
	out := make([]Update, n)
	for i := range out {
		typ := Insert
		if i%3 == 2 {
			typ = Delete
		}
		out[i] = Update{Type: typ, Edge: Edge{Src: VertexID(i % 7), Dst: VertexID(i%7 + 1 + i%5)}}
	}
	return out
}

func writeStream(t *testing.T, w Writer, vertices VertexID, upds []Update) {
	t.Helper()
	require.NoError(t, w.WriteHeader(vertices, 0))
	bw := NewBatchWriter(w, 5)
	for _, u := range upds {
		require.NoError(t, bw.Add(u))
	}
	require.NoError(t, bw.Flush())
	require.Equal(t, uint64(len(upds)), bw.Written())
	// patch the placeholder count
	require.NoError(t, w.WriteHeader(vertices, bw.Written()))
}

func TestBinaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	upds := sampleUpdates(23)

	w, err := CreateBinary(path)
	require.NoError(t, err)
	writeStream(t, w, 16, upds)
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(binaryHeaderSize+23*binaryRecordSize), info.Size())

	r, err := OpenBinary(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, VertexID(16), r.Vertices())
	assert.Equal(t, uint64(23), r.Updates())

	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, upds, got)
}

func TestBinaryBreakpointsAndSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	upds := sampleUpdates(10)

	w, err := CreateBinary(path)
	require.NoError(t, err)
	writeStream(t, w, 16, upds)
	require.NoError(t, w.Close())

	r, err := OpenBinary(path)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SetBreakpoint(4))
	buf := make([]Update, 100)

	n, err := r.ReadUpdates(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, upds[:4], buf[:4])

	n, err = r.ReadUpdates(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, Breakpoint, buf[0].Type)

	n, err = r.ReadUpdates(buf)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, upds[4:], buf[:6])

	// end of stream repeats
	for range 2 {
		n, err = r.ReadUpdates(buf)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		assert.Equal(t, Breakpoint, buf[0].Type)
	}

	require.NoError(t, r.Seek(7))
	n, err = r.ReadUpdates(buf[:2])
	require.NoError(t, err)
	assert.Equal(t, upds[7:9], buf[:n])

	assert.True(t, errors.Is(r.Seek(11), errors.ErrCodeInvalidInput))
	assert.Error(t, r.SetBreakpoint(11))
	assert.True(t, errors.Is(r.WriteHeader(1, 1), errors.ErrCodeUnsupported))
}

func TestBinaryOverwriteAfterSeek(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	upds := sampleUpdates(6)

	s, err := CreateBinary(path)
	require.NoError(t, err)
	writeStream(t, s, 16, upds)

	replacement := Update{Type: Delete, Edge: Edge{Src: 14, Dst: 15}}
	require.NoError(t, s.Seek(2))
	require.NoError(t, s.WriteUpdates([]Update{replacement}))
	require.NoError(t, s.Seek(0))

	got, err := Collect(s)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	want := append([]Update(nil), upds...)
	want[2] = replacement
	assert.Equal(t, want, got)
}

func TestBinaryTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.bin")
	w, err := CreateBinary(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader(8, 100))
	require.NoError(t, w.WriteUpdates(sampleUpdates(3)))
	require.NoError(t, w.Close())

	_, err = OpenBinary(path)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestBinaryMissing(t *testing.T) {
	_, err := OpenBinary(filepath.Join(t.TempDir(), "nope.bin"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestASCIIRoundTrip(t *testing.T) {
	for _, typed := range []bool{true, false} {
		path := filepath.Join(t.TempDir(), "s.txt")
		upds := sampleUpdates(17)

		w, err := CreateASCII(path, typed)
		require.NoError(t, err)
		writeStream(t, w, 12, upds)
		assert.True(t, errors.Is(w.Seek(0), errors.ErrCodeUnsupported))
		require.NoError(t, w.Close())

		r, err := OpenASCII(path, typed)
		require.NoError(t, err)
		assert.Equal(t, VertexID(12), r.Vertices())
		assert.Equal(t, uint64(17), r.Updates())

		got, err := Collect(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())

		want := upds
		if !typed {
			want = make([]Update, len(upds))
			for i, u := range upds {
				want[i] = Update{Type: Insert, Edge: u.Edge}
			}
		}
		assert.Equal(t, want, got, "typed=%v", typed)
	}
}

func TestASCIIParsesForeignHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.txt")
	body := "4 3\n0 0 1\n\n1 1 2\n0\t2\t3\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	r, err := OpenASCII(path, true)
	require.NoError(t, err)
	defer r.Close()

	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, []Update{
		{Insert, Edge{0, 1}},
		{Delete, Edge{1, 2}},
		{Insert, Edge{2, 3}},
	}, got)
}

func TestASCIISeekRewinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.txt")
	upds := sampleUpdates(9)
	w, err := CreateASCII(path, true)
	require.NoError(t, err)
	writeStream(t, w, 12, upds)
	require.NoError(t, w.Close())

	r, err := OpenASCII(path, true)
	require.NoError(t, err)
	defer r.Close()

	buf := make([]Update, 3)
	require.NoError(t, r.Seek(5))
	n, err := r.ReadUpdates(buf)
	require.NoError(t, err)
	assert.Equal(t, upds[5:8], buf[:n])

	require.NoError(t, r.Seek(1))
	n, err = r.ReadUpdates(buf)
	require.NoError(t, err)
	assert.Equal(t, upds[1:4], buf[:n])
}

func TestASCIIErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"bad header", "4\n"},
		{"bad type", "4 1\n7 0 1\n"},
		{"missing field", "4 1\n0 1\n"},
		{"short stream", "4 2\n0 0 1\n"},
		{"bad vertex", "4 1\n0 x 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			r, err := OpenASCII(path, true)
			if err != nil {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
				return
			}
			defer r.Close()
			_, err = Collect(r)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "err = %v", err)
		})
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	upds := sampleUpdates(BatchSize + 10)

	src, err := CreateBinary(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	writeStream(t, src, 32, upds)
	require.NoError(t, src.Seek(0))

	dst, err := CreateASCII(filepath.Join(dir, "b.txt"), true)
	require.NoError(t, err)
	n, err := Copy(dst, src)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(upds)), n)
	require.NoError(t, src.Close())
	require.NoError(t, dst.Close())

	r, err := OpenASCII(filepath.Join(dir, "b.txt"), true)
	require.NoError(t, err)
	defer r.Close()
	got, err := Collect(r)
	require.NoError(t, err)
	assert.Equal(t, upds, got)
}
