package stream

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/streamgen/pkg/errors"
)

// asciiHeaderWidth is the fixed width of a header written by this package:
// room for any uint32 vertex count and uint64 update count, so the header can
// be patched in place.
const asciiHeaderWidth = 32

// ASCIIFile is a text stream. The first line holds "vertices updates"; each
// following line is "type src dst" when typed, or "src dst" when not.
// Untyped streams read back as [Insert] updates.
//
// Written streams can only be appended to; reading streams can seek by
// rescanning from the start.
type ASCIIFile struct {
	f        *os.File
	path     string
	typed    bool
	writable bool
	vertices VertexID
	updates  uint64
	cur      Cursor

	w    *bufio.Writer
	r    *bufio.Reader
	line int // line number of the next body line, for error messages
}

// CreateASCII creates (or truncates) a text stream at path.
func CreateASCII(path string, typed bool) (*ASCIIFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create ascii stream %s", path)
	}
	s := &ASCIIFile{
		f:        f,
		path:     path,
		typed:    typed,
		writable: true,
		cur:      NewCursor(),
		w:        bufio.NewWriterSize(f, 1<<16),
	}
	if _, err := s.w.WriteString(formatASCIIHeader(0, 0)); err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write header of %s", path)
	}
	return s, nil
}

// OpenASCII opens an existing text stream for reading.
func OpenASCII(path string, typed bool) (*ASCIIFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open ascii stream %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open ascii stream %s", path)
	}
	s := &ASCIIFile{f: f, path: path, typed: typed, cur: NewCursor()}
	if err := s.rewind(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func formatASCIIHeader(vertices VertexID, updates uint64) string {
	return fmt.Sprintf("%-*s\n", asciiHeaderWidth-1, fmt.Sprintf("%d %d", vertices, updates))
}

// rewind positions the reader on the first body line and reparses the header.
func (s *ASCIIFile) rewind() error {
	if _, err := s.f.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rewind %s", s.path)
	}
	s.r = bufio.NewReaderSize(s.f, 1<<16)
	line, err := s.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header of %s", s.path)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return errors.New(errors.ErrCodeInvalidFormat, "%s: header must be \"vertices updates\", got %q", s.path, strings.TrimSpace(line))
	}
	v, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: vertex count", s.path)
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: update count", s.path)
	}
	s.vertices, s.updates = VertexID(v), n
	s.cur.pos = 0
	s.line = 2
	return nil
}

// Vertices returns the declared vertex count.
func (s *ASCIIFile) Vertices() VertexID { return s.vertices }

// Updates returns the declared update count.
func (s *ASCIIFile) Updates() uint64 { return s.updates }

// Typed reports whether lines carry an update type.
func (s *ASCIIFile) Typed() bool { return s.typed }

// WriteHeader patches the fixed-width header in place.
func (s *ASCIIFile) WriteHeader(vertices VertexID, updates uint64) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	if err := s.w.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush %s", s.path)
	}
	if _, err := s.f.WriteAt([]byte(formatASCIIHeader(vertices, updates)), 0); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header of %s", s.path)
	}
	s.vertices, s.updates = vertices, updates
	return nil
}

// WriteUpdates appends upds.
func (s *ASCIIFile) WriteUpdates(upds []Update) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	var scratch []byte
	for _, u := range upds {
		scratch = scratch[:0]
		if s.typed {
			scratch = strconv.AppendUint(scratch, uint64(u.Type), 10)
			scratch = append(scratch, ' ')
		}
		scratch = strconv.AppendUint(scratch, uint64(u.Edge.Src), 10)
		scratch = append(scratch, ' ')
		scratch = strconv.AppendUint(scratch, uint64(u.Edge.Dst), 10)
		scratch = append(scratch, '\n')
		if _, err := s.w.Write(scratch); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write updates to %s", s.path)
		}
	}
	s.cur.Advance(uint64(len(upds)))
	return nil
}

// ReadUpdates implements [Reader].
func (s *ASCIIFile) ReadUpdates(buf []Update) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	if s.writable {
		return 0, errors.New(errors.ErrCodeUnsupported, "%s was opened for writing", s.path)
	}
	n := s.cur.Window(s.updates, len(buf))
	if n == 0 {
		return breakpointRead(buf)
	}
	for i := range n {
		u, err := s.readLine()
		if err != nil {
			s.cur.Advance(uint64(i))
			return i, err
		}
		buf[i] = u
	}
	s.cur.Advance(uint64(n))
	return n, nil
}

func (s *ASCIIFile) readLine() (Update, error) {
	for {
		line, err := s.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return Update{}, errors.Wrap(errors.ErrCodeInvalidFormat, err,
				"%s: expected %d updates, stream ended at line %d", s.path, s.updates, s.line)
		}
		lineNo := s.line
		s.line++
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return s.parseFields(fields, lineNo)
	}
}

func (s *ASCIIFile) parseFields(fields []string, lineNo int) (Update, error) {
	want := 2
	if s.typed {
		want = 3
	}
	if len(fields) != want {
		return Update{}, errors.New(errors.ErrCodeInvalidFormat, "%s:%d: expected %d fields, got %d", s.path, lineNo, want, len(fields))
	}

	var u Update
	if s.typed {
		t, err := strconv.ParseUint(fields[0], 10, 8)
		if err != nil || !UpdateType(t).Valid() {
			return Update{}, errors.New(errors.ErrCodeInvalidFormat, "%s:%d: invalid update type %q", s.path, lineNo, fields[0])
		}
		u.Type = UpdateType(t)
		fields = fields[1:]
	}
	src, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Update{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s:%d: source vertex", s.path, lineNo)
	}
	dst, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Update{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s:%d: destination vertex", s.path, lineNo)
	}
	u.Edge = Edge{Src: VertexID(src), Dst: VertexID(dst)}
	return u, nil
}

// Seek implements [Seeker]. Only streams opened for reading can seek.
func (s *ASCIIFile) Seek(idx uint64) error {
	if s.writable {
		return errors.New(errors.ErrCodeUnsupported, "ascii stream %s cannot seek while writing", s.path)
	}
	if idx > s.updates {
		return s.cur.MoveTo(idx, s.updates)
	}
	if idx < s.cur.Pos() {
		if err := s.rewind(); err != nil {
			return err
		}
	}
	for s.cur.Pos() < idx {
		if _, err := s.readLine(); err != nil {
			return err
		}
		s.cur.Advance(1)
	}
	return nil
}

// SetBreakpoint implements [Breakpointer].
func (s *ASCIIFile) SetBreakpoint(idx uint64) error {
	return s.cur.Break(idx, s.updates)
}

// Metadata implements [MetadataSerializer].
func (s *ASCIIFile) Metadata() Metadata {
	return Metadata{
		Kind:     KindASCII,
		Path:     s.path,
		Typed:    s.typed,
		ID:       fileID(s.path),
		Vertices: s.vertices,
		Updates:  s.updates,
	}
}

// Close flushes pending writes and closes the file.
func (s *ASCIIFile) Close() error {
	if s.writable {
		if err := s.w.Flush(); err != nil {
			s.f.Close()
			return errors.Wrap(errors.ErrCodeInternal, err, "flush %s", s.path)
		}
	}
	return s.f.Close()
}
