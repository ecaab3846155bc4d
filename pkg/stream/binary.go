package stream

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/matzehuels/streamgen/pkg/errors"
)

const (
	binaryHeaderSize = 12 // uint32 vertices, uint64 updates
	binaryRecordSize = 9  // uint8 type, uint32 src, uint32 dst
)

// BinaryFile is a seekable stream stored as a 12-byte little-endian header
// followed by packed 9-byte records.
type BinaryFile struct {
	f        *os.File
	path     string
	writable bool
	vertices VertexID
	updates  uint64
	cur      Cursor
	scratch  []byte
}

// CreateBinary creates (or truncates) a binary stream at path. The header is
// zero until [BinaryFile.WriteHeader] is called.
func CreateBinary(path string) (*BinaryFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create binary stream %s", path)
	}
	s := &BinaryFile{f: f, path: path, writable: true, cur: NewCursor()}
	if err := s.WriteHeader(0, 0); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// OpenBinary opens an existing binary stream for reading.
func OpenBinary(path string) (*BinaryFile, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open binary stream %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open binary stream %s", path)
	}
	s := &BinaryFile{f: f, path: path, cur: NewCursor()}
	if err := s.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *BinaryFile) readHeader() error {
	var hdr [binaryHeaderSize]byte
	if _, err := s.f.ReadAt(hdr[:], 0); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header of %s", s.path)
	}
	s.vertices = VertexID(binary.LittleEndian.Uint32(hdr[0:4]))
	s.updates = binary.LittleEndian.Uint64(hdr[4:12])

	info, err := s.f.Stat()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "stat %s", s.path)
	}
	if want := binaryHeaderSize + s.updates*binaryRecordSize; uint64(info.Size()) < want {
		return errors.New(errors.ErrCodeInvalidFormat,
			"%s is truncated: header declares %d updates (%d bytes), file has %d bytes",
			s.path, s.updates, want, info.Size())
	}
	return nil
}

// Vertices returns the declared vertex count.
func (s *BinaryFile) Vertices() VertexID { return s.vertices }

// Updates returns the declared update count.
func (s *BinaryFile) Updates() uint64 { return s.updates }

// WriteHeader writes or patches the header without moving the cursor.
func (s *BinaryFile) WriteHeader(vertices VertexID, updates uint64) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	var hdr [binaryHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(vertices))
	binary.LittleEndian.PutUint64(hdr[4:12], updates)
	if _, err := s.f.WriteAt(hdr[:], 0); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header of %s", s.path)
	}
	s.vertices, s.updates = vertices, updates
	return nil
}

// WriteUpdates writes upds at the cursor and advances it.
func (s *BinaryFile) WriteUpdates(upds []Update) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	if len(upds) == 0 {
		return nil
	}
	buf := s.buffer(len(upds))
	for i, u := range upds {
		encodeRecord(buf[i*binaryRecordSize:], u)
	}
	if _, err := s.f.WriteAt(buf, s.offset()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write updates to %s", s.path)
	}
	s.cur.Advance(uint64(len(upds)))
	return nil
}

// ReadUpdates implements [Reader].
func (s *BinaryFile) ReadUpdates(buf []Update) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n := s.cur.Window(s.updates, len(buf))
	if n == 0 {
		return breakpointRead(buf)
	}
	raw := s.buffer(n)
	if _, err := s.f.ReadAt(raw, s.offset()); err != nil && err != io.EOF {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read updates from %s", s.path)
	}
	for i := range n {
		buf[i] = decodeRecord(raw[i*binaryRecordSize:])
	}
	s.cur.Advance(uint64(n))
	return n, nil
}

// Seek implements [Seeker].
func (s *BinaryFile) Seek(idx uint64) error {
	total := s.updates
	if s.writable {
		// Writers may seek anywhere inside what has been written or declared.
		total = max(total, s.cur.Pos())
	}
	return s.cur.MoveTo(idx, total)
}

// SetBreakpoint implements [Breakpointer].
func (s *BinaryFile) SetBreakpoint(idx uint64) error {
	return s.cur.Break(idx, s.updates)
}

// Metadata implements [MetadataSerializer].
func (s *BinaryFile) Metadata() Metadata {
	return Metadata{
		Kind:     KindBinary,
		Path:     s.path,
		ID:       fileID(s.path),
		Vertices: s.vertices,
		Updates:  s.updates,
	}
}

// Close closes the underlying file.
func (s *BinaryFile) Close() error {
	return s.f.Close()
}

func (s *BinaryFile) offset() int64 {
	return int64(binaryHeaderSize + s.cur.Pos()*binaryRecordSize)
}

func (s *BinaryFile) buffer(records int) []byte {
	size := records * binaryRecordSize
	if cap(s.scratch) < size {
		s.scratch = make([]byte, size)
	}
	return s.scratch[:size]
}

func encodeRecord(b []byte, u Update) {
	b[0] = byte(u.Type)
	binary.LittleEndian.PutUint32(b[1:5], uint32(u.Edge.Src))
	binary.LittleEndian.PutUint32(b[5:9], uint32(u.Edge.Dst))
}

func decodeRecord(b []byte) Update {
	return Update{
		Type: UpdateType(b[0]),
		Edge: Edge{
			Src: VertexID(binary.LittleEndian.Uint32(b[1:5])),
			Dst: VertexID(binary.LittleEndian.Uint32(b[5:9])),
		},
	}
}
