// Package kvstream stores an update stream in a Badger key-value database.
//
// The database is a directory holding one header key and one key per update,
// keyed by big-endian position so that a prefix iteration yields updates in
// stream order. A [Store] implements [stream.Stream]. Importing the package
// registers the [stream.KindBadger] kind with the stream registry.
package kvstream

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

func init() {
	stream.Register(stream.KindBadger, stream.Driver{
		Create: func(m stream.Metadata) (stream.Stream, error) { return Create(m.Path) },
		Open:   func(m stream.Metadata) (stream.Stream, error) { return Open(m.Path) },
	})
}

// Key layout.
const (
	headerKey    = "h"
	updatePrefix = 'u'

	headerSize = 16 + 4 + 8 // uuid, vertices, updates
	recordSize = 1 + 4 + 4  // type, src, dst
)

// Option configures a [Store].
type Option func(*badger.Options)

// WithLogger routes Badger's internal log lines to l.
func WithLogger(l *log.Logger) Option {
	return func(o *badger.Options) {
		o.Logger = badgerLogger{l}
	}
}

// Store is a seekable stream backed by a Badger database.
type Store struct {
	db       *badger.DB
	path     string
	writable bool
	id       uuid.UUID
	vertices stream.VertexID
	updates  uint64
	cur      stream.Cursor
}

// Create creates a new database directory at path. An existing Badger
// database at path is replaced; any other non-empty directory is refused.
func Create(path string, opts ...Option) (*Store, error) {
	if err := removeExisting(path); err != nil {
		return nil, err
	}
	db, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, writable: true, id: uuid.New(), cur: stream.NewCursor()}
	if err := s.putHeader(0, 0); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing database for reading.
func Open(path string, opts ...Option) (*Store, error) {
	if _, err := os.Stat(filepath.Join(path, badger.ManifestFilename)); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open badger stream %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open badger stream %s", path)
	}
	db, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, cur: stream.NewCursor()}
	if err := s.readHeader(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// removeExisting removes a previous Badger database at path.
func removeExisting(path string) error {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) || (err == nil && len(entries) == 0) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "replace badger stream %s", path)
	}
	if _, err := os.Stat(filepath.Join(path, badger.ManifestFilename)); err != nil {
		return errors.New(errors.ErrCodeInvalidPath, "%s is a non-empty directory and not a badger stream", path)
	}
	if err := os.RemoveAll(path); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "replace badger stream %s", path)
	}
	return nil
}

func open(path string, opts []Option) (*badger.DB, error) {
	o := badger.DefaultOptions(path)
	o.Logger = nil
	o.MetricsEnabled = false
	o.DetectConflicts = false // single writer
	for _, opt := range opts {
		opt(&o)
	}
	db, err := badger.Open(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open badger database %s", path)
	}
	return db, nil
}

func updateKey(idx uint64) []byte {
	var k [9]byte
	k[0] = updatePrefix
	binary.BigEndian.PutUint64(k[1:], idx)
	return k[:]
}

func (s *Store) putHeader(vertices stream.VertexID, updates uint64) error {
	var hdr [headerSize]byte
	copy(hdr[:16], s.id[:])
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(vertices))
	binary.LittleEndian.PutUint64(hdr[20:28], updates)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(headerKey), hdr[:])
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header of %s", s.path)
	}
	s.vertices, s.updates = vertices, updates
	return nil
}

func (s *Store) readHeader() error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(headerKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != headerSize {
				return errors.New(errors.ErrCodeInvalidFormat, "header has %d bytes, want %d", len(val), headerSize)
			}
			copy(s.id[:], val[:16])
			s.vertices = stream.VertexID(binary.LittleEndian.Uint32(val[16:20]))
			s.updates = binary.LittleEndian.Uint64(val[20:28])
			return nil
		})
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header of %s", s.path)
	}
	return nil
}

// Vertices returns the declared vertex count.
func (s *Store) Vertices() stream.VertexID { return s.vertices }

// Updates returns the declared update count.
func (s *Store) Updates() uint64 { return s.updates }

// WriteHeader writes or patches the header without moving the cursor.
func (s *Store) WriteHeader(vertices stream.VertexID, updates uint64) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	return s.putHeader(vertices, updates)
}

// WriteUpdates writes upds at the cursor, replacing existing keys, and
// advances the cursor.
func (s *Store) WriteUpdates(upds []stream.Update) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	if len(upds) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	base := s.cur.Pos()
	for i, u := range upds {
		val := make([]byte, recordSize)
		val[0] = byte(u.Type)
		binary.LittleEndian.PutUint32(val[1:5], uint32(u.Edge.Src))
		binary.LittleEndian.PutUint32(val[5:9], uint32(u.Edge.Dst))
		if err := wb.Set(updateKey(base+uint64(i)), val); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write update %d to %s", base+uint64(i), s.path)
		}
	}
	if err := wb.Flush(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "flush writes to %s", s.path)
	}
	s.cur.Advance(uint64(len(upds)))
	return nil
}

// ReadUpdates implements [stream.Reader].
func (s *Store) ReadUpdates(buf []stream.Update) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n := s.cur.Window(s.updates, len(buf))
	if n == 0 {
		buf[0] = stream.Update{Type: stream.Breakpoint}
		return 1, nil
	}

	lo := s.cur.Pos()
	read := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   min(n, 1000),
			Prefix:         []byte{updatePrefix},
		})
		defer it.Close()

		for it.Seek(updateKey(lo)); it.Valid() && read < n; it.Next() {
			item := it.Item()
			if binary.BigEndian.Uint64(item.Key()[1:]) != lo+uint64(read) {
				break
			}
			err := item.Value(func(val []byte) error {
				if len(val) != recordSize {
					return errors.New(errors.ErrCodeInvalidFormat, "update %d has %d bytes", lo+uint64(read), len(val))
				}
				buf[read] = stream.Update{
					Type: stream.UpdateType(val[0]),
					Edge: stream.Edge{
						Src: stream.VertexID(binary.LittleEndian.Uint32(val[1:5])),
						Dst: stream.VertexID(binary.LittleEndian.Uint32(val[5:9])),
					},
				}
				return nil
			})
			if err != nil {
				return err
			}
			read++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read updates from %s", s.path)
	}
	if read != n {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "%s is missing updates in [%d, %d)", s.path, lo, lo+uint64(n))
	}
	s.cur.Advance(uint64(n))
	return n, nil
}

// Seek implements [stream.Seeker].
func (s *Store) Seek(idx uint64) error {
	total := s.updates
	if s.writable {
		total = max(total, s.cur.Pos())
	}
	return s.cur.MoveTo(idx, total)
}

// SetBreakpoint implements [stream.Breakpointer].
func (s *Store) SetBreakpoint(idx uint64) error {
	return s.cur.Break(idx, s.updates)
}

// Metadata implements [stream.MetadataSerializer].
func (s *Store) Metadata() stream.Metadata {
	return stream.Metadata{
		Kind:     stream.KindBadger,
		Path:     s.path,
		ID:       s.id.String(),
		Vertices: s.vertices,
		Updates:  s.updates,
	}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// badgerLogger adapts a charmbracelet logger to badger.Logger.
type badgerLogger struct {
	l *log.Logger
}

func (b badgerLogger) Errorf(format string, args ...any)   { b.l.Errorf(format, args...) }
func (b badgerLogger) Warningf(format string, args ...any) { b.l.Warnf(format, args...) }
func (b badgerLogger) Infof(format string, args ...any)    { b.l.Debugf(format, args...) }
func (b badgerLogger) Debugf(format string, args ...any)   { b.l.Debugf(format, args...) }
