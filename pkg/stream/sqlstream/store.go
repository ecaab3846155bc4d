// Package sqlstream stores an update stream in a SQLite database.
//
// A [Store] implements [stream.Stream]: it can be written, patched at any
// position, sought and read with breakpoints like the file streams. Importing
// the package registers the [stream.KindSQLite] kind with the stream
// registry, so metadata produced by a Store can be reopened through
// [stream.FromMetadata].
package sqlstream

import (
	"database/sql"
	_ "embed"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

//go:embed schema.sql
var schemaSQL string

func init() {
	stream.Register(stream.KindSQLite, stream.Driver{
		Create: func(m stream.Metadata) (stream.Stream, error) { return Create(m.Path) },
		Open:   func(m stream.Metadata) (stream.Stream, error) { return Open(m.Path) },
	})
}

// Store is a seekable stream backed by a SQLite database with a single-row
// header table and an updates table keyed by position.
type Store struct {
	db       *sql.DB
	path     string
	writable bool
	id       string
	vertices stream.VertexID
	updates  uint64
	cur      stream.Cursor
}

// Create creates a new database at path, replacing any existing one.
func Create(path string) (*Store, error) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "replace sqlite stream %s", path)
		}
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, writable: true, id: uuid.New().String(), cur: stream.NewCursor()}
	if _, err := db.Exec(`INSERT INTO header (id, stream_id, vertices, updates) VALUES (1, ?, 0, 0)`, s.id); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initialize header of %s", path)
	}
	return s, nil
}

// Open opens an existing database for reading.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open sqlite stream %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open sqlite stream %s", path)
	}
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, path: path, cur: stream.NewCursor()}

	var vertices, updates int64
	err = db.QueryRow(`SELECT stream_id, vertices, updates FROM header WHERE id = 1`).Scan(&s.id, &vertices, &updates)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read header of %s", path)
	}
	s.vertices, s.updates = stream.VertexID(vertices), uint64(updates)

	var rows uint64
	if err := db.QueryRow(`SELECT COUNT(*) FROM updates WHERE idx < ?`, updates).Scan(&rows); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "count updates in %s", path)
	}
	if rows < s.updates {
		db.Close()
		return nil, errors.New(errors.ErrCodeInvalidFormat,
			"%s is truncated: header declares %d updates, table holds %d", path, s.updates, rows)
	}
	return s, nil
}

// open opens the database and applies pragmas and the schema.
func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open database %s", path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "connect to database %s", path)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "execute %q", pragma)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "apply schema to %s", path)
	}
	return db, nil
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
	_, err := s.db.Exec(`UPDATE header SET vertices = ?, updates = ? WHERE id = 1`, int64(vertices), int64(updates))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write header of %s", s.path)
	}
	s.vertices, s.updates = vertices, updates
	return nil
}

// WriteUpdates writes upds at the cursor, replacing existing rows, and
// advances the cursor. The batch is written in one transaction.
func (s *Store) WriteUpdates(upds []stream.Update) error {
	if !s.writable {
		return errors.New(errors.ErrCodeUnsupported, "%s was opened read-only", s.path)
	}
	if len(upds) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "begin write to %s", s.path)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO updates (idx, type, src, dst) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "prepare write to %s", s.path)
	}
	defer stmt.Close()

	base := int64(s.cur.Pos())
	for i, u := range upds {
		if _, err := stmt.Exec(base+int64(i), int64(u.Type), int64(u.Edge.Src), int64(u.Edge.Dst)); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write update %d to %s", base+int64(i), s.path)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "commit write to %s", s.path)
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

	lo := int64(s.cur.Pos())
	rows, err := s.db.Query(`SELECT type, src, dst FROM updates WHERE idx >= ? AND idx < ? ORDER BY idx`, lo, lo+int64(n))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "read updates from %s", s.path)
	}
	defer rows.Close()

	read := 0
	for rows.Next() && read < n {
		var typ, src, dst int64
		if err := rows.Scan(&typ, &src, &dst); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "scan update from %s", s.path)
		}
		buf[read] = stream.Update{
			Type: stream.UpdateType(typ),
			Edge: stream.Edge{Src: stream.VertexID(src), Dst: stream.VertexID(dst)},
		}
		read++
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "read updates from %s", s.path)
	}
	if read != n {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "%s is missing updates in [%d, %d)", s.path, lo, lo+int64(n))
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
		Kind:     stream.KindSQLite,
		Path:     s.path,
		ID:       s.id,
		Vertices: s.vertices,
		Updates:  s.updates,
	}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
