package stream

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/streamgen/pkg/errors"
)

// Kind names a stream implementation.
type Kind string

// Built-in stream kinds. KindSQLite is registered by package sqlstream and
// KindBadger by package kvstream.
const (
	KindBinary Kind = "binary"
	KindASCII  Kind = "ascii"
	KindSQLite Kind = "sqlite"
	KindBadger Kind = "badger"
)

// Metadata is the serializable configuration of a stream. It carries no
// update data; [Open] turns it back into a live stream.
type Metadata struct {
	Kind     Kind     `yaml:"kind"`
	Path     string   `yaml:"path"`
	Typed    bool     `yaml:"typed,omitempty"`
	ID       string   `yaml:"id"`
	Vertices VertexID `yaml:"vertices"`
	Updates  uint64   `yaml:"updates"`
}

// Encode writes m as YAML.
func (m Metadata) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode stream metadata")
	}
	return enc.Close()
}

// DecodeMetadata reads YAML written by [Metadata.Encode].
func DecodeMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return Metadata{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode stream metadata")
	}
	if m.Kind == "" || m.Path == "" {
		return Metadata{}, errors.New(errors.ErrCodeInvalidFormat, "stream metadata requires kind and path")
	}
	return m, nil
}

// Driver creates and opens streams of one kind.
type Driver struct {
	// Create makes a new, empty stream for writing at m.Path.
	Create func(m Metadata) (Stream, error)
	// Open opens an existing stream for reading.
	Open func(m Metadata) (Stream, error)
}

var (
	driversMu sync.RWMutex
	drivers   = map[Kind]Driver{
		KindBinary: {
			Create: func(m Metadata) (Stream, error) { return CreateBinary(m.Path) },
			Open:   func(m Metadata) (Stream, error) { return OpenBinary(m.Path) },
		},
		KindASCII: {
			Create: func(m Metadata) (Stream, error) { return CreateASCII(m.Path, m.Typed) },
			Open:   func(m Metadata) (Stream, error) { return OpenASCII(m.Path, m.Typed) },
		},
	}
)

// Register makes a stream kind available to [Create], [Open] and
// [FromMetadata]. Registering a kind twice replaces the earlier driver.
func Register(kind Kind, d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[kind] = d
}

// Kinds returns the registered kinds in sorted order.
func Kinds() []Kind {
	driversMu.RLock()
	defer driversMu.RUnlock()
	kinds := make([]Kind, 0, len(drivers))
	for k := range drivers {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func driver(kind Kind) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[kind]
	if !ok {
		return Driver{}, errors.New(errors.ErrCodeUnsupported, "unknown stream kind %q", kind)
	}
	return d, nil
}

// Create makes a new stream described by m.
func Create(m Metadata) (Stream, error) {
	if err := errors.ValidatePath(m.Path); err != nil {
		return nil, err
	}
	d, err := driver(m.Kind)
	if err != nil {
		return nil, err
	}
	return d.Create(m)
}

// Open opens the existing stream described by m. When m carries an ID it
// must match the ID of the opened stream.
func Open(m Metadata) (Stream, error) {
	if err := errors.ValidatePath(m.Path); err != nil {
		return nil, err
	}
	d, err := driver(m.Kind)
	if err != nil {
		return nil, err
	}
	s, err := d.Open(m)
	if err != nil {
		return nil, err
	}
	if m.ID != "" && s.Metadata().ID != m.ID {
		s.Close()
		return nil, errors.New(errors.ErrCodeInvalidInput, "stream id mismatch: metadata %s, stream %s", m.ID, s.Metadata().ID)
	}
	return s, nil
}

// FromMetadata decodes metadata from r and opens the stream it describes.
func FromMetadata(r io.Reader) (Stream, error) {
	m, err := DecodeMetadata(r)
	if err != nil {
		return nil, err
	}
	return Open(m)
}

// KindFromPath guesses a stream kind from a file extension. Unknown
// extensions are treated as binary.
func KindFromPath(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".ascii", ".edges":
		return KindASCII
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	case ".badger":
		return KindBadger
	default:
		return KindBinary
	}
}

// fileID derives a stable stream id from a file's absolute path, so the
// same file always reports the same id.
func fileID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}
