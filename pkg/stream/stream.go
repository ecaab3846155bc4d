package stream

import (
	"io"
	"math"

	"github.com/matzehuels/streamgen/pkg/errors"
)

// Header exposes the declared shape of a stream.
type Header interface {
	Vertices() VertexID
	Updates() uint64
}

// Writer receives a stream. WriteHeader may be called a second time to patch
// the update count once it is known.
type Writer interface {
	WriteHeader(vertices VertexID, updates uint64) error
	WriteUpdates(upds []Update) error
}

// Reader produces a stream.
//
// ReadUpdates fills buf with up to len(buf) updates and returns how many were
// read. A read never crosses a breakpoint: when the cursor sits on a
// registered breakpoint or at the end of the stream, ReadUpdates returns a
// single [Breakpoint] update. A registered breakpoint is consumed by that
// read; the end of the stream is not.
type Reader interface {
	Header
	ReadUpdates(buf []Update) (int, error)
}

// Seeker repositions the cursor shared by reads and writes. Sources that
// cannot seek return an ErrCodeUnsupported error.
type Seeker interface {
	Seek(idx uint64) error
}

// Breakpointer registers a future index at which reading yields a
// [Breakpoint] before proceeding. Only one breakpoint is held at a time.
type Breakpointer interface {
	SetBreakpoint(idx uint64) error
}

// MetadataSerializer describes a stream's configuration (not its data) so
// that another process can reopen it.
type MetadataSerializer interface {
	Metadata() Metadata
}

// Stream is the full capability set implemented by the file and SQLite
// backed streams.
type Stream interface {
	Reader
	Writer
	Seeker
	Breakpointer
	MetadataSerializer
	io.Closer
}

const noBreakpoint = math.MaxUint64

// Cursor tracks the read/write position and the registered breakpoint of a
// stream. Stream implementations embed it to share the breakpoint rules.
type Cursor struct {
	pos uint64
	brk uint64
}

// NewCursor returns a cursor at index 0 with no breakpoint.
func NewCursor() Cursor {
	return Cursor{brk: noBreakpoint}
}

// Pos returns the current index.
func (c *Cursor) Pos() uint64 { return c.pos }

// Advance moves the cursor forward by n.
func (c *Cursor) Advance(n uint64) { c.pos += n }

// MoveTo repositions the cursor. total is the stream length.
func (c *Cursor) MoveTo(idx, total uint64) error {
	if idx > total {
		return errors.New(errors.ErrCodeInvalidInput, "seek index %d past end of stream (%d updates)", idx, total)
	}
	c.pos = idx
	return nil
}

// Break registers a breakpoint at idx. total is the stream length.
func (c *Cursor) Break(idx, total uint64) error {
	if idx > total {
		return errors.New(errors.ErrCodeInvalidInput, "breakpoint %d past end of stream (%d updates)", idx, total)
	}
	c.brk = idx
	return nil
}

// Window returns how many of want updates can be read before the next
// breakpoint or the end of a stream of total updates. A zero result means
// the caller must emit a [Breakpoint]; a registered breakpoint at the
// cursor is consumed by that call.
func (c *Cursor) Window(total uint64, want int) int {
	limit := total
	if c.brk != noBreakpoint && c.brk >= c.pos && c.brk < limit {
		limit = c.brk
	}
	if c.pos >= limit {
		if c.brk == c.pos {
			c.brk = noBreakpoint
		}
		return 0
	}
	return int(min(uint64(want), limit-c.pos))
}

// breakpointRead writes the breakpoint sentinel into buf.
func breakpointRead(buf []Update) (int, error) {
	buf[0] = Update{Type: Breakpoint}
	return 1, nil
}
