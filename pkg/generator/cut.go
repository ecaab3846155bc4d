package generator

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

const cutName = "Cut"

// Cut emits two paths over the lower and upper halves of the vertex set,
// then repeatedly connects and disconnects them across the cut.
//
// Updates are computed from the cursor position, so memory use is O(1).
// The stream layout is:
//
//	paths:  INSERT (u, u+1), INSERT (u+h, u+1+h)       for u in [0, h-1)
//	round:  INSERT (u, u+h)                             for u in [0, h)
//	        DELETE (u, u+h)                             for u in [0, h)
//	        INSERT (u, u+h), DELETE (u, u+h)            for u in [0, h)
//
// where h = n/2.
type Cut struct {
	n      stream.VertexID
	half   uint64
	rounds uint64
	total  uint64
	pos    uint64
	logger *log.Logger
}

// NewCut returns a cut generator over n vertices. n must be a power of two
// and at least 2. A rounds value of 0 selects n/8.
func NewCut(n stream.VertexID, rounds int, opts ...Option) (*Cut, error) {
	if err := errors.ValidatePowerOfTwo(cutName, uint64(n)); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, errors.Precondition(cutName, "number of vertices must be at least 2, got %d", n)
	}
	if rounds < 0 {
		return nil, errors.Precondition(cutName, "rounds must be >= 0, got %d", rounds)
	}
	o := newOptions(opts)
	if rounds == 0 {
		rounds = int(n / 8)
	}
	v := uint64(n)
	return &Cut{
		n:      n,
		half:   v / 2,
		rounds: uint64(rounds),
		total:  (v - 2) + 2*uint64(rounds)*v,
		logger: o.logger,
	}, nil
}

// Name implements the naming convention used by [Name].
func (c *Cut) Name() string { return cutName }

// NumVertices returns n.
func (c *Cut) NumVertices() stream.VertexID { return c.n }

// NumUpdates returns (n-2) + 2*rounds*n.
func (c *Cut) NumUpdates() uint64 { return c.total }

// Rounds returns the number of cut rounds.
func (c *Cut) Rounds() uint64 { return c.rounds }

// Next returns the next update.
func (c *Cut) Next() (stream.Update, bool) {
	if c.pos >= c.total {
		return stream.Update{}, false
	}
	u := c.at(c.pos)
	c.pos++
	return u, true
}

func (c *Cut) at(pos uint64) stream.Update {
	h := c.half
	paths := 2*h - 2
	if pos < paths {
		u := pos / 2
		if pos%2 == 1 {
			u += h
		}
		return c.update(stream.Insert, u, u+1)
	}

	n := 2 * h
	r := pos - paths
	round, off := r/(2*n), r%(2*n)
	if off == 0 {
		c.logger.Debug("generating round", "round", round, "of", c.rounds)
	}
	switch {
	case off < h:
		return c.update(stream.Insert, off, off+h)
	case off < n:
		return c.update(stream.Delete, off-h, off)
	default:
		j := off - n
		u := j / 2
		if j%2 == 0 {
			return c.update(stream.Insert, u, u+h)
		}
		return c.update(stream.Delete, u, u+h)
	}
}

func (c *Cut) update(t stream.UpdateType, src, dst uint64) stream.Update {
	return stream.Update{Type: t, Edge: stream.Edge{Src: stream.VertexID(src), Dst: stream.VertexID(dst)}}
}
