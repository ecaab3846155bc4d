package transform

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// QueryifyOptions controls [Queryify].
type QueryifyOptions struct {
	// Density is the fraction of output updates that are queries, in [0, 1).
	Density float64

	// PeriodMin and PeriodMax bound the number of source updates between
	// two bursts. Each period is drawn uniformly from [PeriodMin, PeriodMax).
	PeriodMin uint64
	PeriodMax uint64

	Seed   uint64
	Logger *log.Logger
}

// Validate checks the option ranges.
func (o QueryifyOptions) Validate() error {
	if o.Density < 0 || o.Density >= 1 {
		return errors.New(errors.ErrCodeInvalidInput, "query density %v out of range [0, 1)", o.Density)
	}
	if o.PeriodMin == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "burst period min must be > 0")
	}
	if o.PeriodMax <= o.PeriodMin {
		return errors.New(errors.ErrCodeInvalidInput,
			"burst period max (%d) must be greater than min (%d)", o.PeriodMax, o.PeriodMin)
	}
	return nil
}

// QueryifyStats summarizes a queryify run.
type QueryifyStats struct {
	Updates uint64 // source updates copied
	Queries uint64 // queries added
	Bursts  uint64
}

// Queryify copies src to dst and inserts bursts of QUERY updates between
// source updates. After each burst period the number of queries added is
// floor(density * period / (1 - density)), which keeps the overall query
// fraction at density. A final burst follows the last source update. Query
// endpoints are distinct vertices drawn uniformly at random.
func Queryify(ctx context.Context, src stream.Reader, dst stream.Writer, opts QueryifyOptions) (QueryifyStats, error) {
	var stats QueryifyStats
	if err := opts.Validate(); err != nil {
		return stats, err
	}
	n := src.Vertices()
	if n < 2 && opts.Density > 0 {
		return stats, errors.New(errors.ErrCodeInvalidInput, "queries need at least 2 vertices, stream has %d", n)
	}
	logger := discardLogger(opts.Logger)
	start := time.Now()

	if err := dst.WriteHeader(n, src.Updates()); err != nil {
		return stats, err
	}
	out := stream.NewBatchWriter(dst, stream.BatchSize)
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed*53))

	nextPeriod := func() uint64 {
		return opts.PeriodMin + rng.Uint64N(opts.PeriodMax-opts.PeriodMin)
	}
	burst := func(updates uint64) error {
		count := uint64(opts.Density * float64(updates) / (1 - opts.Density))
		for range count {
			if err := out.Add(randomQuery(rng, n)); err != nil {
				return err
			}
		}
		stats.Queries += count
		stats.Bursts++
		logger.Debug("query burst", "after", updates, "queries", count)
		return nil
	}

	period := nextPeriod()
	var sinceBurst uint64
	err := forEach(ctx, src, func(u stream.Update) error {
		if err := out.Add(u); err != nil {
			return err
		}
		stats.Updates++
		sinceBurst++
		if sinceBurst < period {
			return nil
		}
		if err := burst(sinceBurst); err != nil {
			return err
		}
		period = nextPeriod()
		sinceBurst = 0
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := burst(sinceBurst); err != nil {
		return stats, err
	}
	if err := out.Flush(); err != nil {
		return stats, err
	}
	if err := dst.WriteHeader(n, out.Written()); err != nil {
		return stats, err
	}

	logger.Debug("queryified stream",
		"updates", stats.Updates,
		"queries", stats.Queries,
		"bursts", stats.Bursts,
		"duration", time.Since(start))
	return stats, nil
}

func randomQuery(rng *rand.Rand, n stream.VertexID) stream.Update {
	return stream.Update{Type: stream.Query, Edge: randomEdge(rng, n)}
}
