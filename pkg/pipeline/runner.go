package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/generator"
	"github.com/matzehuels/streamgen/pkg/observability"
	"github.com/matzehuels/streamgen/pkg/stream"
	_ "github.com/matzehuels/streamgen/pkg/stream/kvstream"
	_ "github.com/matzehuels/streamgen/pkg/stream/sqlstream"
)

// Runner encapsulates pipeline execution.
//
// The Runner is stateless except for the logger - it doesn't store pipeline
// results. Multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger selects log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the complete build → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, err := r.Build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Stats.Generator = generator.Name(g)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Vertices = g.NumVertices()

	r.Logger.Info("built generator",
		"generator", result.Stats.Generator,
		"vertices", g.NumVertices(),
		"updates", g.NumUpdates(),
		"duration", result.Stats.BuildTime)

	// Stage 2: Export
	exportStart := time.Now()
	meta, err := r.Export(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Metadata = meta
	result.Stats.Updates = meta.Updates

	if d, ok := g.(*generator.Dynamic); ok {
		result.Stats.TargetEdges = uint64(len(d.TargetEdges()))
		if opts.Cumulative != "" {
			cm, err := r.WriteCumulative(ctx, d, opts)
			if err != nil {
				return nil, fmt.Errorf("cumulative: %w", err)
			}
			result.Cumulative = &cm
		}
	}
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported stream",
		"path", meta.Path,
		"format", meta.Kind,
		"updates", meta.Updates,
		"duration", result.Stats.ExportTime)

	if opts.Metadata != "" {
		if err := writeMetadata(opts.Metadata, meta); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
	}
	return result, nil
}

// Build constructs the generator named by opts.
func (r *Runner) Build(ctx context.Context, opts Options) (generator.Generator, error) {
	if err := ValidateGenerator(opts.Generator); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	hooks := observability.Generator()
	hooks.OnGenerateStart(ctx, opts.Generator, uint64(opts.Vertices))
	start := time.Now()

	var (
		g   generator.Generator
		err error
	)
	n := stream.VertexID(opts.Vertices)
	genOpts := []generator.Option{generator.WithLogger(opts.Logger)}
	switch opts.Generator {
	case GeneratorErdos:
		g, err = generator.NewStatic(n, opts.Density, opts.Seed, genOpts...)
	case GeneratorDynamic:
		g, err = generator.NewDynamic(generator.DynamicParams{
			Seed:              opts.Seed,
			Vertices:          n,
			Density:           opts.Density,
			PortionDelete:     opts.PortionDelete,
			PortionAdditional: opts.PortionAdditional,
			Rounds:            opts.Rounds,
		}, genOpts...)
	case GeneratorCut:
		g, err = generator.NewCut(n, opts.Rounds, genOpts...)
	}

	var updates uint64
	if err == nil {
		updates = g.NumUpdates()
	}
	hooks.OnGenerateComplete(ctx, opts.Generator, updates, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Export writes g to the stream described by opts and returns its metadata.
func (r *Runner) Export(ctx context.Context, g generator.Generator, opts Options) (stream.Metadata, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	s, err := stream.Create(stream.Metadata{
		Kind:  opts.Format,
		Path:  opts.Output,
		Typed: !opts.Untyped,
	})
	if err != nil {
		return stream.Metadata{}, err
	}

	_, err = generator.Export(ctx, g, s,
		generator.WithLogger(opts.Logger),
		generator.WithBatchSize(opts.BatchSize))
	meta := s.Metadata()
	if cerr := s.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return stream.Metadata{}, err
	}
	return meta, nil
}

// WriteCumulative writes the target graph of d as an untyped ASCII edge list.
func (r *Runner) WriteCumulative(ctx context.Context, d *generator.Dynamic, opts Options) (stream.Metadata, error) {
	r.applyLogger(&opts)
	s, err := stream.Create(stream.Metadata{Kind: stream.KindASCII, Path: opts.Cumulative})
	if err != nil {
		return stream.Metadata{}, err
	}
	_, err = d.WriteCumulative(ctx, s, generator.WithLogger(opts.Logger))
	meta := s.Metadata()
	if cerr := s.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return stream.Metadata{}, err
	}
	r.Logger.Debug("wrote cumulative edge list", "path", meta.Path, "edges", meta.Updates)
	return meta, nil
}

func writeMetadata(path string, meta stream.Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := meta.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// applyLogger sets the runner's logger on opts if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
