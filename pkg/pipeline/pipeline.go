// Package pipeline drives stream generation for streamgen.
//
// This package implements the complete build → export pipeline used by the
// CLI. By centralizing this logic, every entry point validates options,
// applies defaults and names its outputs the same way.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Build: Construct a generator from [Options] (static Erdos-Renyi,
//     dynamic Erdos-Renyi or cut stress)
//  2. Export: Write the stream to a binary, ASCII or SQLite sink, plus the
//     cumulative edge list and a YAML metadata sidecar when requested
//
// # Configuration
//
// Options can be loaded from a TOML file with [LoadOptions]:
//
//	generator = "dynamic"
//	vertices = 1024
//	density = 0.002
//	portion_delete = 0.5
//	portion_adtl = 0.1
//	rounds = 3
//	output = "dyn.bin"
//	cumulative = "dyn.cumul.txt"
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Metadata.Updates)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is the default output stream kind.
	DefaultFormat = stream.KindBinary

	// DefaultBatchSize is the number of updates per write.
	DefaultBatchSize = stream.BatchSize
)

// Generator names.
const (
	GeneratorErdos   = "erdos"
	GeneratorDynamic = "dynamic"
	GeneratorCut     = "cut"
)

// ValidGenerators is the set of supported generators.
var ValidGenerators = map[string]bool{
	GeneratorErdos:   true,
	GeneratorDynamic: true,
	GeneratorCut:     true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a generation run.
// Field tags name the keys of a TOML configuration file.
type Options struct {
	// Generator options
	Generator         string  `toml:"generator"`
	Vertices          uint32  `toml:"vertices"`
	Density           float64 `toml:"density"`
	Seed              uint64  `toml:"seed"`
	PortionDelete     float64 `toml:"portion_delete"`
	PortionAdditional float64 `toml:"portion_adtl"`
	Rounds            int     `toml:"rounds"`

	// Output options
	Format     stream.Kind `toml:"format"`
	Output     string      `toml:"output"`
	Untyped    bool        `toml:"untyped"`    // ascii only: omit the update type column
	Cumulative string      `toml:"cumulative"` // dynamic only: target edge list path
	Metadata   string      `toml:"metadata"`   // YAML sidecar path
	BatchSize  int         `toml:"batch_size"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Metadata describes the written stream.
	Metadata stream.Metadata

	// Cumulative describes the cumulative edge list, if one was written.
	Cumulative *stream.Metadata

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Generator   string
	Vertices    stream.VertexID
	Updates     uint64
	TargetEdges uint64
	BuildTime   time.Duration
	ExportTime  time.Duration
}

// =============================================================================
// Configuration Files
// =============================================================================

// LoadOptions reads options from a TOML file. Unknown keys are rejected.
func LoadOptions(path string) (Options, error) {
	var opts Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Options{}, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	return opts, nil
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateGenerator checks that a generator name is valid.
func ValidateGenerator(name string) error {
	if !ValidGenerators[name] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid generator: %q (must be one of: erdos, dynamic, cut)", name)
	}
	return nil
}

// ValidateFormat checks that a stream kind is registered.
func ValidateFormat(kind stream.Kind) error {
	if !slices.Contains(stream.Kinds(), kind) {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: %v)", kind, stream.Kinds())
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. The output path defaults to a name derived
// from the generator and format.
func (o *Options) SetDefaults() {
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Output == "" && o.Generator != "" {
		o.Output = fmt.Sprintf("%s_%d%s", o.Generator, o.Vertices, extension(o.Format))
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and checks the options. Parameter
// ranges of the generators themselves are checked by their constructors.
func (o *Options) ValidateAndSetDefaults() error {
	if err := ValidateGenerator(o.Generator); err != nil {
		return err
	}
	o.SetDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Vertices == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "vertices is required")
	}
	if err := errors.ValidatePath(o.Output); err != nil {
		return err
	}
	if o.Cumulative != "" {
		if o.Generator != GeneratorDynamic {
			return errors.New(errors.ErrCodeInvalidInput, "cumulative output is only available for the dynamic generator")
		}
		if err := errors.ValidatePath(o.Cumulative); err != nil {
			return err
		}
	}
	if o.Metadata != "" {
		if err := errors.ValidatePath(o.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func extension(kind stream.Kind) string {
	switch kind {
	case stream.KindASCII:
		return ".txt"
	case stream.KindSQLite:
		return ".db"
	case stream.KindBadger:
		return ".badger"
	default:
		return ".bin"
	}
}
