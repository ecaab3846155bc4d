package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streamgen/pkg/errors"
	"github.com/matzehuels/streamgen/pkg/pipeline"
	"github.com/matzehuels/streamgen/pkg/stream"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "streamgen"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Stream Helpers
// =============================================================================

// streamFlags selects how a stream argument is interpreted.
type streamFlags struct {
	kind    string // binary, ascii or sqlite; guessed from the extension when empty
	untyped bool   // ascii without a type column
}

func (f *streamFlags) register(cmd *cobra.Command, prefix, what string) {
	cmd.Flags().StringVar(&f.kind, prefix+"kind", "", what+" stream kind: binary, ascii, sqlite, badger (default: from extension)")
	cmd.Flags().BoolVar(&f.untyped, prefix+"untyped", false, what+" ascii stream has no type column")
}

func (f *streamFlags) metadata(path string) stream.Metadata {
	kind := stream.Kind(f.kind)
	if kind == "" {
		kind = stream.KindFromPath(path)
	}
	return stream.Metadata{Kind: kind, Path: path, Typed: !f.untyped}
}

// openStream opens path for reading. YAML files are treated as stream
// metadata written by --metadata.
func openStream(path string, f streamFlags) (stream.Stream, error) {
	if isMetadataFile(path) {
		file, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open metadata %s", path)
		}
		defer file.Close()
		return stream.FromMetadata(file)
	}
	return stream.Open(f.metadata(path))
}

// createStream creates a new stream at path.
func createStream(path string, f streamFlags) (stream.Stream, error) {
	return stream.Create(f.metadata(path))
}

func isMetadataFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// closeWith closes s and keeps the first error.
func closeWith(s stream.Stream, err *error) {
	if cerr := s.Close(); *err == nil && cerr != nil {
		*err = cerr
	}
}
