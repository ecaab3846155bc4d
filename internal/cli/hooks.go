package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/streamgen/pkg/observability"
	"github.com/matzehuels/streamgen/pkg/observability/metrics"
)

// logHooks reports generator and tool events to a logger at debug level.
type logHooks struct {
	logger *log.Logger
}

// installHooks registers hooks that log through the CLI's logger and, when
// rec is non-nil, record metrics.
func (c *CLI) installHooks(rec *metrics.Recorder) {
	h := &logHooks{logger: c.Logger}
	if rec == nil {
		observability.SetGeneratorHooks(h)
		observability.SetToolHooks(h)
		return
	}
	observability.SetGeneratorHooks(observability.MultiGeneratorHooks{h, rec})
	observability.SetToolHooks(observability.MultiToolHooks{h, rec})
}

func (h *logHooks) OnGenerateStart(_ context.Context, generator string, vertices uint64) {
	h.logger.Debug("generate start", "generator", generator, "vertices", vertices)
}

func (h *logHooks) OnGenerateComplete(_ context.Context, generator string, updates uint64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("generate failed", "generator", generator, "error", err)
		return
	}
	h.logger.Debug("generate complete", "generator", generator, "updates", updates, "duration", d)
}

func (h *logHooks) OnExportBatch(_ context.Context, generator string, written, total uint64) {
	h.logger.Debug("export batch", "generator", generator, "written", written, "total", total)
}

func (h *logHooks) OnExportComplete(_ context.Context, generator string, written uint64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("export failed", "generator", generator, "written", written, "error", err)
		return
	}
	h.logger.Debug("export complete", "generator", generator, "written", written, "duration", d)
}

func (h *logHooks) OnToolStart(_ context.Context, tool, path string, updates uint64) {
	h.logger.Debug("tool start", "tool", tool, "path", path, "updates", updates)
}

func (h *logHooks) OnToolComplete(_ context.Context, tool, path string, processed uint64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("tool failed", "tool", tool, "path", path, "error", err)
		return
	}
	h.logger.Debug("tool complete", "tool", tool, "path", path, "processed", processed, "duration", d)
}

// runTool wraps a stream tool with the registered tool hooks. fn returns the
// number of updates it processed.
func runTool(ctx context.Context, tool, path string, updates uint64, fn func() (uint64, error)) error {
	hooks := observability.Tool()
	hooks.OnToolStart(ctx, tool, path, updates)
	start := time.Now()
	processed, err := fn()
	hooks.OnToolComplete(ctx, tool, path, processed, time.Since(start), err)
	return err
}
