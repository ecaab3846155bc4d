// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about stream generation, export and stream tools.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the generator and stream
// packages never depend on a particular metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGeneratorHooks(&myGeneratorHooks{})
//	    observability.SetToolHooks(&myToolHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Generator().OnGenerateStart(ctx, "DynamicErdos", vertices)
//	// ... build the stream ...
//	observability.Generator().OnGenerateComplete(ctx, "DynamicErdos", updates, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Generator Hooks
// =============================================================================

// GeneratorHooks receives events from the stream generators.
type GeneratorHooks interface {
	// Construction events
	OnGenerateStart(ctx context.Context, generator string, vertices uint64)
	OnGenerateComplete(ctx context.Context, generator string, updates uint64, duration time.Duration, err error)

	// Export events
	OnExportBatch(ctx context.Context, generator string, written, total uint64)
	OnExportComplete(ctx context.Context, generator string, written uint64, duration time.Duration, err error)
}

// =============================================================================
// Tool Hooks
// =============================================================================

// ToolHooks receives events from the stream tools (validate, convert, queryify).
type ToolHooks interface {
	// OnToolStart records the start of a tool run over a stream.
	OnToolStart(ctx context.Context, tool, path string, updates uint64)

	// OnToolComplete records the end of a tool run.
	OnToolComplete(ctx context.Context, tool, path string, processed uint64, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGeneratorHooks is a no-op implementation of GeneratorHooks.
type NoopGeneratorHooks struct{}

func (NoopGeneratorHooks) OnGenerateStart(context.Context, string, uint64) {}
func (NoopGeneratorHooks) OnGenerateComplete(context.Context, string, uint64, time.Duration, error) {
}
func (NoopGeneratorHooks) OnExportBatch(context.Context, string, uint64, uint64)                  {}
func (NoopGeneratorHooks) OnExportComplete(context.Context, string, uint64, time.Duration, error) {}

// NoopToolHooks is a no-op implementation of ToolHooks.
type NoopToolHooks struct{}

func (NoopToolHooks) OnToolStart(context.Context, string, string, uint64) {}
func (NoopToolHooks) OnToolComplete(context.Context, string, string, uint64, time.Duration, error) {
}

// =============================================================================
// Fan-out
// =============================================================================

// MultiGeneratorHooks forwards every event to each of hooks in order.
type MultiGeneratorHooks []GeneratorHooks

func (m MultiGeneratorHooks) OnGenerateStart(ctx context.Context, generator string, vertices uint64) {
	for _, h := range m {
		h.OnGenerateStart(ctx, generator, vertices)
	}
}

func (m MultiGeneratorHooks) OnGenerateComplete(ctx context.Context, generator string, updates uint64, d time.Duration, err error) {
	for _, h := range m {
		h.OnGenerateComplete(ctx, generator, updates, d, err)
	}
}

func (m MultiGeneratorHooks) OnExportBatch(ctx context.Context, generator string, written, total uint64) {
	for _, h := range m {
		h.OnExportBatch(ctx, generator, written, total)
	}
}

func (m MultiGeneratorHooks) OnExportComplete(ctx context.Context, generator string, written uint64, d time.Duration, err error) {
	for _, h := range m {
		h.OnExportComplete(ctx, generator, written, d, err)
	}
}

// MultiToolHooks forwards every event to each of hooks in order.
type MultiToolHooks []ToolHooks

func (m MultiToolHooks) OnToolStart(ctx context.Context, tool, path string, updates uint64) {
	for _, h := range m {
		h.OnToolStart(ctx, tool, path, updates)
	}
}

func (m MultiToolHooks) OnToolComplete(ctx context.Context, tool, path string, processed uint64, d time.Duration, err error) {
	for _, h := range m {
		h.OnToolComplete(ctx, tool, path, processed, d, err)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generatorHooks GeneratorHooks = NoopGeneratorHooks{}
	toolHooks      ToolHooks      = NoopToolHooks{}
	hooksMu        sync.RWMutex
)

// SetGeneratorHooks registers custom generator hooks.
// This should be called once at application startup before any generation.
func SetGeneratorHooks(h GeneratorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generatorHooks = h
	}
}

// SetToolHooks registers custom tool hooks.
func SetToolHooks(h ToolHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		toolHooks = h
	}
}

// Generator returns the registered generator hooks.
func Generator() GeneratorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generatorHooks
}

// Tool returns the registered tool hooks.
func Tool() ToolHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return toolHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generatorHooks = NoopGeneratorHooks{}
	toolHooks = NoopToolHooks{}
}
