package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	g := NoopGeneratorHooks{}
	g.OnGenerateStart(ctx, "StaticErdos", 1024)
	g.OnGenerateComplete(ctx, "StaticErdos", 5000, time.Second, nil)
	g.OnExportBatch(ctx, "StaticErdos", 4096, 5000)
	g.OnExportComplete(ctx, "StaticErdos", 5000, time.Second, nil)

	tl := NoopToolHooks{}
	tl.OnToolStart(ctx, "validate", "stream.bin", 100)
	tl.OnToolComplete(ctx, "validate", "stream.bin", 100, time.Second, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Generator().(NoopGeneratorHooks); !ok {
		t.Error("Generator() should return NoopGeneratorHooks by default")
	}
	if _, ok := Tool().(NoopToolHooks); !ok {
		t.Error("Tool() should return NoopToolHooks by default")
	}

	customGen := &testGeneratorHooks{}
	SetGeneratorHooks(customGen)
	if Generator() != customGen {
		t.Error("SetGeneratorHooks should set custom hooks")
	}

	customTool := &testToolHooks{}
	SetToolHooks(customTool)
	if Tool() != customTool {
		t.Error("SetToolHooks should set custom hooks")
	}

	// nil is ignored
	SetGeneratorHooks(nil)
	if Generator() != customGen {
		t.Error("SetGeneratorHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Generator().(NoopGeneratorHooks); !ok {
		t.Error("Reset should restore NoopGeneratorHooks")
	}
	if _, ok := Tool().(NoopToolHooks); !ok {
		t.Error("Reset should restore NoopToolHooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testGeneratorHooks{}
	SetGeneratorHooks(h)

	ctx := context.Background()
	Generator().OnGenerateStart(ctx, "Cut", 8)
	Generator().OnExportBatch(ctx, "Cut", 10, 20)
	Generator().OnExportBatch(ctx, "Cut", 20, 20)

	if h.starts != 1 {
		t.Errorf("starts = %d, want 1", h.starts)
	}
	if h.batches != 2 {
		t.Errorf("batches = %d, want 2", h.batches)
	}
}

func TestMultiHooksFanOut(t *testing.T) {
	a, b := &testGeneratorHooks{}, &testGeneratorHooks{}
	multi := MultiGeneratorHooks{a, b}

	ctx := context.Background()
	multi.OnGenerateStart(ctx, "Cut", 8)
	multi.OnExportBatch(ctx, "Cut", 4, 8)
	multi.OnGenerateComplete(ctx, "Cut", 8, time.Millisecond, nil)
	multi.OnExportComplete(ctx, "Cut", 8, time.Millisecond, nil)

	for _, h := range []*testGeneratorHooks{a, b} {
		if h.starts != 1 || h.batches != 1 {
			t.Errorf("hooks got starts=%d batches=%d, want 1 and 1", h.starts, h.batches)
		}
	}

	tools := &testToolHooks{}
	MultiToolHooks{NoopToolHooks{}, tools}.OnToolComplete(ctx, "convert", "in.bin", 3, 0, nil)
	if tools.completed != 1 {
		t.Errorf("completed = %d, want 1", tools.completed)
	}
}

type testGeneratorHooks struct {
	NoopGeneratorHooks
	starts  int
	batches int
}

func (h *testGeneratorHooks) OnGenerateStart(context.Context, string, uint64) { h.starts++ }
func (h *testGeneratorHooks) OnExportBatch(context.Context, string, uint64, uint64) {
	h.batches++
}

type testToolHooks struct {
	NoopToolHooks
	completed int
}

func (h *testToolHooks) OnToolComplete(context.Context, string, string, uint64, time.Duration, error) {
	h.completed++
}
