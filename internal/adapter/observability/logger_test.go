package observability_test

import (
	"context"
	"sync"
	"testing"

	"github.com/branchscope/branchscope/internal/adapter/observability"
	"github.com/branchscope/branchscope/internal/adapter/rest"
)

// recordingLogger captures forwarded messages.
type recordingLogger struct {
	rest.Logger
	mu       sync.Mutex
	infos    []string
	warnings []string
}

func (r *recordingLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, message)
}

func (r *recordingLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, message)
}

func TestCompareLogger_ForwardsMessages(t *testing.T) {
	inner := &recordingLogger{}
	logger := observability.NewCompareLogger(inner)
	ctx := context.Background()

	logger.LogInfo(ctx, "fetch started", nil)
	logger.LogWarning(ctx, "cache write failed", map[string]interface{}{"branch": "main"})

	if len(inner.infos) != 1 || inner.infos[0] != "fetch started" {
		t.Errorf("infos = %v, want the forwarded message", inner.infos)
	}
	if len(inner.warnings) != 1 || inner.warnings[0] != "cache write failed" {
		t.Errorf("warnings = %v, want the forwarded message", inner.warnings)
	}
}

func TestCompareLogger_NilInnerIsNoop(t *testing.T) {
	logger := observability.NewCompareLogger(nil)
	ctx := context.Background()

	// Must not panic.
	logger.LogInfo(ctx, "ignored", nil)
	logger.LogWarning(ctx, "ignored", nil)
}
