// Package observability adapts the shared logging and metrics plumbing to
// the narrower interfaces the usecase layer depends on.
package observability

import (
	"context"

	"github.com/branchscope/branchscope/internal/adapter/rest"
)

// CompareLogger bridges the structured REST logger to the compare usecase's
// logging port.
type CompareLogger struct {
	inner rest.Logger
}

// NewCompareLogger wraps a rest.Logger for use by the compare orchestrator.
// A nil inner logger yields a no-op logger.
func NewCompareLogger(inner rest.Logger) *CompareLogger {
	return &CompareLogger{inner: inner}
}

// LogInfo forwards an informational message.
func (l *CompareLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.inner == nil {
		return
	}
	l.inner.LogInfo(ctx, message, fields)
}

// LogWarning forwards a warning message.
func (l *CompareLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.inner == nil {
		return
	}
	l.inner.LogWarning(ctx, message, fields)
}
