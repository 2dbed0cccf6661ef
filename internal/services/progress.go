package services

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/roadmap-agent/internal/logger"
	"github.com/yungbote/roadmap-agent/internal/types"
)

// ProgressSink is the streaming upsert target, keyed by trace id.
// Last write wins; no history is retained.
type ProgressSink interface {
	Set(ctx context.Context, traceID string, update types.ProgressUpdate) error
}

// ProgressReporter streams stage/percent updates for one pipeline run. Both
// the sink and the logger are optional capabilities: whichever is absent is
// silently skipped, and Report never returns an error to its caller.
type ProgressReporter struct {
	log     *logger.Logger
	sink    ProgressSink
	traceID string

	mu      sync.Mutex
	lastPct int
}

func NewProgressReporter(log *logger.Logger, sink ProgressSink, traceID string) *ProgressReporter {
	if log != nil {
		log = log.With("component", "ProgressReporter", "trace_id", traceID)
	}
	return &ProgressReporter{
		log:     log,
		sink:    sink,
		traceID: traceID,
	}
}

// Report pushes one update. Percent is clamped to 0..100 and never moves
// backwards within a run.
func (r *ProgressReporter) Report(ctx context.Context, stage, message string, pct int, data map[string]any) {
	if r == nil {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	r.mu.Lock()
	if pct < r.lastPct {
		pct = r.lastPct
	}
	r.lastPct = pct
	r.mu.Unlock()

	if r.sink != nil && r.traceID != "" {
		update := types.ProgressUpdate{
			Stage:     stage,
			Message:   message,
			Progress:  pct,
			Timestamp: time.Now().UnixMilli(),
			Data:      data,
		}
		if err := r.sink.Set(ctx, r.traceID, update); err != nil && r.log != nil {
			r.log.Warn("Progress sink update failed", "stage", stage, "error", err)
		}
	}

	if r.log != nil {
		r.log.Info(message, "stage", stage, "progress", pct)
	}
}
