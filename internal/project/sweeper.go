package project

import (
	"context"
	"log/slog"
	"time"
)

// OverdueSweeper publishes tasks that go overdue because their end date
// passed, without waiting for someone to edit the project.
type OverdueSweeper struct {
	editor   *Editor
	interval time.Duration
}

func NewOverdueSweeper(editor *Editor, interval time.Duration) *OverdueSweeper {
	return &OverdueSweeper{editor: editor, interval: interval}
}

// Start sweeps once, then every interval until ctx is done. A failed sweep is
// logged and retried on the next tick.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	slog.Info("overdue sweeper started", "interval", s.interval)
	defer slog.Info("overdue sweeper stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.editor.SweepOverdue(ctx); err != nil {
			slog.ErrorContext(ctx, "overdue sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
