package audit

import (
	"context"
	"log/slog"
)

// Worker drains an event inbox and fans events out to the configured sinks.
// It keeps background delivery testable without wiring queue infrastructure
// into the services that emit.
type Worker struct {
	inbox  <-chan Event
	sinks  []Sink
	logger *slog.Logger
}

func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

// Run consumes until the context is cancelled. Sink failures are logged and
// skipped; the audit trail is best-effort and must never wedge the engine.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Append(ctx, event); err != nil {
					w.logger.WarnContext(ctx, "audit sink append failed",
						"action", event.Action,
						"domain_id", event.Domain,
						"error", err,
					)
				}
			}
		}
	}
}
