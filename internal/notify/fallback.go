package notify

import (
	"context"
	"log/slog"

	"efile/pkg/platform/circuit"
)

// FailoverDispatcher sends through primary while its breaker allows and
// through fallback otherwise or when primary fails.
type FailoverDispatcher struct {
	primary  Dispatcher
	fallback Dispatcher
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFailoverDispatcher(primary, fallback Dispatcher, breaker *circuit.Breaker, logger *slog.Logger) *FailoverDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverDispatcher{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (d *FailoverDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if !d.breaker.Allow() {
		return d.fallback.Dispatch(ctx, msg)
	}
	err := d.primary.Dispatch(ctx, msg)
	if err == nil {
		if _, change := d.breaker.RecordSuccess(); change.Closed {
			d.logger.InfoContext(ctx, "notification channel recovered", "breaker", d.breaker.Name())
		}
		return nil
	}
	if _, change := d.breaker.RecordFailure(); change.Opened {
		d.logger.WarnContext(ctx, "notification channel unavailable, using fallback",
			"breaker", d.breaker.Name(), "error", err)
	}
	return d.fallback.Dispatch(ctx, msg)
}
