package standards

import (
	"context"
	"fmt"

	"github.com/rpattn/standards/internal/logger"
	"github.com/rpattn/standards/internal/metrics"
)

// bestEffort runs a side effect whose failure must never reach the caller.
// Errors and panics are logged and counted under op.
func bestEffort(ctx context.Context, log *logger.Logger, op string, fn func(context.Context) error, keysAndValues ...interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.BestEffortFailures.WithLabelValues(op).Inc()
			log.Error("best-effort operation panicked", append([]interface{}{"operation", op, "panic", fmt.Sprint(rec)}, keysAndValues...)...)
		}
	}()
	if err := fn(ctx); err != nil {
		metrics.BestEffortFailures.WithLabelValues(op).Inc()
		log.Warn("best-effort operation failed", append([]interface{}{"operation", op, "error", err}, keysAndValues...)...)
	}
}
