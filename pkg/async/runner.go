package async

import (
	"context"
	"time"

	"cs-agent-be/internal/pkg/logger"
)

// Runner spawns named background tasks detached from the request lifecycle.
// A panicking or failing task is logged and dropped; it never takes the
// request path down with it.
type Runner struct {
	log     logger.ILogger
	timeout time.Duration
}

func NewRunner(log logger.ILogger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Runner{
		log:     log,
		timeout: timeout,
	}
}

// Go runs fn in a new goroutine with its own bounded context. The caller's
// context is intentionally not inherited: the HTTP response has usually been
// written by the time the task runs.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("async", "background task panicked", map[string]interface{}{
					"task":  name,
					"panic": rec,
				})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.log.Error("async", "background task failed", map[string]interface{}{
				"task":  name,
				"error": err.Error(),
			})
		}
	}()
}
