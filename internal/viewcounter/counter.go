// Package viewcounter increments paste view counts off the request path.
package viewcounter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/metrics"
)

// Incrementer is satisfied by the paste repository.
type Incrementer interface {
	IncrementViews(ctx context.Context, pasteID string) error
}

const defaultTimeout = 5 * time.Second

// Counter fires one increment per call and never reports failure to the caller.
// There is no deduplication: every successful read counts.
type Counter struct {
	pastes  Incrementer
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func New(pastes Incrementer, logger *slog.Logger) *Counter {
	return &Counter{
		pastes:  pastes,
		logger:  logger.With("component", "view_counter"),
		timeout: defaultTimeout,
	}
}

// Increment returns immediately. The update keeps reqCtx's values (request
// id, trace span) but not its cancellation, so it survives the end of the
// request that triggered it.
func (c *Counter) Increment(reqCtx context.Context, pasteID string) {
	detached := context.WithoutCancel(reqCtx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(detached, c.timeout)
		defer cancel()

		err := c.pastes.IncrementViews(ctx, pasteID)
		switch {
		case err == nil:
			metrics.ViewIncrementsTotal.WithLabelValues("ok").Inc()
		case errors.Is(err, domain.ErrPasteNotFound):
			// deleted between the read and the update
			c.logger.DebugContext(ctx, "increment views: paste gone", "paste_id", pasteID)
			metrics.ViewIncrementsTotal.WithLabelValues("not_found").Inc()
		default:
			c.logger.WarnContext(ctx, "increment views", "paste_id", pasteID, "error", err)
			metrics.ViewIncrementsTotal.WithLabelValues("error").Inc()
		}
	}()
}

// Wait blocks until in-flight increments finish or ctx is done.
func (c *Counter) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
