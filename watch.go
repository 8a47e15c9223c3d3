package driftwatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
)

const (
	// defaultWatchInterval is used when no override is given and the
	// interval-discovery head fetch fails.
	defaultWatchInterval = 60 * time.Second

	// minWatchInterval floors the server-advertised TTL. A misconfigured or
	// hostile ttl_sec must not turn the watch into a tight loop.
	minWatchInterval = 60 * time.Second
)

// ItemHandler processes one changed item delivered by [Client.Watch].
//
// Handlers are invoked sequentially, one item at a time, in the feed's
// combined bucket order; the next invocation starts only after the previous
// one returns. A returned error abandons the remaining items of the current
// cycle (it is logged, never fatal). Because item delivery is at-least-once
// across restarts, handlers must be idempotent.
type ItemHandler func(ctx context.Context, item Item) error

// Watch polls the feed indefinitely and dispatches every changed item to
// handler.
//
// Watch blocks until ctx is cancelled and then returns nil; there is no
// other termination condition. Each cycle runs one [Client.Poll] with the
// given options; a failed cycle (transport error, handler error, handler
// panic) is logged and the watch sleeps and tries again — the failure mode
// of an unattended monitor is "keep trying", never "give up". There is no
// retry-with-backoff; the retry unit is the full interval.
//
// The interval between cycles is, in order of preference: the [WithInterval]
// override; the server-advertised TTL from one initial head fetch, floored
// at 60 seconds; or 60 seconds if that fetch fails.
//
// Cancellation is cooperative: it is observed before each cycle starts and
// during the inter-cycle sleep, never mid-cycle. An in-flight fetch or
// handler invocation always runs to completion, with the fetch still
// bounded by the request timeout.
func (c *Client) Watch(ctx context.Context, handler ItemHandler, opts ...PollOption) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	cfg, err := newPollConfig(opts)
	if err != nil {
		return err
	}

	interval := c.resolveInterval(ctx, cfg)
	c.logger.Info("watch starting",
		"feed_key", cfg.feedKey(),
		"interval", interval.String(),
	)

	for {
		if ctx.Err() != nil {
			c.logger.Info("watch stopped")
			return nil
		}

		// the cycle must not be interrupted mid-flight; cancellation is
		// honored at the sleep below and at the top of the next iteration
		cycleCtx := context.WithoutCancel(ctx)
		c.runCycle(cycleCtx, handler, cfg)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.logger.Info("watch stopped")
			return nil
		case <-timer.C:
		}
	}
}

// runCycle performs one poll-and-dispatch cycle. Failures are logged, not
// returned; a single bad cycle never stops the watch.
func (c *Client) runCycle(ctx context.Context, handler ItemHandler, cfg *pollConfig) {
	items, err := c.poll(ctx, cfg)
	if err != nil {
		c.logger.Warn("poll cycle failed", "feed_key", cfg.feedKey(), "error", err.Error())
		return
	}
	if len(items) == 0 {
		return
	}

	c.logger.Debug("dispatching items", "count", len(items))
	for _, item := range items {
		if err := c.dispatch(ctx, handler, item); err != nil {
			c.logger.Warn("item handler failed",
				"source", item.Source,
				"item", item.ID,
				"error", err.Error(),
			)
			return
		}
	}
}

// dispatch invokes the handler for one item with panic recovery.
// If the handler panics, the full stack trace is logged with a correlation
// ID and the panic is converted to an error carrying that ID.
func (c *Client) dispatch(ctx context.Context, handler ItemHandler, item Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("item handler panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("item handler panic (correlation_id: %s)", correlationID)
		}
	}()
	return handler(ctx, item)
}

// resolveInterval determines the inter-cycle interval: caller override,
// else server-advertised TTL (floored), else the fixed default.
func (c *Client) resolveInterval(ctx context.Context, cfg *pollConfig) time.Duration {
	if cfg.interval > 0 {
		return cfg.interval
	}

	head, err := c.fetchHead(ctx, cfg)
	if err != nil {
		c.logger.Warn("interval discovery failed, using default",
			"default", defaultWatchInterval.String(),
			"error", err.Error(),
		)
		return defaultWatchInterval
	}

	interval := time.Duration(head.TTLSec) * time.Second
	if interval < minWatchInterval {
		interval = minWatchInterval
	}
	return interval
}
