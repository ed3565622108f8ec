// Package poller periodically collects an update from a data source and publishes it
// to all subscribers. The sensor, output and weather pollers are instances of the same
// generic poller, each with its own update type and interval.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/salvatore/habitat-monitor/pkg/pubsub"
)

// Poller is the interface components use to receive updates from a running poller.
type Poller[T any] interface {
	Subscribe() chan T
	Unsubscribe(chan T)
	Refresh()
}

var _ Poller[int] = &IntervalPoller[int]{}

// An IntervalPoller calls its update function at a fixed interval (and once
// immediately at startup) and publishes the result. Refresh triggers an
// out-of-schedule poll.
type IntervalPoller[T any] struct {
	*pubsub.Publisher[T]
	update   func(context.Context) (T, error)
	interval time.Duration
	logger   *slog.Logger
	refresh  chan struct{}
}

func New[T any](update func(context.Context) (T, error), interval time.Duration, logger *slog.Logger) *IntervalPoller[T] {
	return &IntervalPoller[T]{
		Publisher: pubsub.New[T](logger),
		update:    update,
		interval:  interval,
		logger:    logger,
		refresh:   make(chan struct{}),
	}
}

// Run polls until ctx is canceled. The first poll happens immediately; no further
// ticks are scheduled once ctx is done.
func (p *IntervalPoller[T]) Run(ctx context.Context) error {
	p.logger.Debug("started", slog.Duration("interval", p.interval))
	defer p.logger.Debug("stopped")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refresh:
			p.poll(ctx)
		}
	}
}

// Refresh requests an immediate poll. It blocks until the running poller picks up
// the request.
func (p *IntervalPoller[T]) Refresh() {
	p.refresh <- struct{}{}
}

func (p *IntervalPoller[T]) poll(ctx context.Context) {
	start := time.Now()
	update, err := p.update(ctx)
	if err != nil {
		p.logger.Error("poll failed", slog.Any("err", err))
		return
	}
	p.Publisher.Publish(update)
	p.logger.Debug("poll completed", slog.Duration("duration", time.Since(start)))
}
