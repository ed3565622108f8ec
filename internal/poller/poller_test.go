package poller_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/salvatore/habitat-monitor/internal/poller"
	"github.com/stretchr/testify/assert"
)

func TestIntervalPoller_Run(t *testing.T) {
	var polls atomic.Int32
	p := poller.New(func(_ context.Context) (int, error) {
		return int(polls.Add(1)), nil
	}, time.Hour, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.Subscribe()
	errCh := make(chan error)
	go func() {
		errCh <- p.Run(ctx)
	}()

	// first poll happens without waiting for a tick
	assert.Equal(t, 1, <-ch)

	p.Refresh()
	assert.Equal(t, 2, <-ch)

	p.Unsubscribe(ch)
	cancel()
	assert.NoError(t, <-errCh)
	assert.Equal(t, int32(2), polls.Load())
}
