package controller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/sensors"
	"github.com/salvatore/habitat-monitor/pkg/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Run(t *testing.T) {
	rules := Rules{
		{Output: outputs.RoleHeaterA, Sensor: sensors.RoleInside, Band: Band{Lower: 70, Upper: 75}},
	}
	sensorPoller := fakePoller[sensors.Update]{Publisher: pubsub.New[sensors.Update](slog.New(slog.DiscardHandler))}
	outputPoller := fakePoller[outputs.Update]{Publisher: pubsub.New[outputs.Update](slog.New(slog.DiscardHandler))}
	setter := fakeSetter{commands: make(chan command, 1)}
	setter.success.Store(true)
	recorder := notifyRecorder{messages: make(chan string, 1)}

	c := New(rules, sensorPoller, outputPoller, &setter, &recorder, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	errCh := make(chan error)
	go func() { errCh <- c.Run(ctx) }()

	waitForSubscribers(t, sensorPoller.Publisher, outputPoller.Publisher)

	// seed the actual state: heater is on
	outputPoller.Publish(outputs.Update{HeaterA: b(true), LastUpdated: time.Now()})

	// too warm: expect a switch-off
	sensorPoller.Publish(sensors.Update{Inside: sensors.Reading{Temperature: f64(76)}, LastUpdated: time.Now()})
	cmd := <-setter.commands
	assert.Equal(t, command{role: outputs.RoleHeaterA, on: false}, cmd)
	assert.Contains(t, <-recorder.messages, "heaterA: switching off")

	// dead band: no command
	sensorPoller.Publish(sensors.Update{Inside: sensors.Reading{Temperature: f64(72)}, LastUpdated: time.Now()})
	// too cold: expect a switch-on
	sensorPoller.Publish(sensors.Update{Inside: sensors.Reading{Temperature: f64(69)}, LastUpdated: time.Now()})
	cmd = <-setter.commands
	assert.Equal(t, command{role: outputs.RoleHeaterA, on: true}, cmd)
	assert.Contains(t, <-recorder.messages, "heaterA: switching on")

	cancel()
	assert.NoError(t, <-errCh)
}

func TestController_Run_retriesFailedCommand(t *testing.T) {
	rules := Rules{
		{Output: outputs.RoleHeaterA, Sensor: sensors.RoleInside, Band: Band{Lower: 70, Upper: 75}},
	}
	sensorPoller := fakePoller[sensors.Update]{Publisher: pubsub.New[sensors.Update](slog.New(slog.DiscardHandler))}
	outputPoller := fakePoller[outputs.Update]{Publisher: pubsub.New[outputs.Update](slog.New(slog.DiscardHandler))}
	setter := fakeSetter{commands: make(chan command, 1)}
	recorder := notifyRecorder{messages: make(chan string, 1)}

	c := New(rules, sensorPoller, outputPoller, &setter, &recorder, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	waitForSubscribers(t, sensorPoller.Publisher, outputPoller.Publisher)

	// command fails: state stays off, so the next update retries
	sensorPoller.Publish(sensors.Update{Inside: sensors.Reading{Temperature: f64(69)}, LastUpdated: time.Now()})
	assert.Equal(t, command{role: outputs.RoleHeaterA, on: true}, <-setter.commands)
	select {
	case msg := <-recorder.messages:
		t.Errorf("unexpected notification: %s", msg)
	default:
	}

	setter.success.Store(true)
	sensorPoller.Publish(sensors.Update{Inside: sensors.Reading{Temperature: f64(69)}, LastUpdated: time.Now()})
	assert.Equal(t, command{role: outputs.RoleHeaterA, on: true}, <-setter.commands)
	assert.Contains(t, <-recorder.messages, "heaterA: switching on")
}

func waitForSubscribers[T any, U any](t *testing.T, a *pubsub.Publisher[T], b *pubsub.Publisher[U]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return a.Subscribers() > 0 && b.Subscribers() > 0
	}, time.Second, 10*time.Millisecond)
}

type fakePoller[T any] struct {
	*pubsub.Publisher[T]
}

func (f fakePoller[T]) Refresh() {}

type command struct {
	role outputs.Role
	on   bool
}

type fakeSetter struct {
	commands chan command
	success  atomic.Bool
}

func (f *fakeSetter) Set(_ context.Context, role outputs.Role, on bool) bool {
	f.commands <- command{role: role, on: on}
	return f.success.Load()
}

type notifyRecorder struct {
	messages chan string
}

func (n *notifyRecorder) Notify(msg string) {
	n.messages <- msg
}

func f64(v float64) *float64 { return &v }
