// Package controller implements automatic output control: it watches the sensor
// poller and switches each configured output on or off using hysteresis around the
// output's target band.
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/salvatore/habitat-monitor/internal/controller/notifier"
	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/poller"
	"github.com/salvatore/habitat-monitor/internal/sensors"
)

// PowerSetter switches one output and reports wire-level success.
type PowerSetter interface {
	Set(ctx context.Context, role outputs.Role, on bool) bool
}

// Controller evaluates all rules on every sensor update. Output polls keep its view
// of the actual power states in sync; a command only updates that view when it
// succeeded, so a failed command is retried on the next evaluation.
type Controller struct {
	rules    Rules
	sensors  poller.Poller[sensors.Update]
	outputs  poller.Poller[outputs.Update]
	setter   PowerSetter
	notifier notifier.Notifier
	state    map[outputs.Role]bool
	logger   *slog.Logger
}

func New(rules Rules, sensorPoller poller.Poller[sensors.Update], outputPoller poller.Poller[outputs.Update], setter PowerSetter, n notifier.Notifier, logger *slog.Logger) *Controller {
	return &Controller{
		rules:    rules,
		sensors:  sensorPoller,
		outputs:  outputPoller,
		setter:   setter,
		notifier: n,
		state:    make(map[outputs.Role]bool),
		logger:   logger,
	}
}

// Run evaluates rules until ctx is canceled.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Debug("started")
	defer c.logger.Debug("stopped")

	sensorCh := c.sensors.Subscribe()
	defer c.sensors.Unsubscribe(sensorCh)
	outputCh := c.outputs.Subscribe()
	defer c.outputs.Unsubscribe(outputCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-outputCh:
			c.syncState(update)
		case update := <-sensorCh:
			c.evaluate(ctx, update)
		}
	}
}

// syncState adopts polled power states. Unknown states never overwrite the last
// known state.
func (c *Controller) syncState(update outputs.Update) {
	for _, role := range outputs.Roles {
		if power := update.Power(role); power != nil {
			c.state[role] = *power
		}
	}
}

func (c *Controller) evaluate(ctx context.Context, update sensors.Update) {
	for _, rule := range c.rules {
		current := update.Reading(rule.Sensor).Temperature
		previous := c.state[rule.Output]
		desired := decide(current, rule.Band.Lower, rule.Band.Upper, previous)
		if desired == previous {
			continue
		}
		if !c.setter.Set(ctx, rule.Output, desired) {
			c.logger.Error("failed to switch output", "output", string(rule.Output))
			continue
		}
		c.state[rule.Output] = desired
		c.notifier.Notify(describe(rule, current, desired))
	}
}

func describe(rule Rule, current *float64, on bool) string {
	action := "switching off"
	if on {
		action = "switching on"
	}
	reading := "no reading"
	if current != nil {
		reading = fmt.Sprintf("%s: %.1f°F", rule.Sensor, *current)
	}
	return fmt.Sprintf("%s: %s (%s, target %.1f-%.1f°F)", rule.Output, action, reading, rule.Band.Lower, rule.Band.Upper)
}
