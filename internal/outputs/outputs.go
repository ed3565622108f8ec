// Package outputs reads and controls the power state of the smart-plug outputs.
package outputs

import (
	"context"
	"log/slog"
	"time"

	"github.com/salvatore/habitat-monitor/internal/govee"
)

// Role identifies one of the controlled outputs.
type Role string

const (
	RoleHeaterA Role = "heaterA"
	RoleHeaterB Role = "heaterB"
	RoleLamp    Role = "lamp"
)

// Roles are all output roles, in display order.
var Roles = []Role{RoleHeaterA, RoleHeaterB, RoleLamp}

// Bindings maps each output role to a physical smart plug.
type Bindings struct {
	HeaterA govee.Binding
	HeaterB govee.Binding
	Lamp    govee.Binding
}

func (b Bindings) binding(role Role) govee.Binding {
	switch role {
	case RoleHeaterA:
		return b.HeaterA
	case RoleHeaterB:
		return b.HeaterB
	case RoleLamp:
		return b.Lamp
	default:
		return govee.Binding{}
	}
}

// Update is the result of one poll cycle. A nil entry means the plug's power state
// could not be determined this cycle; observers keep their last known state.
type Update struct {
	HeaterA     *bool     `json:"heaterA"`
	HeaterB     *bool     `json:"heaterB"`
	Lamp        *bool     `json:"lamp"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Power returns the power state for the given role.
func (u Update) Power(role Role) *bool {
	switch role {
	case RoleHeaterA:
		return u.HeaterA
	case RoleHeaterB:
		return u.HeaterB
	case RoleLamp:
		return u.Lamp
	default:
		return nil
	}
}

type deviceAPI interface {
	GetDeviceState(ctx context.Context, device, model string) (govee.Properties, error)
	ControlDevice(ctx context.Context, device, model string, on bool) error
}

// Service reads and switches outputs. Failures never propagate: reads surface as
// nil, commands as false.
type Service struct {
	api      deviceAPI
	bindings Bindings
	logger   *slog.Logger
}

func New(api deviceAPI, bindings Bindings, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		bindings: bindings,
		logger:   logger,
	}
}

// Set switches the output for role on or off and reports wire-level success. A blank
// binding returns false without a network call.
func (s *Service) Set(ctx context.Context, role Role, on bool) bool {
	binding := s.bindings.binding(role)
	if binding.Empty() {
		return false
	}
	if err := s.api.ControlDevice(ctx, binding.Device, binding.Model, on); err != nil {
		s.logger.Warn("control failed", "role", string(role), "err", err)
		return false
	}
	return true
}

// GetPower reads the plug's power state. Nil means unknown, not off.
func (s *Service) GetPower(ctx context.Context, binding govee.Binding) *bool {
	if binding.Empty() {
		return nil
	}
	properties, err := s.api.GetDeviceState(ctx, binding.Device, binding.Model)
	if err != nil {
		s.logger.Warn("state read failed", "device", binding.Device, "err", err)
		return nil
	}
	return properties.Power().Bool()
}

// Update reads all output roles and stamps the result. Used as the output poller's
// update function.
func (s *Service) Update(ctx context.Context) (Update, error) {
	update := Update{
		HeaterA: s.GetPower(ctx, s.bindings.HeaterA),
		HeaterB: s.GetPower(ctx, s.bindings.HeaterB),
		Lamp:    s.GetPower(ctx, s.bindings.Lamp),
	}
	update.LastUpdated = time.Now()
	return update, nil
}
