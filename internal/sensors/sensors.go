// Package sensors normalizes temperature/humidity readings across Govee device models
// into a uniform (temperature, humidity) pair per sensor role.
package sensors

import (
	"context"
	"log/slog"
	"time"

	"github.com/salvatore/habitat-monitor/internal/govee"
)

// Role identifies one of the monitored sensor positions.
type Role string

const (
	RoleInside Role = "inside"
	RoleTanks  Role = "tanks"
	RoleWater  Role = "water"
)

// Roles are all sensor roles, in display order.
var Roles = []Role{RoleInside, RoleTanks, RoleWater}

// Bindings maps each sensor role to a physical device.
type Bindings struct {
	Inside govee.Binding
	Tanks  govee.Binding
	Water  govee.Binding
}

// A Reading is the latest observed values for one sensor. Nil means the quantity was
// unavailable this cycle, never zero.
type Reading struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// Update is the result of one poll cycle. LastUpdated is set only after all roles
// have been read, so observers never see a torn update.
type Update struct {
	Inside      Reading   `json:"inside"`
	Tanks       Reading   `json:"tanks"`
	Water       Reading   `json:"water"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Reading returns the reading for the given role.
func (u Update) Reading(role Role) Reading {
	switch role {
	case RoleInside:
		return u.Inside
	case RoleTanks:
		return u.Tanks
	case RoleWater:
		return u.Water
	default:
		return Reading{}
	}
}

type deviceAPI interface {
	GetDevices(context.Context) ([]govee.Device, error)
	GetDeviceState(ctx context.Context, device, model string) (govee.Properties, error)
}

type capabilityAPI interface {
	GetDeviceState(ctx context.Context, sku, device string) (govee.Capabilities, error)
}

// Service reads sensor values. Failures never propagate: they surface as nil readings.
type Service struct {
	api      deviceAPI
	caps     capabilityAPI
	bindings Bindings
	logger   *slog.Logger
}

func New(api deviceAPI, caps capabilityAPI, bindings Bindings, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		caps:     caps,
		bindings: bindings,
		logger:   logger,
	}
}

// ReadPair reads temperature and humidity from one device in a single round trip.
// A blank binding yields an empty reading without a network call.
func (s *Service) ReadPair(ctx context.Context, binding govee.Binding) Reading {
	if binding.Empty() {
		return Reading{}
	}
	if binding.NeedsCapabilityAPI() {
		capabilities, err := s.caps.GetDeviceState(ctx, binding.Model, binding.Device)
		if err != nil {
			s.logger.Warn("capability read failed", "device", binding.Device, "err", err)
			return Reading{}
		}
		return Reading{
			Temperature: capabilities.Find("temperature"),
			Humidity:    capabilities.Find("humidity"),
		}
	}
	properties, err := s.api.GetDeviceState(ctx, binding.Device, binding.Model)
	if err != nil {
		s.logger.Warn("state read failed", "device", binding.Device, "err", err)
		return Reading{}
	}
	return Reading{
		Temperature: properties.Temperature(),
		Humidity:    properties.Humidity(),
	}
}

// ListDevices returns all devices visible to the account. Failures yield an empty
// list, never an error.
func (s *Service) ListDevices(ctx context.Context) []govee.Device {
	devices, err := s.api.GetDevices(ctx)
	if err != nil {
		s.logger.Warn("device list failed", "err", err)
		return nil
	}
	return devices
}

// Update reads all sensor roles and stamps the result. Used as the sensor poller's
// update function.
func (s *Service) Update(ctx context.Context) (Update, error) {
	update := Update{
		Inside: s.ReadPair(ctx, s.bindings.Inside),
		Tanks:  s.ReadPair(ctx, s.bindings.Tanks),
		Water:  s.ReadPair(ctx, s.bindings.Water),
	}
	update.LastUpdated = time.Now()
	return update, nil
}
