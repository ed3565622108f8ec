// Package govee implements typed clients for the two Govee cloud protocols: the
// Developer API (device list, device state, on/off control) and the OpenAPI
// capability endpoint used for device models the Developer API does not support.
package govee

import "strings"

// A Binding addresses one physical device at Govee: its device ID plus its model
// (SKU). A zero Binding means "no device assigned to this role".
type Binding struct {
	Device string
	Model  string
}

// Empty reports whether the binding lacks a device or model. Empty bindings never
// result in a network call.
func (b Binding) Empty() bool {
	return b.Device == "" || b.Model == ""
}

// The H5100 thermo-hygrometer is not served by the Developer API state endpoint and
// must be read through the OpenAPI capability endpoint instead.
const unsupportedModel = "H5100"

// NeedsCapabilityAPI reports whether the binding's model must be read through the
// capability endpoint.
func (b Binding) NeedsCapabilityAPI() bool {
	return strings.EqualFold(b.Model, unsupportedModel)
}

// Device is one entry of the account's device list.
type Device struct {
	Device string `json:"device"`
	Model  string `json:"model"`
	Name   string `json:"deviceName"`
}

// PowerState is the tri-state power property reported by a device. Unknown means the
// device reported no recognizable power property; callers must not treat it as off.
type PowerState int

const (
	PowerUnknown PowerState = iota
	PowerOff
	PowerOn
)

// Bool collapses the power state to an optional boolean.
func (p PowerState) Bool() *bool {
	switch p {
	case PowerOn:
		on := true
		return &on
	case PowerOff:
		off := false
		return &off
	default:
		return nil
	}
}

// Property is one entry of a device state response. The set of properties varies per
// device model; all fields are optional.
type Property struct {
	PowerState  *string  `json:"powerState"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

type Properties []Property

// Temperature returns the first reported temperature, if any.
func (p Properties) Temperature() *float64 {
	for _, prop := range p {
		if prop.Temperature != nil {
			return prop.Temperature
		}
	}
	return nil
}

// Humidity returns the first reported humidity, if any.
func (p Properties) Humidity() *float64 {
	for _, prop := range p {
		if prop.Humidity != nil {
			return prop.Humidity
		}
	}
	return nil
}

// Power maps the first reported power state string to On/Off. Anything else is Unknown.
func (p Properties) Power() PowerState {
	for _, prop := range p {
		if prop.PowerState == nil {
			continue
		}
		switch strings.ToLower(*prop.PowerState) {
		case "on":
			return PowerOn
		case "off":
			return PowerOff
		default:
			return PowerUnknown
		}
	}
	return PowerUnknown
}
