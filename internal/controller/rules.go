package controller

import (
	"fmt"
	"io"

	"github.com/clambin/go-common/set"
	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/sensors"
	"gopkg.in/yaml.v3"
)

// hysteresis is the fixed margin around the target band. An output only flips once
// the reading moves past the band by this much, so it doesn't chatter at the boundary.
const hysteresis = 0.5

// decide converts the current reading and the target band into an on/off decision.
// No reading keeps the previous state. The too-cold guard is evaluated first: with an
// inverted band both guards can hold and turning on wins.
func decide(current *float64, lower, upper float64, previous bool) bool {
	if current == nil {
		return previous
	}
	switch {
	case *current <= lower-hysteresis:
		return true
	case *current >= upper+hysteresis:
		return false
	default:
		return previous
	}
}

// A Band is the user-configured target range for one output, in degrees. The
// controller does not require lower ≤ upper.
type Band struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// A Rule binds one output to a sensor and a target band. A rule without an enabled
// entry is enabled.
type Rule struct {
	Output  outputs.Role `yaml:"output"`
	Sensor  sensors.Role `yaml:"sensor"`
	Band    Band         `yaml:"band"`
	Enabled *bool        `yaml:"enabled"`
}

type Rules []Rule

var (
	validOutputs = set.New(outputs.Roles...)
	validSensors = set.New(sensors.Roles...)
)

// Load reads rules from a rules file. Disabled rules are dropped.
func Load(r io.Reader) (Rules, error) {
	var config struct {
		Rules Rules `yaml:"rules"`
	}
	if err := yaml.NewDecoder(r).Decode(&config); err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	rules := make(Rules, 0, len(config.Rules))
	for _, rule := range config.Rules {
		if !validOutputs.Contains(rule.Output) {
			return nil, fmt.Errorf("rules: invalid output %q", rule.Output)
		}
		if !validSensors.Contains(rule.Sensor) {
			return nil, fmt.Errorf("rules: invalid sensor %q", rule.Sensor)
		}
		if rule.Enabled != nil && !*rule.Enabled {
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
