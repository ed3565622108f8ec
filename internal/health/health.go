// Package health reports the latest known state of all monitored devices as a JSON
// document, for use as a liveness endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/poller"
	"github.com/salvatore/habitat-monitor/internal/quota"
	"github.com/salvatore/habitat-monitor/internal/sensors"
	"github.com/salvatore/habitat-monitor/internal/weather"
)

type Health struct {
	SensorPoller  poller.Poller[sensors.Update]
	OutputPoller  poller.Poller[outputs.Update]
	WeatherPoller poller.Poller[weather.Update]
	Quota         *quota.Tracker
	logger        *slog.Logger
	report        Report
	lock          sync.RWMutex
}

// Report is the body served by the health endpoint.
type Report struct {
	Sensors *sensors.Update `json:"sensors,omitempty"`
	Outputs *outputs.Update `json:"outputs,omitempty"`
	Weather *weather.Update `json:"weather,omitempty"`
	Quota   quota.Snapshot  `json:"quota"`
}

func New(sensorPoller poller.Poller[sensors.Update], outputPoller poller.Poller[outputs.Update], weatherPoller poller.Poller[weather.Update], tracker *quota.Tracker, logger *slog.Logger) *Health {
	return &Health{
		SensorPoller:  sensorPoller,
		OutputPoller:  outputPoller,
		WeatherPoller: weatherPoller,
		Quota:         tracker,
		logger:        logger,
	}
}

func (h *Health) Run(ctx context.Context) error {
	h.logger.Debug("started")
	defer h.logger.Debug("stopped")

	sensorCh := h.SensorPoller.Subscribe()
	defer h.SensorPoller.Unsubscribe(sensorCh)
	outputCh := h.OutputPoller.Subscribe()
	defer h.OutputPoller.Unsubscribe(outputCh)
	weatherCh := h.WeatherPoller.Subscribe()
	defer h.WeatherPoller.Unsubscribe(weatherCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-sensorCh:
			h.lock.Lock()
			h.report.Sensors = &update
			h.lock.Unlock()
		case update := <-outputCh:
			h.lock.Lock()
			h.report.Outputs = &update
			h.lock.Unlock()
		case update := <-weatherCh:
			h.lock.Lock()
			h.report.Weather = &update
			h.lock.Unlock()
		}
	}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	if h.report.Sensors == nil {
		http.Error(w, "no update yet", http.StatusServiceUnavailable)
		h.SensorPoller.Refresh()
		h.OutputPoller.Refresh()
		h.WeatherPoller.Refresh()
		return
	}

	w.Header().Set("Content-Type", "application/json")

	report := h.report
	report.Quota = h.Quota.Snapshot()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
