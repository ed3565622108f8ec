// Package collector exposes the latest sensor, output, weather and API quota state
// as Prometheus metrics.
package collector

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/poller"
	"github.com/salvatore/habitat-monitor/internal/quota"
	"github.com/salvatore/habitat-monitor/internal/sensors"
	"github.com/salvatore/habitat-monitor/internal/weather"
)

var (
	sensorTemperature = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "sensor", "temperature_fahrenheit"),
		"Current temperature reported by this sensor in degrees fahrenheit",
		[]string{"sensor"},
		nil,
	)
	sensorHumidity = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "sensor", "humidity_percentage"),
		"Current relative humidity reported by this sensor",
		[]string{"sensor"},
		nil,
	)
	outputPowerState = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "output", "power_state"),
		"Power state of this output. 1 if the output is on",
		[]string{"output"},
		nil,
	)
	outsideTemperature = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "outside", "temperature_fahrenheit"),
		"Current outside temperature in degrees fahrenheit",
		[]string{"location"},
		nil,
	)
	outsideHumidity = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "outside", "humidity_percentage"),
		"Current outside relative humidity",
		[]string{"location"},
		nil,
	)
	apiRequestsToday = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "api", "requests_today"),
		"Number of Govee API requests made during the current server day",
		nil,
		nil,
	)
	apiConnected = prometheus.NewDesc(
		prometheus.BuildFQName("habitat", "api", "connected"),
		"1 if the last Govee API request succeeded",
		nil,
		nil,
	)
)

type Collector struct {
	SensorPoller  poller.Poller[sensors.Update]
	OutputPoller  poller.Poller[outputs.Update]
	WeatherPoller poller.Poller[weather.Update]
	Quota         *quota.Tracker
	Logger        *slog.Logger
	lock          sync.RWMutex
	lastSensors   *sensors.Update
	lastOutputs   *outputs.Update
	lastWeather   *weather.Update
}

func (c *Collector) Run(ctx context.Context) error {
	c.Logger.Debug("started")
	defer c.Logger.Debug("stopped")

	sensorCh := c.SensorPoller.Subscribe()
	defer c.SensorPoller.Unsubscribe(sensorCh)
	outputCh := c.OutputPoller.Subscribe()
	defer c.OutputPoller.Unsubscribe(outputCh)
	weatherCh := c.WeatherPoller.Subscribe()
	defer c.WeatherPoller.Unsubscribe(weatherCh)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update := <-sensorCh:
			c.lock.Lock()
			c.lastSensors = &update
			c.lock.Unlock()
		case update := <-outputCh:
			c.lock.Lock()
			c.lastOutputs = &update
			c.lock.Unlock()
		case update := <-weatherCh:
			c.lock.Lock()
			c.lastWeather = &update
			c.lock.Unlock()
		}
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- sensorTemperature
	ch <- sensorHumidity
	ch <- outputPowerState
	ch <- outsideTemperature
	ch <- outsideHumidity
	ch <- apiRequestsToday
	ch <- apiConnected
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.lastSensors != nil {
		c.collectSensors(ch)
	}
	if c.lastOutputs != nil {
		c.collectOutputs(ch)
	}
	if c.lastWeather != nil {
		c.collectWeather(ch)
	}
	c.collectQuota(ch)
}

func (c *Collector) collectSensors(ch chan<- prometheus.Metric) {
	for _, role := range sensors.Roles {
		reading := c.lastSensors.Reading(role)
		if reading.Temperature != nil {
			ch <- prometheus.MustNewConstMetric(sensorTemperature, prometheus.GaugeValue, *reading.Temperature, string(role))
		}
		if reading.Humidity != nil {
			ch <- prometheus.MustNewConstMetric(sensorHumidity, prometheus.GaugeValue, *reading.Humidity, string(role))
		}
	}
}

func (c *Collector) collectOutputs(ch chan<- prometheus.Metric) {
	for _, role := range outputs.Roles {
		power := c.lastOutputs.Power(role)
		if power == nil {
			continue
		}
		var value float64
		if *power {
			value = 1.0
		}
		ch <- prometheus.MustNewConstMetric(outputPowerState, prometheus.GaugeValue, value, string(role))
	}
}

func (c *Collector) collectWeather(ch chan<- prometheus.Metric) {
	if c.lastWeather.Temperature != nil {
		ch <- prometheus.MustNewConstMetric(outsideTemperature, prometheus.GaugeValue, *c.lastWeather.Temperature, c.lastWeather.Location)
	}
	if c.lastWeather.Humidity != nil {
		ch <- prometheus.MustNewConstMetric(outsideHumidity, prometheus.GaugeValue, *c.lastWeather.Humidity, c.lastWeather.Location)
	}
}

func (c *Collector) collectQuota(ch chan<- prometheus.Metric) {
	snapshot := c.Quota.Snapshot()
	ch <- prometheus.MustNewConstMetric(apiRequestsToday, prometheus.GaugeValue, float64(snapshot.Requests))
	var connected float64
	if snapshot.Connected {
		connected = 1.0
	}
	ch <- prometheus.MustNewConstMetric(apiConnected, prometheus.GaugeValue, connected)
}
