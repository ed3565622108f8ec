package monitor

import (
	"net/http"

	"github.com/clambin/go-common/http/metrics"
	"github.com/clambin/go-common/http/roundtripper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/salvatore/habitat-monitor/internal/quota"
)

// makeHTTPClients builds the instrumented HTTP clients. Govee traffic additionally
// runs through the quota tracker, so every response's Date header feeds the
// server-day request counter.
func makeHTTPClients(tracker *quota.Tracker, registry prometheus.Registerer) (goveeClient, weatherClient *http.Client) {
	goveeMetrics := metrics.NewRequestMetrics(metrics.Options{
		Namespace:   "habitat",
		Subsystem:   "monitor",
		ConstLabels: prometheus.Labels{"api": "govee"},
	})
	weatherMetrics := metrics.NewRequestMetrics(metrics.Options{
		Namespace:   "habitat",
		Subsystem:   "monitor",
		ConstLabels: prometheus.Labels{"api": "weather"},
	})
	if registry != nil {
		registry.MustRegister(goveeMetrics, weatherMetrics)
	}

	goveeClient = &http.Client{Transport: roundtripper.New(
		roundtripper.WithRequestMetrics(goveeMetrics),
		roundtripper.WithRoundTripper(&quota.RoundTripper{Tracker: tracker, Next: http.DefaultTransport}),
	)}
	weatherClient = &http.Client{Transport: roundtripper.New(
		roundtripper.WithRequestMetrics(weatherMetrics),
	)}
	return goveeClient, weatherClient
}
