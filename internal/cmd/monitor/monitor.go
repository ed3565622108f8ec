// Package monitor implements the main command: it polls all configured devices,
// serves metrics and health, and runs the output controller.
package monitor

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/clambin/go-common/taskmanager"
	"github.com/clambin/go-common/taskmanager/httpserver"
	promserver "github.com/clambin/go-common/taskmanager/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/salvatore/habitat-monitor/internal/collector"
	"github.com/salvatore/habitat-monitor/internal/controller"
	"github.com/salvatore/habitat-monitor/internal/controller/notifier"
	"github.com/salvatore/habitat-monitor/internal/govee"
	"github.com/salvatore/habitat-monitor/internal/health"
	"github.com/salvatore/habitat-monitor/internal/outputs"
	"github.com/salvatore/habitat-monitor/internal/poller"
	"github.com/salvatore/habitat-monitor/internal/quota"
	"github.com/salvatore/habitat-monitor/internal/sensors"
	"github.com/salvatore/habitat-monitor/internal/weather"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = cobra.Command{
	Use:   "monitor",
	Short: "Poll sensors and control outputs",
	RunE:  run,
}

func run(cmd *cobra.Command, _ []string) error {
	var opts slog.HandlerOptions
	if viper.GetBool("debug") {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &opts))
	logger.Info("habitat-monitor starting", "version", cmd.Root().Version)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := New(viper.GetViper(), prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer logger.Info("habitat-monitor stopped")
	return m.Run(ctx)
}

func New(cfg *viper.Viper, registry prometheus.Registerer, logger *slog.Logger) (*taskmanager.Manager, error) {
	r, err := maybeLoadRules(filepath.Join(filepath.Dir(cfg.ConfigFileUsed()), "rules.yaml"))
	if err != nil {
		return nil, err
	}
	return taskmanager.New(makeTasks(cfg, r, registry, logger)...), nil
}

func maybeLoadRules(path string) (controller.Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		return nil, err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	return controller.Load(f)
}

func makeTasks(cfg *viper.Viper, rules controller.Rules, registry prometheus.Registerer, l *slog.Logger) []taskmanager.Task {
	var tasks []taskmanager.Task

	tracker := &quota.Tracker{}
	goveeHTTPClient, weatherHTTPClient := makeHTTPClients(tracker, registry)

	apiKey := cfg.GetString("govee.apikey")
	deviceClient := govee.NewClient(apiKey, goveeHTTPClient)
	capabilityClient := govee.NewOpenAPIClient(apiKey, goveeHTTPClient)

	sensorService := sensors.New(deviceClient, capabilityClient, sensorBindings(cfg), l.With("component", "sensors"))
	outputService := outputs.New(deviceClient, outputBindings(cfg), l.With("component", "outputs"))
	weatherService := weather.New(
		cfg.GetString("weather.apikey"),
		cfg.GetString("weather.location"),
		weather.NewOpenWeatherMapClient(cfg.GetString("weather.apikey"), weatherHTTPClient),
		weather.NewOpenMeteoClient(weatherHTTPClient),
		weather.NewGeocodingClient(weatherHTTPClient),
		l.With("component", "weather"),
	)

	// Pollers
	sensorPoller := poller.New(sensorService.Update, cfg.GetDuration("sensors.interval"), l.With("component", "poller", "target", "sensors"))
	outputPoller := poller.New(outputService.Update, cfg.GetDuration("outputs.interval"), l.With("component", "poller", "target", "outputs"))
	weatherPoller := poller.New(weatherService.Update, cfg.GetDuration("weather.interval"), l.With("component", "poller", "target", "weather"))
	tasks = append(tasks, sensorPoller, outputPoller, weatherPoller)

	// Collector
	coll := &collector.Collector{
		SensorPoller:  sensorPoller,
		OutputPoller:  outputPoller,
		WeatherPoller: weatherPoller,
		Quota:         tracker,
		Logger:        l.With("component", "collector"),
	}
	if registry != nil {
		registry.MustRegister(coll)
	}
	tasks = append(tasks, coll)

	// Prometheus Server
	tasks = append(tasks, promserver.New(promserver.WithAddr(cfg.GetString("exporter.addr"))))

	// Health Endpoint
	h := health.New(sensorPoller, outputPoller, weatherPoller, tracker, l.With("component", "health"))
	tasks = append(tasks, h)
	mux := http.NewServeMux()
	mux.Handle("/health", h)
	tasks = append(tasks, httpserver.New(cfg.GetString("health.addr"), mux))

	// Controller
	if len(rules) > 0 {
		notifiers := notifier.Notifiers{notifier.SLogNotifier{Logger: l.With("component", "notifier")}}
		if token := cfg.GetString("notifier.slack.token"); token != "" {
			notifiers = append(notifiers, &notifier.SlackNotifier{
				Logger:      l.With("component", "notifier"),
				SlackSender: slack.New(token),
			})
		}
		tasks = append(tasks, controller.New(rules, sensorPoller, outputPoller, outputService, notifiers, l.With("component", "controller")))
	} else {
		l.Warn("no rules found. controller will not run")
	}

	return tasks
}

func sensorBindings(cfg *viper.Viper) sensors.Bindings {
	return sensors.Bindings{
		Inside: bindingFromConfig(cfg, "sensors.inside"),
		Tanks:  bindingFromConfig(cfg, "sensors.tanks"),
		Water:  bindingFromConfig(cfg, "sensors.water"),
	}
}

func outputBindings(cfg *viper.Viper) outputs.Bindings {
	return outputs.Bindings{
		HeaterA: bindingFromConfig(cfg, "outputs.heaterA"),
		HeaterB: bindingFromConfig(cfg, "outputs.heaterB"),
		Lamp:    bindingFromConfig(cfg, "outputs.lamp"),
	}
}

func bindingFromConfig(cfg *viper.Viper, key string) govee.Binding {
	return govee.Binding{
		Device: cfg.GetString(key + ".device"),
		Model:  cfg.GetString(key + ".model"),
	}
}
