package cmd

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/clambin/go-common/charmer"
	"github.com/salvatore/habitat-monitor/internal/cmd/devices"
	"github.com/salvatore/habitat-monitor/internal/cmd/monitor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFilename string
	RootCmd        = cobra.Command{
		Use:   "habitat-monitor",
		Short: "Monitors Govee habitat sensors and controls their smart plugs",
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&configFilename, "config", "", "Configuration file")
	RootCmd.PersistentFlags().Bool("debug", false, "Log debug messages")
	_ = viper.BindPFlag("debug", RootCmd.PersistentFlags().Lookup("debug"))

	RootCmd.AddCommand(&monitor.Cmd, &devices.Cmd)
}

var args = charmer.Arguments{
	"debug":                  charmer.Argument{Default: false, Help: "Log debug messages"},
	"govee.apikey":           charmer.Argument{Default: "", Help: "Govee API key"},
	"sensors.interval":       charmer.Argument{Default: time.Minute, Help: "Sensor poll interval"},
	"sensors.inside.device":  charmer.Argument{Default: "", Help: "Inside sensor device ID"},
	"sensors.inside.model":   charmer.Argument{Default: "", Help: "Inside sensor model"},
	"sensors.tanks.device":   charmer.Argument{Default: "", Help: "Tank sensor device ID"},
	"sensors.tanks.model":    charmer.Argument{Default: "", Help: "Tank sensor model"},
	"sensors.water.device":   charmer.Argument{Default: "", Help: "Water sensor device ID"},
	"sensors.water.model":    charmer.Argument{Default: "", Help: "Water sensor model"},
	"outputs.interval":       charmer.Argument{Default: time.Minute, Help: "Output poll interval"},
	"outputs.heaterA.device": charmer.Argument{Default: "", Help: "Heater A plug device ID"},
	"outputs.heaterA.model":  charmer.Argument{Default: "", Help: "Heater A plug model"},
	"outputs.heaterB.device": charmer.Argument{Default: "", Help: "Heater B plug device ID"},
	"outputs.heaterB.model":  charmer.Argument{Default: "", Help: "Heater B plug model"},
	"outputs.lamp.device":    charmer.Argument{Default: "", Help: "Lamp plug device ID"},
	"outputs.lamp.model":     charmer.Argument{Default: "", Help: "Lamp plug model"},
	"weather.apikey":         charmer.Argument{Default: "", Help: "OpenWeatherMap API key"},
	"weather.location":       charmer.Argument{Default: "", Help: "Weather location (\"lat,lon\" or \"city[,state][,country]\")"},
	"weather.interval":       charmer.Argument{Default: 15 * time.Minute, Help: "Weather poll interval"},
	"exporter.addr":          charmer.Argument{Default: ":9090", Help: "Address of Prometheus exporter"},
	"health.addr":            charmer.Argument{Default: ":8080", Help: "Address of /health endpoint"},
	"notifier.slack.token":   charmer.Argument{Default: "", Help: "Slack token"},
}

func initConfig() {
	if configFilename != "" {
		viper.SetConfigFile(configFilename)
	} else {
		viper.AddConfigPath("/etc/habitat-monitor/")
		viper.AddConfigPath("$HOME/.habitat-monitor")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	if err := charmer.SetDefaults(viper.GetViper(), args); err != nil {
		panic("failed to set viper defaults: " + err.Error())
	}

	viper.SetEnvPrefix("HABITAT_MONITOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", "err", err)
			os.Exit(1)
		}
	}
}
