// Package devices implements the devices command, which lists all Govee devices on
// the account so their IDs can be copied into the configuration file.
package devices

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/salvatore/habitat-monitor/internal/govee"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Cmd = cobra.Command{
	Use:   "devices",
	Short: "List all Govee devices on the account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := govee.NewClient(viper.GetString("govee.apikey"), nil)
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return ShowDevices(cmd.Context(), c, encoder)
	},
}

type Encoder interface {
	Encode(any) error
}

type DeviceLister interface {
	GetDevices(context.Context) ([]govee.Device, error)
}

func ShowDevices(ctx context.Context, c DeviceLister, e Encoder) error {
	devices, err := c.GetDevices(ctx)
	if err != nil {
		return fmt.Errorf("govee: devices: %w", err)
	}
	return e.Encode(devices)
}
