package devices

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/salvatore/habitat-monitor/internal/govee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowDevices(t *testing.T) {
	lister := fakeLister{devices: []govee.Device{
		{Device: "AA:BB:CC:DD", Model: "H5179", Name: "Inside"},
		{Device: "11:22:33:44", Model: "H5001", Name: "Lamp"},
	}}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	require.NoError(t, ShowDevices(t.Context(), lister, encoder))

	var got []govee.Device
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, lister.devices, got)
}

func TestShowDevices_Error(t *testing.T) {
	lister := fakeLister{err: errors.New("api down")}
	err := ShowDevices(t.Context(), lister, json.NewEncoder(&bytes.Buffer{}))
	assert.ErrorContains(t, err, "api down")
}

type fakeLister struct {
	devices []govee.Device
	err     error
}

func (f fakeLister) GetDevices(_ context.Context) ([]govee.Device, error) {
	return f.devices, f.err
}
