package govee

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Govee-API-Key"))
		assert.Equal(t, "/v1/devices", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"device":"AA:BB","model":"H5075","deviceName":"office"}]}`))
	}))
	defer server.Close()

	c := NewClient("secret", nil)
	c.BaseURL = server.URL

	devices, err := c.GetDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, Device{Device: "AA:BB", Model: "H5075", Name: "office"}, devices[0])
}

func TestClient_GetDeviceState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/devices/state", r.URL.Path)
		assert.Equal(t, "AA:BB", r.URL.Query().Get("device"))
		assert.Equal(t, "H5075", r.URL.Query().Get("model"))
		_, _ = w.Write([]byte(`{"data":{"properties":[{"online":true},{"powerState":"on"},{"temperature":71.2},{"humidity":40}]}}`))
	}))
	defer server.Close()

	c := NewClient("secret", nil)
	c.BaseURL = server.URL

	props, err := c.GetDeviceState(context.Background(), "AA:BB", "H5075")
	require.NoError(t, err)
	require.NotNil(t, props.Temperature())
	assert.Equal(t, 71.2, *props.Temperature())
	require.NotNil(t, props.Humidity())
	assert.Equal(t, 40.0, *props.Humidity())
	assert.Equal(t, PowerOn, props.Power())
}

func TestClient_ControlDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/devices/control", r.URL.Path)
		var body struct {
			Device string `json:"device"`
			Model  string `json:"model"`
			Cmd    struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"cmd"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "turn", body.Cmd.Name)
		assert.Equal(t, "off", body.Cmd.Value)
		_, _ = w.Write([]byte(`{"message":"Success"}`))
	}))
	defer server.Close()

	c := NewClient("secret", nil)
	c.BaseURL = server.URL

	assert.NoError(t, c.ControlDevice(context.Background(), "AA:BB", "H5080", false))
}

func TestClient_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient("secret", nil)
	c.BaseURL = server.URL

	_, err := c.GetDevices(context.Background())
	assert.Error(t, err)
	_, err = c.GetDeviceState(context.Background(), "AA:BB", "H5075")
	assert.Error(t, err)
	assert.Error(t, c.ControlDevice(context.Background(), "AA:BB", "H5080", true))
}

func TestPowerState_Bool(t *testing.T) {
	on := PowerOn.Bool()
	require.NotNil(t, on)
	assert.True(t, *on)

	off := PowerOff.Bool()
	require.NotNil(t, off)
	assert.False(t, *off)

	assert.Nil(t, PowerUnknown.Bool())
}

func TestProperties_Power(t *testing.T) {
	mixedCase := "ON"
	unrecognized := "foo"

	props := Properties{{PowerState: &mixedCase}}
	assert.Equal(t, PowerOn, props.Power())

	props = Properties{{}, {PowerState: &unrecognized}}
	assert.Equal(t, PowerUnknown, props.Power())

	assert.Equal(t, PowerUnknown, Properties{}.Power())
}
