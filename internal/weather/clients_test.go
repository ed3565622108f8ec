package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenWeatherMapClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"main":{"temp":40.1,"humidity":80}}`))
	}))
	defer server.Close()

	c := NewOpenWeatherMapClient("key", nil)
	c.BaseURL = server.URL

	conditions, err := c.CurrentByCity(context.Background(), "Chicago")
	require.NoError(t, err)
	require.NotNil(t, conditions.Temperature)
	assert.Equal(t, 40.1, *conditions.Temperature)
	require.NotNil(t, conditions.Humidity)
	assert.Equal(t, 80.0, *conditions.Humidity)

	_, err = c.CurrentByCoordinates(context.Background(), 42.0, -88.0)
	require.NoError(t, err)
}

func TestOpenMeteoClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "temperature_2m,relative_humidity_2m", r.URL.Query().Get("current"))
		assert.Equal(t, "fahrenheit", r.URL.Query().Get("temperature_unit"))
		_, _ = w.Write([]byte(`{"current":{"temperature_2m":38.5,"relative_humidity_2m":75}}`))
	}))
	defer server.Close()

	c := NewOpenMeteoClient(nil)
	c.BaseURL = server.URL

	conditions, err := c.Current(context.Background(), 42.0, -88.0)
	require.NoError(t, err)
	require.NotNil(t, conditions.Temperature)
	assert.Equal(t, 38.5, *conditions.Temperature)
}

func TestGeocodingClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Chicago", r.URL.Query().Get("name"))
		assert.Equal(t, "10", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`{"results":[{"name":"Chicago","latitude":41.85,"longitude":-87.65,"country_code":"US","admin1":"Illinois"}]}`))
	}))
	defer server.Close()

	c := NewGeocodingClient(nil)
	c.BaseURL = server.URL

	locations, err := c.Search(context.Background(), "Chicago", 10)
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "Chicago", locations[0].Name)
	assert.Equal(t, "Illinois", locations[0].Admin1)
}

func TestGeocodingClient_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewGeocodingClient(nil)
	c.BaseURL = server.URL

	_, err := c.Search(context.Background(), "Chicago", 10)
	assert.Error(t, err)
}
