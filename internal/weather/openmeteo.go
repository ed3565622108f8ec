package weather

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	openMeteoURL          = "https://api.open-meteo.com"
	openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com"
)

// OpenMeteoClient fetches current conditions from the free Open-Meteo forecast API.
// No key required; temperatures are requested in Fahrenheit.
type OpenMeteoClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewOpenMeteoClient(httpClient *http.Client) *OpenMeteoClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenMeteoClient{
		BaseURL:    openMeteoURL,
		HTTPClient: httpClient,
	}
}

// Current fetches current conditions at the given coordinates.
func (c *OpenMeteoClient) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	query := url.Values{
		"latitude":         []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":        []string{strconv.FormatFloat(lon, 'f', -1, 64)},
		"current":          []string{"temperature_2m,relative_humidity_2m"},
		"temperature_unit": []string{"fahrenheit"},
	}
	var response struct {
		Current struct {
			Temperature *float64 `json:"temperature_2m"`
			Humidity    *float64 `json:"relative_humidity_2m"`
		} `json:"current"`
	}
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/v1/forecast?"+query.Encode(), &response); err != nil {
		return Conditions{}, err
	}
	return Conditions{Temperature: response.Current.Temperature, Humidity: response.Current.Humidity}, nil
}

// A Location is one geocoding candidate.
type Location struct {
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	CountryCode string   `json:"country_code"`
	Admin1      string   `json:"admin1"`
}

// GeocodingClient resolves free-text place names through the Open-Meteo geocoding API.
type GeocodingClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeocodingClient(httpClient *http.Client) *GeocodingClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GeocodingClient{
		BaseURL:    openMeteoGeocodingURL,
		HTTPClient: httpClient,
	}
}

// Search returns up to count candidates for the given place name, in the provider's
// own relevance order.
func (c *GeocodingClient) Search(ctx context.Context, name string, count int) ([]Location, error) {
	query := url.Values{
		"name":     []string{name},
		"count":    []string{strconv.Itoa(count)},
		"language": []string{"en"},
		"format":   []string{"json"},
	}
	var response struct {
		Results []Location `json:"results"`
	}
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/v1/search?"+query.Encode(), &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}
