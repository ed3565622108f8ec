package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const openWeatherMapURL = "https://api.openweathermap.org"

// OpenWeatherMapClient fetches current conditions from OpenWeatherMap. Requires an
// API key; all requests use imperial units.
type OpenWeatherMapClient struct {
	BaseURL    string
	HTTPClient *http.Client
	apiKey     string
}

func NewOpenWeatherMapClient(apiKey string, httpClient *http.Client) *OpenWeatherMapClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenWeatherMapClient{
		BaseURL:    openWeatherMapURL,
		HTTPClient: httpClient,
		apiKey:     apiKey,
	}
}

// Conditions are current outside conditions. Either field may be absent.
type Conditions struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

// CurrentByCity fetches current conditions by free-text city query.
func (c *OpenWeatherMapClient) CurrentByCity(ctx context.Context, city string) (Conditions, error) {
	return c.current(ctx, url.Values{"q": []string{city}})
}

// CurrentByCoordinates fetches current conditions at the given coordinates.
func (c *OpenWeatherMapClient) CurrentByCoordinates(ctx context.Context, lat, lon float64) (Conditions, error) {
	return c.current(ctx, url.Values{
		"lat": []string{strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": []string{strconv.FormatFloat(lon, 'f', -1, 64)},
	})
}

func (c *OpenWeatherMapClient) current(ctx context.Context, query url.Values) (Conditions, error) {
	query.Set("appid", c.apiKey)
	query.Set("units", "imperial")

	var response struct {
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
		} `json:"main"`
	}
	if err := getJSON(ctx, c.HTTPClient, c.BaseURL+"/data/2.5/weather?"+query.Encode(), &response); err != nil {
		return Conditions{}, err
	}
	return Conditions{Temperature: response.Main.Temp, Humidity: response.Main.Humidity}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, response any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("call: %s", resp.Status)
	}
	if err = json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
