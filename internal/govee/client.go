package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const developerAPIURL = "https://developer-api.govee.com"

// Client calls the Govee Developer API. The provided http.Client carries the
// instrumentation (request metrics and quota tracking) for all calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	apiKey     string
}

func NewClient(apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL:    developerAPIURL,
		HTTPClient: httpClient,
		apiKey:     apiKey,
	}
}

// GetDevices returns all devices visible to the account.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var response struct {
		Data []Device `json:"data"`
	}
	err := c.call(ctx, http.MethodGet, "/v1/devices", nil, &response)
	return response.Data, err
}

// GetDeviceState returns the properties reported by one device.
func (c *Client) GetDeviceState(ctx context.Context, device, model string) (Properties, error) {
	var response struct {
		Data struct {
			Properties Properties `json:"properties"`
		} `json:"data"`
	}
	path := "/v1/devices/state?" + url.Values{"device": []string{device}, "model": []string{model}}.Encode()
	err := c.call(ctx, http.MethodGet, path, nil, &response)
	return response.Data.Properties, err
}

type controlRequest struct {
	Device string         `json:"device"`
	Model  string         `json:"model"`
	Cmd    controlCommand `json:"cmd"`
}

type controlCommand struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ControlDevice turns a device on or off.
func (c *Client) ControlDevice(ctx context.Context, device, model string, on bool) error {
	value := "off"
	if on {
		value = "on"
	}
	body := controlRequest{
		Device: device,
		Model:  model,
		Cmd:    controlCommand{Name: "turn", Value: value},
	}
	var response struct {
		Message string `json:"message"`
	}
	return c.call(ctx, http.MethodPut, "/v1/devices/control", body, &response)
}

func (c *Client) call(ctx context.Context, method, path string, request, response any) error {
	var body bytes.Buffer
	if request != nil {
		if err := json.NewEncoder(&body).Encode(request); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &body)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Govee-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("call %s: %s", path, resp.Status)
	}
	if err = json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
