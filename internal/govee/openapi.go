package govee

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const openAPIURL = "https://openapi.api.govee.com"

// OpenAPIClient calls the Govee OpenAPI capability endpoint.
type OpenAPIClient struct {
	BaseURL    string
	HTTPClient *http.Client
	apiKey     string
}

func NewOpenAPIClient(apiKey string, httpClient *http.Client) *OpenAPIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAPIClient{
		BaseURL:    openAPIURL,
		HTTPClient: httpClient,
		apiKey:     apiKey,
	}
}

type openStateRequest struct {
	RequestID string           `json:"requestId"`
	Payload   openStatePayload `json:"payload"`
}

type openStatePayload struct {
	SKU    string `json:"sku"`
	Device string `json:"device"`
}

// GetDeviceState returns the capability list reported by one device.
func (c *OpenAPIClient) GetDeviceState(ctx context.Context, sku, device string) (Capabilities, error) {
	request := openStateRequest{
		RequestID: uuid.NewString(),
		Payload:   openStatePayload{SKU: sku, Device: device},
	}
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(request); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/router/api/v1/device/state", &body)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Govee-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call device/state: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("call device/state: %s", resp.Status)
	}

	var response struct {
		Payload struct {
			Capabilities Capabilities `json:"capabilities"`
		} `json:"payload"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode device/state: %w", err)
	}
	return response.Payload.Capabilities, nil
}
