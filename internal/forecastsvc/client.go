// Package forecastsvc is the HTTP client for the external forecasting
// service that extends a historical series with model predictions.
package forecastsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hydroanalytics/hydroforecast-go/internal/config"
	"github.com/hydroanalytics/hydroforecast-go/internal/models"
)

// Client talks to the forecasting service.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
}

// NewClient creates a forecasting service client from configuration.
func NewClient(cfg *config.ForecastConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// Forecast submits the historical segment and returns the historical
// and forecast segments produced by the model service.
func (c *Client) Forecast(ctx context.Context, historical models.TimeSeriesSegment, horizon int) (*ForecastResponse, error) {
	req := ForecastRequest{Historical: historical, Horizon: horizon}
	var response ForecastResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/api/forecast", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// HealthCheck checks whether the forecasting service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	var response HealthResponse
	return c.makeRequest(ctx, http.MethodGet, "/health", nil, &response)
}

// BaseURL returns the base URL of the forecasting service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// makeRequest is a helper method to make HTTP requests to the forecasting service
func (c *Client) makeRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Error != "" {
			return fmt.Errorf("forecast service error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("forecast service error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
