// Package llm is the HTTP client for the external text-generation
// service backing the dataset analysis and the chat assistant.
package llm

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

// Client talks to the text-generation service.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
}

// NewClient creates an assistant service client from configuration.
func NewClient(cfg *config.AssistantConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.ServiceURL, "/"),
	}
}

// Analyze requests a natural-language analysis of the combined series.
func (c *Client) Analyze(ctx context.Context, series models.CombinedSeries) (string, error) {
	req := AnalyzeRequest{Series: series}
	var response AnalyzeResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/api/analyze", req, &response); err != nil {
		return "", err
	}
	return response.Analysis, nil
}

// Chat answers a user question grounded on the context summary.
func (c *Client) Chat(ctx context.Context, question, contextSummary string) (string, error) {
	req := ChatRequest{Question: question, ContextSummary: contextSummary}
	var response ChatResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/api/chat", req, &response); err != nil {
		return "", err
	}
	return response.Answer, nil
}

// BaseURL returns the base URL of the assistant service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// makeRequest is a helper method to make HTTP requests to the assistant service
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
			return fmt.Errorf("assistant service error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		return fmt.Errorf("assistant service error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
