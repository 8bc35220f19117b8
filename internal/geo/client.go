// Package geo validates destination names against an external geocoding
// service. Validation is advisory: an unreachable service or unknown place
// never blocks a search.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Place is one geocoding candidate.
type Place struct {
	Name       string  `json:"name"`
	Country    string  `json:"country,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Client queries a Nominatim-style geocoding endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a geocoding client with the given timeout in seconds.
func NewClient(baseURL string, timeoutSecs int, logger *zap.Logger) *Client {
	if timeoutSecs <= 0 {
		timeoutSecs = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSecs) * time.Second},
		logger:     logger,
	}
}

// Validate looks up the place name and returns the best candidate, or nil
// when the service has no match. Errors are returned for the caller to log
// and ignore.
func (c *Client) Validate(ctx context.Context, name string) (*Place, error) {
	if c == nil || c.baseURL == "" || name == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request failed with status %d", resp.StatusCode)
	}

	var results []struct {
		DisplayName string  `json:"display_name"`
		Importance  float64 `json:"importance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &Place{Name: results[0].DisplayName, Confidence: results[0].Importance}, nil
}
