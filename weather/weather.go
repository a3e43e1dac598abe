//go:generate mockgen -destination=../mocks/mock_weather.go -package=mocks github.com/hatstand/shinyweather/weather Doer
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	BaseURL = "https://api.openweathermap.org/data/2.5/weather"
)

// Doer is the subset of *http.Client used by Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is returned when OpenWeatherMap answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("weather API returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("weather API returned %d", e.StatusCode)
}

type Client struct {
	baseURL string
	apiKey  string
	doer    Doer
	logger  *zap.Logger
}

func NewClient(apiKey string, doer Doer, logger *zap.Logger) *Client {
	return &Client{
		baseURL: BaseURL,
		apiKey:  apiKey,
		doer:    doer,
		logger:  logger,
	}
}

// SetBaseURL points the client at a different endpoint, e.g. a test server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// BuildURL returns the request URL for the current weather in city.
func (c *Client) BuildURL(city string, units Units) string {
	return buildURL(c.baseURL, city, c.apiKey, units)
}

// Parameters are written in a fixed q, appid, units order; url.Values would
// sort them.
func buildURL(base, city, key string, units Units) string {
	return fmt.Sprintf("%s?q=%s&appid=%s&units=%s",
		base, url.QueryEscape(city), url.QueryEscape(key), units.Token())
}

// Fetch issues a single GET for city and returns the raw response body.
func (c *Client) Fetch(ctx context.Context, city string, units Units) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(city, units), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build weather request")
	}
	c.logger.Debug("Fetching current weather",
		zap.String("city", city),
		zap.String("url", buildURL(c.baseURL, city, "REDACTED", units)))

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch weather for %q", city)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read weather response")
	}
	c.logger.Debug("Weather response received",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// Current fetches and decodes the current weather for city.
func (c *Client) Current(ctx context.Context, city string, units Units) (*Report, error) {
	body, err := c.Fetch(ctx, city, units)
	if err != nil {
		return nil, err
	}
	return Decode(body)
}

// Error bodies look like {"cod":"404","message":"city not found"}; cod is
// sometimes a number so only the message is read.
func newAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &APIError{StatusCode: status}
	}
	return &APIError{StatusCode: status, Message: envelope.Message}
}
