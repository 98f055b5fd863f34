// Package polygon is a thin REST client for the Polygon.io market data API.
//
// Every endpoint is a GET against a path template. The client owns auth,
// rate limiting, retries and error decoding; callers hand it a resolved path
// and a query map and get the raw JSON body back, or use one of the typed
// helpers in endpoints.go.
package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const (
	DefaultBaseURL = "https://api.polygon.io"
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 2

	userAgent = "polycli/1.0"
)

// ErrNoAPIKey is returned before any request is made when the client has no key.
var ErrNoAPIKey = errors.New("missing API key: set POLYGON_API_KEY or pass --api-key")

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retries int
	// RateLimit is the number of requests allowed per minute. Zero disables it.
	RateLimit int
	Logger    *slog.Logger
}

type Client struct {
	http    *resty.Client
	apiKey  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(opts.Retries).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: logger})
	if opts.APIKey != "" {
		hc.SetAuthToken(opts.APIKey)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RateLimit)), 1)
	}

	return &Client{
		http:    hc,
		apiKey:  opts.APIKey,
		limiter: limiter,
		logger:  logger,
	}
}

// Get issues a GET for path (relative to the base URL, or absolute as in a
// next_url) and returns the response body. Non-2xx answers become *APIError.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	requestID := uuid.NewString()
	start := time.Now()
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}

	body := []byte(res.String())
	c.logger.Debug("API request",
		"method", "GET",
		"path", path,
		"status", res.StatusCode(),
		"request_id", requestID,
		"duration", time.Since(start))

	if res.IsError() {
		return nil, newAPIError(res.StatusCode(), res.Status(), body)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("GET %s: response is not valid JSON", path)
	}
	return json.RawMessage(body), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query map[string]string, v any) error {
	body, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
