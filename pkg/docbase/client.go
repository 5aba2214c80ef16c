package docbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	httptrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/net/http"
)

// Client performs DocBase API calls for a single team. A Client is safe for
// concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     hclog.Logger
	fs         afero.Fs
	limiter    *rate.Limiter

	traceService string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. Requests are logged at debug and trace level.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces the HTTP client built from the Config.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithFs sets the filesystem files are uploaded from. Default is the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) { c.fs = fs }
}

// WithRateLimiter makes every request wait for a token from limiter.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) { c.limiter = limiter }
}

// WithTracing records Datadog APM spans for every request under the given
// service name.
func WithTracing(service string) Option {
	return func(c *Client) { c.traceService = service }
}

// NewClient creates a Client for cfg. The client keeps its own copy of cfg.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TLSVerify != nil {
		tlsVerify := *cfg.TLSVerify
		cfg.TLSVerify = &tlsVerify
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid docbase config: %w", err)
	}

	c := &Client{
		config:     &cfg,
		httpClient: cfg.NewHTTPClient(),
		logger:     hclog.NewNullLogger(),
		fs:         afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.Named("docbase")

	if c.traceService != "" {
		// WrapClient replaces the transport in place.
		hc := *c.httpClient
		c.httpClient = httptrace.WrapClient(&hc,
			httptrace.RTWithServiceName(c.traceService))
	}

	return c, nil
}

// Config returns a copy of the configuration of the client.
func (c *Client) Config() *Config {
	cfg := *c.config
	return &cfg
}

// indexURL returns the collection URL of a resource. Teams are addressed
// without the team prefix.
func (c *Client) indexURL(name string) string {
	if name == "teams" {
		return fmt.Sprintf("%s/teams", c.config.baseURL())
	}
	return fmt.Sprintf("%s/teams/%s/%s",
		c.config.baseURL(), url.PathEscape(c.config.Team), name)
}

// resourceURL returns the URL of a single resource.
func (c *Client) resourceURL(name string, id int64) string {
	return fmt.Sprintf("%s/%d", c.indexURL(name), id)
}

// get sends a GET request and decodes the response into result.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + params.Encode()
	}
	return c.doRequest(ctx, http.MethodGet, endpoint, nil, result)
}

// doRequest executes one API call. Non-2xx responses are returned as
// *HTTPError; there is no retry.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.config.Headers(method)

	c.logger.Debug("sending request", "method", method, "url", endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Trace("received response",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
