package docbase

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DefaultBaseURL is the root of the DocBase API.
	DefaultBaseURL = "https://api.docbase.io"

	// TokenHeader carries the API token on every request.
	TokenHeader = "X-DocBaseToken"
)

// Config contains the settings needed to talk to the DocBase API.
//
// Example configuration (HCL):
//
//	docbase {
//	  team      = "kray"
//	  api_token = env("DOCBASE_API_TOKEN")
//	  timeout   = "30s"
//	}
type Config struct {
	// APIToken is the access token issued by DocBase.
	APIToken string `json:"-"` // Never serialized.

	// Team is the team (sub domain) all team scoped resources live under.
	Team string `json:"team"`

	// BaseURL is the API root. Empty means DefaultBaseURL.
	BaseURL string `json:"baseUrl,omitempty"`

	// Timeout for a single API request. Zero means no timeout beyond the
	// context passed to each call.
	Timeout time.Duration `json:"timeout,omitempty"`

	// TLSVerify controls TLS certificate verification. Nil means verify.
	TLSVerify *bool `json:"tlsVerify,omitempty"`
}

// DefaultConfig returns a Config for the given token and team with the
// public API endpoint.
func DefaultConfig(apiToken, team string) *Config {
	tlsVerify := true
	return &Config{
		APIToken:  apiToken,
		Team:      team,
		BaseURL:   DefaultBaseURL,
		TLSVerify: &tlsVerify,
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIToken, validation.Required),
		validation.Field(&c.Team, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Min(0)),
	)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("must include a host")
	}
	return nil
}

// Headers returns the request headers for the given method. Write methods
// (post, patch) carry the token and a JSON content type, read and delete
// methods carry only the token, and unknown methods get no headers.
func (c *Config) Headers(method string) http.Header {
	h := http.Header{}

	switch strings.ToLower(method) {
	case "post", "patch":
		h.Set(TokenHeader, c.APIToken)
		h.Set("Content-Type", "application/json")
	case "get", "delete":
		h.Set(TokenHeader, c.APIToken)
	}

	return h
}

// NewHTTPClient creates the HTTP client used for API requests.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}

func (c *Config) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}
