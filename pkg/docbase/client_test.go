package docbase

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestClient_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "test",
		Output: &buf,
		Level:  hclog.Trace,
	})

	client, _ := newTestClient(t, WithLogger(logger))

	_, err := client.Tags(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "test.docbase")
	assert.Contains(t, out, "sending request")
	assert.Contains(t, out, "received response")
	assert.Contains(t, out, "/teams/kray/tags")
	assert.NotContains(t, out, testToken)
}

func TestClient_WithTracing(t *testing.T) {
	client, srv := newTestClient(t, WithTracing("docbase-test"))

	groups, err := client.Groups(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)

	assert.Equal(t, testToken, lastRequest(t, srv).Header.Get("X-DocBaseToken"))
}

func TestClient_WithHTTPClient(t *testing.T) {
	var seen []string
	httpClient := &http.Client{
		Timeout: 5 * time.Second,
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = append(seen, req.Method+" "+req.URL.Path)
			return http.DefaultTransport.RoundTrip(req)
		}),
	}

	client, _ := newTestClient(t, WithHTTPClient(httpClient))

	_, err := client.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"GET /teams/kray/tags"}, seen)
}

func TestClient_ContextCanceled(t *testing.T) {
	client, srv := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Groups(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, srv.Requests())
}

func TestConfig_NewHTTPClient(t *testing.T) {
	insecure := false
	cfg := DefaultConfig("token", testTeam)
	cfg.Timeout = 3 * time.Second
	cfg.TLSVerify = &insecure

	httpClient := cfg.NewHTTPClient()
	assert.Equal(t, 3*time.Second, httpClient.Timeout)

	transport, ok := httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClient_WithRateLimiter(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	client, srv := newTestClient(t, WithRateLimiter(limiter))

	_, err := client.Tags(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Tags(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
	assert.Len(t, srv.Requests(), 1)
}

func TestClient_WithTracing_KeepsCallerClient(t *testing.T) {
	transport := &http.Transport{}
	httpClient := &http.Client{Transport: transport}

	for i := 0; i < 2; i++ {
		client, _ := newTestClient(t, WithHTTPClient(httpClient), WithTracing("docbase-test"))

		_, err := client.Tags(context.Background())
		require.NoError(t, err)
		assert.NotSame(t, httpClient, client.httpClient)
	}

	assert.Same(t, transport, httpClient.Transport)
}
