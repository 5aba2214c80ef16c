package docbase

import (
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/kit494way/docbase-go/internal/fakedocbase"
)

const (
	testTeam  = "kray"
	testToken = "api_token"
)

// newTestClient starts a fake DocBase server and returns a client pointed at
// it.
func newTestClient(t *testing.T, opts ...Option) (*Client, *fakedocbase.Server) {
	t.Helper()

	srv := fakedocbase.New(testTeam, testToken)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(testToken, testTeam)
	cfg.BaseURL = srv.URL

	opts = append([]Option{WithLogger(hclog.NewNullLogger())}, opts...)
	client, err := NewClient(cfg, opts...)
	require.NoError(t, err)

	return client, srv
}

func lastRequest(t *testing.T, srv *fakedocbase.Server) fakedocbase.Request {
	t.Helper()

	req, ok := srv.LastRequest()
	require.True(t, ok, "no request was received")
	return req
}
