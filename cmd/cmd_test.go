package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the host's config file and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{"POLYGON_API_KEY", "POLYGON_BASE_URL", "POLYGON_STREAM_URL", "POLYGON_RATE_LIMIT"} {
		t.Setenv(key, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

type recorded struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (r *recorded) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

func (r *recorded) last() *http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.Clone(context.Background()))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", args: nil, want: map[string]string{}},
		{name: "pairs", args: []string{"--market", "crypto", "--limit", "5"}, want: map[string]string{"market": "crypto", "limit": "5"}},
		{name: "equals", args: []string{"--limit=5", "--search=a=b"}, want: map[string]string{"limit": "5", "search": "a=b"}},
		{name: "bare flag before flag", args: []string{"--all", "--limit", "5"}, want: map[string]string{"all": "true", "limit": "5"}},
		{name: "trailing bare flag", args: []string{"--limit", "5", "--all"}, want: map[string]string{"limit": "5", "all": "true"}},
		{name: "later wins", args: []string{"--limit", "5", "--limit", "7"}, want: map[string]string{"limit": "7"}},
		{name: "empty value", args: []string{"--search="}, want: map[string]string{"search": ""}},
		{name: "positional", args: []string{"crypto"}, wantErr: true},
		{name: "single dash", args: []string{"-o", "json"}, wantErr: true},
		{name: "double dash", args: []string{"--"}, wantErr: true},
		{name: "empty key", args: []string{"--=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointCommandBuildsRequest(t *testing.T) {
	isolate(t)
	srv, rec := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[{"t":1704067200000,"o":1.5,"c":2}]}`)
	})

	out, err := run(t, "stocks-aggs",
		"--api-key", "secret", "--base-url", srv.URL,
		"--ticker", "AAPL", "--multiplier", "1", "--timespan", "day",
		"--from", "2024-01-01", "--to", "2024-01-31", "--limit", "10")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/day/2024-01-01/2024-01-31", req.URL.Path)
	assert.Equal(t, "10", req.URL.Query().Get("limit"))
	assert.Equal(t, "true", req.URL.Query().Get("adjusted"))
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "OK", body["status"])
}

func TestEndpointCommandTableOutput(t *testing.T) {
	isolate(t)
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"ticker":"AAPL","name":"Apple Inc.","market":"stocks","active":true}]}`)
	})

	out, err := run(t, "tickers", "--api-key", "k", "--base-url", srv.URL, "-o", "table")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "TICKER")
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[1], "AAPL")
	assert.Contains(t, lines[1], "Apple Inc.")
}

func TestEndpointCommandAllPages(t *testing.T) {
	isolate(t)
	var srv *httptest.Server
	srv, rec := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			fmt.Fprintf(w, `{"status":"OK","results":[{"ticker":"A"}],"next_url":"%s/v3/reference/tickers?cursor=p2"}`, srv.URL)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"ticker":"B"}]}`)
	})

	out, err := run(t, "tickers", "--api-key", "k", "--base-url", srv.URL, "--all")
	require.NoError(t, err)
	assert.Len(t, rec.requests, 2)

	var body struct {
		Count   int `json:"count"`
		Results []struct {
			Ticker string `json:"ticker"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "B", body.Results[1].Ticker)
}

func TestEndpointCommandMissingRequiredFlag(t *testing.T) {
	isolate(t)
	_, err := run(t, "stocks-prev", "--api-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker")
}

func TestEndpointCommandAPIError(t *testing.T) {
	isolate(t)
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"status":"ERROR","error":"not entitled"}`)
	})

	_, err := run(t, "stocks-prev", "--api-key", "k", "--base-url", srv.URL, "--retries", "0", "--ticker", "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stocks-prev")
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "not entitled")
}

func TestEndpointCommandNoAPIKey(t *testing.T) {
	isolate(t)
	_, err := run(t, "stocks-prev", "--ticker", "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestInvalidOutputFormat(t *testing.T) {
	isolate(t)
	_, err := run(t, "stocks-prev", "--api-key", "k", "--ticker", "AAPL", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestCallCommand(t *testing.T) {
	isolate(t)
	srv, rec := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"ticker":"X:BTCUSD"}]}`)
	})

	out, err := run(t, "call", "v3/reference/tickers",
		"--api-key", "k", "--base-url", srv.URL, "--market", "crypto", "--limit=5", "-o=csv")
	// "-o=csv" is not a --flag, so ParseFlags rejects it.
	require.Error(t, err)
	assert.Empty(t, out)

	out, err = run(t, "call", "v3/reference/tickers",
		"--api-key", "k", "--base-url", srv.URL, "--market", "crypto", "--limit=5", "--output", "csv")
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, "/v3/reference/tickers", req.URL.Path)
	assert.Equal(t, "crypto", req.URL.Query().Get("market"))
	assert.Equal(t, "5", req.URL.Query().Get("limit"))
	assert.Empty(t, req.URL.Query().Get("api-key"))
	assert.Empty(t, req.URL.Query().Get("output"))
	assert.Equal(t, "ticker\nX:BTCUSD\n", out)
}

func TestCallCommandHelp(t *testing.T) {
	isolate(t)
	out, err := run(t, "call")
	require.NoError(t, err)
	assert.Contains(t, out, "call <path>")
}

func TestCallCommandHelpAfterPath(t *testing.T) {
	isolate(t)
	srv, rec := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	for _, flag := range []string{"--help", "-h"} {
		out, err := run(t, "call", "/v1/marketstatus/now", "--api-key", "k", "--base-url", srv.URL, flag)
		require.NoError(t, err, flag)
		assert.Contains(t, out, "call <path>", flag)
	}
	assert.Empty(t, rec.requests)
}

func TestListCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "commands", "--group", "forex")
	require.NoError(t, err)
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "forex-convert")
	assert.NotContains(t, out, "stocks-aggs")

	_, err = run(t, "commands", "--group", "nope")
	assert.Error(t, err)
}

func TestEveryEndpointIsRegistered(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"stocks-aggs", "crypto-prev", "forex-convert", "options-chain", "tickers", "news", "call", "stream", "ingest", "server", "commands"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}
