package adapter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenizelocal/tokenizelocal/internal/adapter"
	"github.com/tokenizelocal/tokenizelocal/internal/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestGetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"meta": {"status": "ok"}}`))
	}))
	defer server.Close()

	client := adapter.NewHTTPClient(5 * time.Second)

	var result struct {
		Meta struct {
			Status string `json:"status"`
		} `json:"meta"`
	}
	err := client.Get(context.Background(), server.URL, &result)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Meta.Status)
}

func TestGetNonOKStatusIsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := adapter.NewHTTPClient(5 * time.Second)

	var result map[string]interface{}
	err := client.Get(context.Background(), server.URL, &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code 403")
	assert.Equal(t, 1, calls, "non-429 failures must not be retried")
}

func TestGetRetriesRateLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := adapter.NewHTTPClient(5 * time.Second)

	var result map[string]interface{}
	err := client.Get(context.Background(), server.URL, &result)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestGetInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := adapter.NewHTTPClient(5 * time.Second)

	var result map[string]interface{}
	err := client.Get(context.Background(), server.URL, &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}
