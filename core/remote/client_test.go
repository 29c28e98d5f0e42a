package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ids":[7,8]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RetryAttempts: 5})

	var out struct {
		IDs []int64 `json:"ids"`
	}
	err := c.Post(context.Background(), "/lists/batch", map[string]string{"x": "y"}, &out)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, out.IDs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("name already in use"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RetryAttempts: 5})

	err := c.Get(context.Background(), "/lists", nil)
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, AuthToken: "secret"})
	require.NoError(t, c.Delete(context.Background(), "/lists/1"))
	assert.Equal(t, "Bearer secret", gotAuth)
}
