package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHeader struct{}

func (failingHeader) Apply(context.Context, *http.Request) error { return errors.New("no token") }

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{"result":"fine"}`))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("try later"))
		case "/gone":
			w.WriteHeader(http.StatusNotFound)
		default:
			_, _ = w.Write([]byte("{"))
		}
	}))
	defer srv.Close()

	c := NewClient(2*time.Second, APIKey{Header: "x-api-key", Value: "secret"})

	var out struct {
		Result string `json:"result"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/ok", &out))
	assert.Equal(t, "fine", out.Result)

	err := c.GetJSON(context.Background(), srv.URL+"/busy", &out)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "try later", statusErr.Body)
	assert.True(t, statusErr.Transient())

	err = c.GetJSON(context.Background(), srv.URL+"/gone", &out)
	require.ErrorAs(t, err, &statusErr)
	assert.False(t, statusErr.Transient())

	assert.Error(t, c.GetJSON(context.Background(), srv.URL+"/broken", &out))
}

func TestClient_HeaderFailureStopsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer srv.Close()

	c := NewClientWith(srv.Client(), failingHeader{})
	err := c.GetJSON(context.Background(), srv.URL, &struct{}{})
	assert.EqualError(t, err, "no token")
	assert.False(t, called)
}

func TestIsTransientStatus(t *testing.T) {
	assert.True(t, IsTransientStatus(http.StatusTooManyRequests))
	assert.True(t, IsTransientStatus(http.StatusBadGateway))
	assert.False(t, IsTransientStatus(http.StatusBadRequest))
}
