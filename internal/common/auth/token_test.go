package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-reporter/internal/common/errors"
)

func tokenServer(t *testing.T, calls *int32, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "mapper", r.PostForm.Get("client_id"))

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("invalid_client"))
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-1", ExpiresIn: 300, TokenType: "Bearer"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCredentials_CachesToken(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusOK)

	cc := NewClientCredentials(srv.URL, "mapper", "s3cret", srv.Client())

	for i := 0; i < 3; i++ {
		tok, err := cc.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientCredentials_RefreshesAfterExpiry(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusOK)

	now := time.Now()
	cc := NewClientCredentials(srv.URL, "mapper", "s3cret", srv.Client())
	cc.now = func() time.Time { return now }

	_, err := cc.Token(context.Background())
	require.NoError(t, err)

	now = now.Add(6 * time.Minute)
	_, err = cc.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientCredentials_Rejected(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusUnauthorized)

	cc := NewClientCredentials(srv.URL, "mapper", "wrong", srv.Client())
	_, err := cc.Token(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "AUTHENTICATION_ERROR"))
}

func TestClientCredentials_Apply(t *testing.T) {
	var calls int32
	srv := tokenServer(t, &calls, http.StatusOK)
	cc := NewClientCredentials(srv.URL, "mapper", "s3cret", srv.Client())

	req := httptest.NewRequest(http.MethodGet, "/jiraintegration/settings", nil)
	require.NoError(t, cc.Apply(context.Background(), req))
	assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
}
