package pluggy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, handler http.Handler) (*Session, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session, err := NewSession("test-id", "test-secret", zerolog.Nop())
	require.NoError(t, err)
	session.SetBaseURL(server.URL)

	return session, server
}

func TestNewSession_RequiresCredentials(t *testing.T) {
	_, err := NewSession("", "secret", zerolog.Nop())
	assert.Error(t, err)

	_, err = NewSession("id", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestAuthenticate_StoresKeyAndExpiry(t *testing.T) {
	var capturedPayload map[string]string

	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedPayload))

		json.NewEncoder(w).Encode(map[string]string{"apiKey": "key-1"})
	}))

	require.NoError(t, session.Authenticate(context.Background()))

	assert.Equal(t, "test-id", capturedPayload["clientId"])
	assert.Equal(t, "test-secret", capturedPayload["clientSecret"])
	assert.Equal(t, "key-1", session.apiKey)
	assert.True(t, session.expiresAt.After(time.Now()))
}

func TestAuthenticate_NonOKStatus(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))

	err := session.Authenticate(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
	assert.Contains(t, authErr.Body, "invalid credentials")
}

func TestAPIKey_RefreshesExpiredToken(t *testing.T) {
	var authCalls atomic.Int32

	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"apiKey": "fresh-key"})
	}))

	// Seed an expired token
	session.apiKey = "stale-key"
	session.expiresAt = time.Now().Add(-time.Minute)

	key, err := session.APIKey(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fresh-key", key)
	assert.Equal(t, int32(1), authCalls.Load())
	assert.True(t, session.expiresAt.After(time.Now()))
}

func TestAPIKey_ReusesValidToken(t *testing.T) {
	var authCalls atomic.Int32

	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCalls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"apiKey": "unused"})
	}))

	session.apiKey = "cached-key"
	session.expiresAt = time.Now().Add(time.Hour)

	key, err := session.APIKey(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cached-key", key)
	assert.Equal(t, int32(0), authCalls.Load())
}

func TestRequest_AttachesAPIKeyHeader(t *testing.T) {
	var capturedHeader string

	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			json.NewEncoder(w).Encode(map[string]string{"apiKey": "header-key"})
			return
		}
		capturedHeader = r.Header.Get("X-API-KEY")
		w.Write([]byte(`{}`))
	}))

	var out map[string]interface{}
	err := session.Request(context.Background(), http.MethodGet, "/items/abc", nil, nil, &out)
	require.NoError(t, err)

	assert.Equal(t, "header-key", capturedHeader)
}

func TestRequest_ErrorStatusMapsToRequestError(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			json.NewEncoder(w).Encode(map[string]string{"apiKey": "k"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"item not found"}`))
	}))

	err := session.Request(context.Background(), http.MethodGet, "/items/missing", nil, nil, nil)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.Status)
	assert.Equal(t, "/items/missing", reqErr.Path)
	assert.True(t, reqErr.NotFound())
	assert.Contains(t, reqErr.Body, "item not found")
}

func TestRequest_MalformedPayloadMapsToValidationError(t *testing.T) {
	session, _ := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			json.NewEncoder(w).Encode(map[string]string{"apiKey": "k"})
			return
		}
		w.Write([]byte(`not json`))
	}))

	var out map[string]interface{}
	err := session.Request(context.Background(), http.MethodGet, "/items/abc", nil, nil, &out)
	require.Error(t, err)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
