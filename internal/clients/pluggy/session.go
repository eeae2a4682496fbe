// Package pluggy provides client functionality for interacting with the Pluggy API.
package pluggy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.pluggy.ai"

	// Pluggy API keys are valid for 24 hours after issuance.
	apiKeyTTL = 24 * time.Hour
)

// Session owns the HTTP transport, the cached API key, and its expiry
// tracking for the Pluggy API. Authentication is transparent: callers use
// Request and the session refreshes the key on demand.
type Session struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	log          zerolog.Logger

	mu        sync.RWMutex
	apiKey    string
	expiresAt time.Time
}

// NewSession creates a session with static client credentials.
func NewSession(clientID, clientSecret string, log zerolog.Logger) (*Session, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("pluggy client id and secret are required")
	}

	return &Session{
		baseURL:      defaultBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          log.With().Str("client", "pluggy").Logger(),
	}, nil
}

// SetBaseURL overrides the API endpoint (tests).
func (s *Session) SetBaseURL(baseURL string) {
	s.baseURL = baseURL
}

// Authenticate exchanges the client credentials for an API key valid for 24h.
// Concurrent callers may each trigger an exchange; the last writer's key wins
// and all of them are valid, so no refresh lock is held across the call.
func (s *Session) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"clientId":     s.clientID,
		"clientSecret": s.clientSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.log.Error().
			Int("status_code", resp.StatusCode).
			Str("response_body", truncateBody(body)).
			Msg("Authentication failed")
		return &AuthError{Status: resp.StatusCode, Body: truncateBody(body)}
	}

	var authResp struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.Unmarshal(body, &authResp); err != nil {
		return &ValidationError{Path: "/auth", Body: truncateBody(body), Err: err}
	}
	if authResp.APIKey == "" {
		return &ValidationError{Path: "/auth", Body: truncateBody(body), Err: fmt.Errorf("empty apiKey in auth response")}
	}

	s.mu.Lock()
	s.apiKey = authResp.APIKey
	s.expiresAt = time.Now().Add(apiKeyTTL)
	s.mu.Unlock()

	s.log.Debug().Time("expires_at", time.Now().Add(apiKeyTTL)).Msg("Obtained Pluggy API key")
	return nil
}

// APIKey returns the cached key, refreshing it first when expired or absent.
func (s *Session) APIKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	key, expiresAt := s.apiKey, s.expiresAt
	s.mu.RUnlock()

	if key != "" && time.Now().Before(expiresAt) {
		return key, nil
	}

	if err := s.Authenticate(ctx); err != nil {
		return "", err
	}

	s.mu.RLock()
	key = s.apiKey
	s.mu.RUnlock()
	return key, nil
}

// Request executes an authenticated call against the Pluggy API.
// Status >= 400 yields a RequestError carrying status, path, and body.
// On 2xx the JSON body is decoded into out (when non-nil).
func (s *Session) Request(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	apiKey, err := s.APIKey(ctx)
	if err != nil {
		return err
	}

	requestURL := s.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		s.log.Error().
			Int("status_code", resp.StatusCode).
			Str("path", path).
			Str("response_body", truncateBody(respBody)).
			Msg("API returned error status")
		return &RequestError{Status: resp.StatusCode, Path: path, Body: truncateBody(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return &ValidationError{Path: path, Body: truncateBody(respBody), Err: err}
		}
	}

	return nil
}

// truncateBody limits response bodies kept in errors and logs.
func truncateBody(body []byte) string {
	const maxLen = 500
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
