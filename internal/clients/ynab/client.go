// Package ynab provides client functionality for interacting with the YNAB API.
package ynab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.youneedabudget.com/v1"

// Client is an authenticated YNAB API client. Every successful response
// is unwrapped from the API's one-level "data" envelope before decoding.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	log         zerolog.Logger
}

// NewClient creates a client using a personal access token.
func NewClient(accessToken string, log zerolog.Logger) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("ynab access token is required")
	}

	return &Client{
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		log:         log.With().Str("client", "ynab").Logger(),
	}, nil
}

// SetBaseURL overrides the API endpoint (tests).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// request executes a call and decodes the "data" envelope into out.
// Error mapping is by status: 404 becomes a NotFoundError whose kind is
// inferred from the path, 400 a BadRequestError, anything else >= 400 a
// RequestError.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	requestURL := c.baseURL + path
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
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response for %s: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		c.log.Error().
			Int("status_code", resp.StatusCode).
			Str("path", path).
			Str("response_body", truncateBody(respBody)).
			Msg("API returned error status")

		switch resp.StatusCode {
		case http.StatusNotFound:
			return &NotFoundError{Kind: resourceKind(path), Path: path, Body: truncateBody(respBody)}
		case http.StatusBadRequest:
			return &BadRequestError{Path: path, Body: truncateBody(respBody)}
		default:
			return &RequestError{Status: resp.StatusCode, Path: path, Body: truncateBody(respBody)}
		}
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &ValidationError{Path: path, Body: truncateBody(respBody), Err: err}
	}
	if envelope.Data == nil {
		return &ValidationError{Path: path, Body: truncateBody(respBody), Err: fmt.Errorf("missing data envelope")}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &ValidationError{Path: path, Body: truncateBody(respBody), Err: err}
	}

	return nil
}

// ListBudgets returns all budgets the token can see.
func (c *Client) ListBudgets(ctx context.Context) ([]Budget, error) {
	var data struct {
		Budgets []Budget `json:"budgets"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return data.Budgets, nil
}

// GetBudget fetches a single budget summary.
func (c *Client) GetBudget(ctx context.Context, budgetID string) (*Budget, error) {
	var data struct {
		Budget Budget `json:"budget"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets/"+budgetID, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to get budget %s: %w", budgetID, err)
	}
	return &data.Budget, nil
}

// ListAccounts returns all accounts in a budget.
func (c *Client) ListAccounts(ctx context.Context, budgetID string) ([]Account, error) {
	var data struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets/"+budgetID+"/accounts", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to list accounts for budget %s: %w", budgetID, err)
	}
	return data.Accounts, nil
}

// GetAccount fetches a single account.
func (c *Client) GetAccount(ctx context.Context, budgetID, accountID string) (*Account, error) {
	var data struct {
		Account Account `json:"account"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets/"+budgetID+"/accounts/"+accountID, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return &data.Account, nil
}

// CreateAccount creates an unlinked account in a budget.
func (c *Client) CreateAccount(ctx context.Context, budgetID string, account CreateAccount) (*Account, error) {
	payload := map[string]CreateAccount{"account": account}

	var data struct {
		Account Account `json:"account"`
	}
	if err := c.request(ctx, http.MethodPost, "/budgets/"+budgetID+"/accounts", nil, payload, &data); err != nil {
		return nil, fmt.Errorf("failed to create account in budget %s: %w", budgetID, err)
	}
	return &data.Account, nil
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
