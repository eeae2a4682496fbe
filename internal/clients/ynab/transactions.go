package ynab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListTransactionsOptions filters a transaction listing. SinceID and
// LastKnowledgeOfServer support delta requests.
type ListTransactionsOptions struct {
	SinceID                string
	LastKnowledgeOfServer  int64
	IncludeSubtransactions bool
}

// ListTransactions returns a budget's transactions along with the server
// knowledge to pass on the next delta request.
func (c *Client) ListTransactions(ctx context.Context, budgetID string, opts ListTransactionsOptions) ([]Transaction, int64, error) {
	query := url.Values{}
	if opts.SinceID != "" {
		query.Set("since_id", opts.SinceID)
	}
	if opts.LastKnowledgeOfServer > 0 {
		query.Set("last_knowledge_of_server", strconv.FormatInt(opts.LastKnowledgeOfServer, 10))
	}
	if opts.IncludeSubtransactions {
		query.Set("include_subtransactions", "true")
	}

	var data struct {
		Transactions    []Transaction `json:"transactions"`
		ServerKnowledge int64         `json:"server_knowledge"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets/"+budgetID+"/transactions", query, nil, &data); err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions for budget %s: %w", budgetID, err)
	}

	return data.Transactions, data.ServerKnowledge, nil
}

// GetTransaction fetches a single transaction.
func (c *Client) GetTransaction(ctx context.Context, budgetID, transactionID string) (*Transaction, error) {
	var data struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := c.request(ctx, http.MethodGet, "/budgets/"+budgetID+"/transactions/"+transactionID, nil, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", transactionID, err)
	}
	return &data.Transaction, nil
}

// CreateTransaction creates a transaction in a budget. When the transaction
// carries an import id that already exists on its account, YNAB either
// returns 409 or acknowledges the create while listing the id under
// duplicate_import_ids. Both cases surface as ErrDuplicateImport so the
// caller can treat the re-submission as already applied.
func (c *Client) CreateTransaction(ctx context.Context, budgetID string, transaction CreateTransaction) (*Transaction, error) {
	payload := map[string]CreateTransaction{"transaction": transaction}

	var data struct {
		Transaction        *Transaction `json:"transaction"`
		DuplicateImportIDs []string     `json:"duplicate_import_ids"`
	}
	err := c.request(ctx, http.MethodPost, "/budgets/"+budgetID+"/transactions", nil, payload, &data)
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Status == http.StatusConflict {
			c.log.Debug().
				Str("import_id", transaction.ImportID).
				Msg("Transaction import id already exists")
			return nil, ErrDuplicateImport
		}
		return nil, fmt.Errorf("failed to create transaction in budget %s: %w", budgetID, err)
	}

	if transaction.ImportID != "" {
		for _, id := range data.DuplicateImportIDs {
			if id == transaction.ImportID {
				c.log.Debug().
					Str("import_id", transaction.ImportID).
					Msg("Transaction import id already exists")
				return nil, ErrDuplicateImport
			}
		}
	}

	if data.Transaction == nil {
		return nil, &ValidationError{
			Path: "/budgets/" + budgetID + "/transactions",
			Err:  fmt.Errorf("create response carried no transaction"),
		}
	}

	return data.Transaction, nil
}

// UpdateTransaction applies a partial update to an existing transaction.
func (c *Client) UpdateTransaction(ctx context.Context, budgetID, transactionID string, update UpdateTransaction) (*Transaction, error) {
	payload := map[string]UpdateTransaction{"transaction": update}

	var data struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := c.request(ctx, http.MethodPatch, "/budgets/"+budgetID+"/transactions/"+transactionID, nil, payload, &data); err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	return &data.Transaction, nil
}

// DeleteTransaction deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, budgetID, transactionID string) error {
	if err := c.request(ctx, http.MethodDelete, "/budgets/"+budgetID+"/transactions/"+transactionID, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return nil
}
