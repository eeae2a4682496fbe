package pluggy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const defaultPageSize = 20

// Client provides typed operations on top of a Session.
type Client struct {
	session *Session
	log     zerolog.Logger
}

// NewClient creates a new Pluggy client.
func NewClient(session *Session, log zerolog.Logger) *Client {
	return &Client{
		session: session,
		log:     log.With().Str("client", "pluggy").Logger(),
	}
}

// GetItem fetches connection metadata for an item.
// An unknown item id surfaces as a RequestError with status 404.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	var item Item
	if err := c.session.Request(ctx, http.MethodGet, "/items/"+itemID, nil, nil, &item); err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}
	return &item, nil
}

// ListTransactionsParams filters the /transactions listing.
// From and To are inclusive; leaving both nil lists all history.
type ListTransactionsParams struct {
	AccountID string
	From      *time.Time
	To        *time.Time
	PageSize  int
	Page      int
}

// ListTransactions fetches one page of transactions for an account.
func (c *Client) ListTransactions(ctx context.Context, params ListTransactionsParams) (*TransactionPage, error) {
	if params.PageSize <= 0 {
		params.PageSize = defaultPageSize
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	query := url.Values{}
	query.Set("accountId", params.AccountID)
	query.Set("pageSize", strconv.Itoa(params.PageSize))
	query.Set("page", strconv.Itoa(params.Page))
	if params.From != nil {
		query.Set("from", params.From.Format("2006-01-02"))
	}
	if params.To != nil {
		query.Set("to", params.To.Format("2006-01-02"))
	}

	var page TransactionPage
	if err := c.session.Request(ctx, http.MethodGet, "/transactions", query, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", params.AccountID, err)
	}

	return &page, nil
}

// ListAllTransactions pages through the whole window, accumulating results
// in page order. Pagination is page-number based: loop while page <= totalPages.
// A failure on any page abandons the whole fetch so callers never see a
// partially assembled window.
func (c *Client) ListAllTransactions(ctx context.Context, accountID string, from, to *time.Time, pageSize int) ([]Transaction, error) {
	var all []Transaction

	page := 1
	for {
		result, err := c.ListTransactions(ctx, ListTransactionsParams{
			AccountID: accountID,
			From:      from,
			To:        to,
			PageSize:  pageSize,
			Page:      page,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, result.Results...)

		c.log.Debug().
			Str("account_id", accountID).
			Int("page", result.Page).
			Int("total_pages", result.TotalPages).
			Int("fetched", len(all)).
			Msg("Fetched transaction page")

		if page >= result.TotalPages {
			break
		}
		page++
	}

	return all, nil
}

// GetTransaction retrieves a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	var tx Transaction
	if err := c.session.Request(ctx, http.MethodGet, "/transactions/"+transactionID, nil, nil, &tx); err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", transactionID, err)
	}
	return &tx, nil
}
