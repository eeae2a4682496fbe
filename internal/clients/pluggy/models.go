package pluggy

import "time"

// Connector identifies the institution behind an item.
type Connector struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item is a linked bank connection on the Pluggy side.
type Item struct {
	ID              string    `json:"id"`
	Connector       Connector `json:"connector"`
	Status          string    `json:"status"`
	ExecutionStatus string    `json:"executionStatus"`
	ClientUserID    string    `json:"clientUserId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}

// Transaction statuses reported by Pluggy.
const (
	TransactionPosted  = "POSTED"
	TransactionPending = "PENDING"
)

// Transaction is a bank transaction as reported by Pluggy.
// Immutable once fetched; Pluggy is authoritative for these fields.
type Transaction struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"accountId"`
	Amount         float64   `json:"amount"`
	CurrencyCode   string    `json:"currencyCode"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	DescriptionRaw string    `json:"descriptionRaw"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Type           string    `json:"type"`
}

// TransactionPage is one page of the /transactions listing.
type TransactionPage struct {
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
	Page       int           `json:"page"`
	Results    []Transaction `json:"results"`
}
