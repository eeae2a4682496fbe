package ynab

// Cleared status values for a transaction.
const (
	ClearedCleared    = "cleared"
	ClearedUncleared  = "uncleared"
	ClearedReconciled = "reconciled"
)

// ImportIDMaxLength is the longest import id YNAB accepts.
const ImportIDMaxLength = 36

// Budget is a YNAB budget summary. All ledger amounts elsewhere are
// expressed in milliunits of this budget's currency.
type Budget struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LastModifiedOn string `json:"last_modified_on"`
	FirstMonth     string `json:"first_month"`
	LastMonth      string `json:"last_month"`
}

// Account is a YNAB account. Balances are in milliunits.
type Account struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	OnBudget         bool   `json:"on_budget"`
	Closed           bool   `json:"closed"`
	Note             string `json:"note,omitempty"`
	Balance          int64  `json:"balance"`
	ClearedBalance   int64  `json:"cleared_balance"`
	UnclearedBalance int64  `json:"uncleared_balance"`
	TransferPayeeID  string `json:"transfer_payee_id,omitempty"`
	Deleted          bool   `json:"deleted"`
}

// CreateAccount is the payload for creating an account.
type CreateAccount struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance int64  `json:"balance"`
}

// Transaction is a YNAB transaction. Amount is in milliunits, negative
// for outflows.
type Transaction struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Memo       string `json:"memo,omitempty"`
	Cleared    string `json:"cleared"`
	Approved   bool   `json:"approved"`
	FlagColor  string `json:"flag_color,omitempty"`
	AccountID  string `json:"account_id"`
	PayeeID    string `json:"payee_id,omitempty"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	ImportID   string `json:"import_id,omitempty"`
	Deleted    bool   `json:"deleted"`
}

// CreateTransaction is the payload for creating a transaction. A non-empty
// ImportID makes the create idempotent per account.
type CreateTransaction struct {
	AccountID  string `json:"account_id"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Memo       string `json:"memo,omitempty"`
	Cleared    string `json:"cleared,omitempty"`
	Approved   bool   `json:"approved"`
	PayeeID    string `json:"payee_id,omitempty"`
	PayeeName  string `json:"payee_name,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	ImportID   string `json:"import_id,omitempty"`
}

// UpdateTransaction is the payload for a partial transaction update.
// Nil fields are left untouched.
type UpdateTransaction struct {
	Date       *string `json:"date,omitempty"`
	Amount     *int64  `json:"amount,omitempty"`
	Memo       *string `json:"memo,omitempty"`
	Cleared    *string `json:"cleared,omitempty"`
	Approved   *bool   `json:"approved,omitempty"`
	PayeeID    *string `json:"payee_id,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
}
