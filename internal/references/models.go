// Package references stores the links between source items and ledger
// accounts, plus the per-link sync cursor.
package references

import "time"

// AccountReference links one Pluggy item to one YNAB account. Transactions
// fetched for the item are submitted to the account, attributed to the payee
// when one is set.
type AccountReference struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	SourceItemID    string    `json:"source_item_id"`
	LedgerAccountID string    `json:"ledger_account_id"`
	LedgerBudgetID  string    `json:"ledger_budget_id"`
	LedgerPayeeID   string    `json:"ledger_payee_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SyncCursor records how far a reference has been synced. LastSyncedDate is
// the newest day whose transactions were fully submitted; the next run
// resumes from there minus the configured overlap.
type SyncCursor struct {
	ReferenceID     string    `json:"reference_id"`
	LastSyncedDate  string    `json:"last_synced_date"`
	ServerKnowledge int64     `json:"server_knowledge"`
	UpdatedAt       time.Time `json:"updated_at"`
}
