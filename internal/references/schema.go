package references

import (
	"database/sql"
	"fmt"
)

// InitSchema initializes the references database schema.
func InitSchema(db *sql.DB) error {
	schema := `
-- Owners of account references
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL
);

-- Link between a source (Pluggy) item and a ledger (YNAB) account
CREATE TABLE IF NOT EXISTS account_references (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    source_item_id TEXT NOT NULL,          -- Pluggy item id
    ledger_account_id TEXT NOT NULL,       -- YNAB account id
    ledger_budget_id TEXT NOT NULL,        -- YNAB budget id
    ledger_payee_id TEXT,                  -- YNAB payee id
    created_at TEXT NOT NULL,
    UNIQUE (user_id, source_item_id),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_account_references_user ON account_references(user_id);
CREATE INDEX IF NOT EXISTS idx_account_references_item ON account_references(source_item_id);

-- Per-reference sync progress
CREATE TABLE IF NOT EXISTS sync_cursors (
    reference_id TEXT PRIMARY KEY,
    last_synced_date TEXT NOT NULL,        -- YYYY-MM-DD of the newest synced day
    server_knowledge INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (reference_id) REFERENCES account_references(id) ON DELETE CASCADE
);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize references schema: %w", err)
	}

	return nil
}
