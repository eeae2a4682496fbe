package references

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrReferenceNotFound is returned when a lookup matches no reference.
var ErrReferenceNotFound = errors.New("account reference not found")

// Repository provides CRUD operations for references and cursors.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repository on an initialized references database.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user row. Creating an existing user is a no-op.
func (r *Repository) CreateUser(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", id, err)
	}
	return nil
}

// Create inserts a reference. The (user_id, source_item_id) pair is unique,
// so linking the same item twice for a user fails.
func (r *Repository) Create(ctx context.Context, ref *AccountReference) error {
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO account_references
		 (id, user_id, name, source_item_id, ledger_account_id, ledger_budget_id, ledger_payee_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ref.ID, ref.UserID, ref.Name, ref.SourceItemID,
		ref.LedgerAccountID, ref.LedgerBudgetID, ref.LedgerPayeeID,
		ref.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create reference %s: %w", ref.Name, err)
	}
	return nil
}

// Get returns a reference by id.
func (r *Repository) Get(ctx context.Context, id string) (*AccountReference, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, source_item_id, ledger_account_id, ledger_budget_id, ledger_payee_id, created_at
		 FROM account_references WHERE id = ?`, id)
	return scanReference(row)
}

// GetByItemID returns the reference a user has for a source item.
func (r *Repository) GetByItemID(ctx context.Context, userID, itemID string) (*AccountReference, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, source_item_id, ledger_account_id, ledger_budget_id, ledger_payee_id, created_at
		 FROM account_references WHERE user_id = ? AND source_item_id = ?`, userID, itemID)
	return scanReference(row)
}

// List returns all references ordered by name.
func (r *Repository) List(ctx context.Context) ([]AccountReference, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, source_item_id, ledger_account_id, ledger_budget_id, ledger_payee_id, created_at
		 FROM account_references ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer rows.Close()

	var refs []AccountReference
	for rows.Next() {
		ref, err := scanReferenceRows(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, rows.Err()
}

// Delete removes a reference. Its cursor goes with it via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM account_references WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reference %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrReferenceNotFound
	}
	return nil
}

// GetCursor returns the sync cursor for a reference, or nil when the
// reference has never completed a sync.
func (r *Repository) GetCursor(ctx context.Context, referenceID string) (*SyncCursor, error) {
	var cursor SyncCursor
	var updatedAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT reference_id, last_synced_date, server_knowledge, updated_at
		 FROM sync_cursors WHERE reference_id = ?`, referenceID,
	).Scan(&cursor.ReferenceID, &cursor.LastSyncedDate, &cursor.ServerKnowledge, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor for %s: %w", referenceID, err)
	}

	cursor.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &cursor, nil
}

// AdvanceCursor upserts the cursor in a single statement so a crash never
// leaves a half-written cursor behind.
func (r *Repository) AdvanceCursor(ctx context.Context, referenceID, lastSyncedDate string, serverKnowledge int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sync_cursors (reference_id, last_synced_date, server_knowledge, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(reference_id) DO UPDATE SET
		   last_synced_date = excluded.last_synced_date,
		   server_knowledge = excluded.server_knowledge,
		   updated_at = excluded.updated_at`,
		referenceID, lastSyncedDate, serverKnowledge, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to advance cursor for %s: %w", referenceID, err)
	}
	return nil
}

// ResetCursor removes the cursor, forcing the next sync to do a full
// backfill. Import ids keep the backfill from double-posting.
func (r *Repository) ResetCursor(ctx context.Context, referenceID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sync_cursors WHERE reference_id = ?`, referenceID); err != nil {
		return fmt.Errorf("failed to reset cursor for %s: %w", referenceID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReference(row *sql.Row) (*AccountReference, error) {
	ref, err := scanReferenceRows(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReferenceNotFound
	}
	return ref, err
}

func scanReferenceRows(s rowScanner) (*AccountReference, error) {
	var ref AccountReference
	var payeeID sql.NullString
	var createdAt string

	err := s.Scan(&ref.ID, &ref.UserID, &ref.Name, &ref.SourceItemID,
		&ref.LedgerAccountID, &ref.LedgerBudgetID, &payeeID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan reference: %w", err)
	}

	ref.LedgerPayeeID = payeeID.String
	ref.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &ref, nil
}
