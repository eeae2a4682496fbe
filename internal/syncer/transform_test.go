package syncer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerlink-dev/ledgerlink/internal/clients/pluggy"
	"github.com/ledgerlink-dev/ledgerlink/internal/clients/ynab"
	"github.com/ledgerlink-dev/ledgerlink/internal/references"
)

func TestToMilliunits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{12.34, 12340},
		{-0.005, -5},
		{0, 0},
		{10, 10000},
		{-12.345, -12345},
		{0.0004, 0},
		{0.0005, 1},
		{-1234.56, -1234560},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, toMilliunits(tt.amount), "amount %v", tt.amount)
	}
}

func TestBuildImportID(t *testing.T) {
	assert.Equal(t, "PLGY:src-1", buildImportID("PLGY:", "src-1"))

	// Truncated to the ledger's limit
	long := buildImportID("PLGY:", strings.Repeat("a", 100))
	assert.Len(t, long, 36)

	// Deterministic across calls
	assert.Equal(t, buildImportID("PLGY:", "src-1"), buildImportID("PLGY:", "src-1"))
}

func TestTransform(t *testing.T) {
	ref := &references.AccountReference{
		LedgerAccountID: "acc-1",
		LedgerBudgetID:  "budget-1",
		LedgerPayeeID:   "payee-1",
	}
	tx := pluggy.Transaction{
		ID:          "src-1",
		Amount:      -45.9,
		Date:        time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC),
		Description: "Grocery store",
		Status:      pluggy.TransactionPosted,
	}

	record := transform(ref, tx, "PLGY:")

	assert.Equal(t, "acc-1", record.AccountID)
	assert.Equal(t, "payee-1", record.PayeeID)
	assert.Equal(t, "2024-03-05", record.Date)
	assert.Equal(t, int64(-45900), record.Amount)
	assert.Equal(t, "Grocery store", record.Memo)
	assert.Equal(t, ynab.ClearedCleared, record.Cleared)
	assert.Equal(t, "PLGY:src-1", record.ImportID)
	assert.True(t, record.Approved)
}

func TestTransform_PendingIsUncleared(t *testing.T) {
	ref := &references.AccountReference{LedgerAccountID: "acc-1"}
	tx := pluggy.Transaction{ID: "src-1", Status: pluggy.TransactionPending}

	record := transform(ref, tx, "PLGY:")
	assert.Equal(t, ynab.ClearedUncleared, record.Cleared)
}
