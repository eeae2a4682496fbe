package syncer

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerlink-dev/ledgerlink/internal/clients/pluggy"
	"github.com/ledgerlink-dev/ledgerlink/internal/clients/ynab"
	"github.com/ledgerlink-dev/ledgerlink/internal/references"
)

// DefaultImportIDPrefix namespaces import ids derived from source
// transaction ids.
const DefaultImportIDPrefix = "PLGY:"

var thousand = decimal.NewFromInt(1000)

// toMilliunits converts a currency amount to integer milliunits, rounding
// half away from zero. 12.34 becomes 12340 and -0.005 becomes -5.
func toMilliunits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(thousand).Round(0).IntPart()
}

// buildImportID derives the idempotency key for a source transaction.
// The same source transaction always yields the same import id, so
// re-submissions collapse server-side. Truncated to the ledger's 36-byte
// import id limit.
func buildImportID(prefix, sourceTxID string) string {
	id := prefix + sourceTxID
	if len(id) > ynab.ImportIDMaxLength {
		id = id[:ynab.ImportIDMaxLength]
	}
	return id
}

// transform maps one source transaction onto a ledger create request using
// the reference's account, payee, and budget bindings.
func transform(ref *references.AccountReference, tx pluggy.Transaction, importIDPrefix string) ynab.CreateTransaction {
	cleared := ynab.ClearedUncleared
	if tx.Status == pluggy.TransactionPosted {
		cleared = ynab.ClearedCleared
	}

	return ynab.CreateTransaction{
		AccountID: ref.LedgerAccountID,
		Date:      tx.Date.Format("2006-01-02"),
		Amount:    toMilliunits(tx.Amount),
		Memo:      tx.Description,
		Cleared:   cleared,
		Approved:  true,
		PayeeID:   ref.LedgerPayeeID,
		ImportID:  buildImportID(importIDPrefix, tx.ID),
	}
}
