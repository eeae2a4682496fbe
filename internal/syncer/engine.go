// Package syncer moves transactions from source accounts into the ledger,
// one account reference at a time.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerlink-dev/ledgerlink/internal/clients/pluggy"
	"github.com/ledgerlink-dev/ledgerlink/internal/clients/ynab"
	"github.com/ledgerlink-dev/ledgerlink/internal/references"
)

// Status is the terminal state of one reference's sync run.
type Status string

const (
	// StatusCompleted - all records submitted, cursor advanced
	StatusCompleted Status = "completed"
	// StatusDeferred - window held no transactions, cursor unchanged
	StatusDeferred Status = "deferred"
	// StatusFailed - fetch or non-duplicate submission error, cursor unchanged
	StatusFailed Status = "failed"
)

// Result is the outcome of one reference's run.
type Result struct {
	ReferenceID string `json:"reference_id"`
	Name        string `json:"name"`
	Status      Status `json:"status"`
	Created     int    `json:"created"`
	Duplicates  int    `json:"duplicates"`
	Err         error  `json:"-"`
	Error       string `json:"error,omitempty"`
}

// Config tunes the engine.
type Config struct {
	PageSize       int
	ImportIDPrefix string
	OverlapDays    int
	Concurrency    int
}

// Engine coordinates the per-reference sync flow: resolve window, fetch,
// transform, submit, advance cursor. References are independent and may run
// concurrently, but runs for the same reference are serialized.
type Engine struct {
	source *pluggy.Client
	ledger *ynab.Client
	repo   *references.Repository
	now    func() time.Time
	cfg    Config
	locks  *keyedMutex
	log    zerolog.Logger
}

// NewEngine creates an engine. now is injectable for tests; pass time.Now
// in production.
func NewEngine(source *pluggy.Client, ledger *ynab.Client, repo *references.Repository, now func() time.Time, cfg Config, log zerolog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.ImportIDPrefix == "" {
		cfg.ImportIDPrefix = DefaultImportIDPrefix
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}

	return &Engine{
		source: source,
		ledger: ledger,
		repo:   repo,
		now:    now,
		cfg:    cfg,
		locks:  newKeyedMutex(),
		log:    log.With().Str("component", "syncer").Logger(),
	}
}

// SyncAll runs every reference, bounded-concurrently. One reference's
// failure never aborts the others; the returned slice has one result per
// reference in listing order.
func (e *Engine) SyncAll(ctx context.Context) ([]Result, error) {
	refs, err := e.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	results := make([]Result, len(refs))
	sem := make(chan struct{}, e.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, refID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = e.SyncReference(ctx, refID)
		}(i, ref.ID)
	}
	wg.Wait()

	return results, nil
}

// SyncReference runs one reference to completion, holding its lock for the
// whole run so two observers of the same stale cursor cannot double-submit.
func (e *Engine) SyncReference(ctx context.Context, referenceID string) Result {
	unlock := e.locks.Lock(referenceID)
	defer unlock()

	result := Result{ReferenceID: referenceID}

	ref, err := e.repo.Get(ctx, referenceID)
	if err != nil {
		return fail(result, err)
	}
	result.Name = ref.Name

	log := e.log.With().Str("reference", ref.Name).Logger()

	from, knowledge, err := e.resolveWindow(ctx, referenceID)
	if err != nil {
		return fail(result, err)
	}
	windowEnd := e.now().UTC()

	transactions, err := e.source.ListAllTransactions(ctx, ref.SourceItemID, from, &windowEnd, e.cfg.PageSize)
	if err != nil {
		log.Error().Err(err).Msg("Fetch failed, run abandoned")
		return fail(result, err)
	}

	if len(transactions) == 0 {
		log.Debug().Msg("No transactions in window")
		result.Status = StatusDeferred
		return result
	}

	var submitErrs []error
	for _, tx := range transactions {
		// A cancelled run leaves the cursor unmoved; import ids make
		// the retry safe.
		if ctx.Err() != nil {
			return fail(result, ctx.Err())
		}

		record := transform(ref, tx, e.cfg.ImportIDPrefix)

		_, err := e.ledger.CreateTransaction(ctx, ref.LedgerBudgetID, record)
		switch {
		case errors.Is(err, ynab.ErrDuplicateImport):
			result.Duplicates++
		case err != nil:
			log.Error().Err(err).Str("import_id", record.ImportID).Msg("Submission failed")
			submitErrs = append(submitErrs, err)
		default:
			result.Created++
		}
	}

	if len(submitErrs) > 0 {
		return fail(result, fmt.Errorf("%d of %d submissions failed: %w", len(submitErrs), len(transactions), submitErrs[0]))
	}

	knowledge = e.refreshServerKnowledge(ctx, ref.LedgerBudgetID, knowledge)

	if err := e.repo.AdvanceCursor(ctx, referenceID, windowEnd.Format("2006-01-02"), knowledge); err != nil {
		return fail(result, err)
	}

	log.Info().
		Int("created", result.Created).
		Int("duplicates", result.Duplicates).
		Str("window_end", windowEnd.Format("2006-01-02")).
		Msg("Sync completed")

	result.Status = StatusCompleted
	return result
}

// resolveWindow returns the window start (nil means full backfill) and the
// last recorded server knowledge. The start is rewound by the overlap so
// late-posting transactions near the cursor are re-fetched; import ids
// dedupe the re-submissions.
func (e *Engine) resolveWindow(ctx context.Context, referenceID string) (*time.Time, int64, error) {
	cursor, err := e.repo.GetCursor(ctx, referenceID)
	if err != nil {
		return nil, 0, err
	}
	if cursor == nil {
		return nil, 0, nil
	}

	lastSynced, err := time.Parse("2006-01-02", cursor.LastSyncedDate)
	if err != nil {
		return nil, 0, fmt.Errorf("corrupt cursor date %q for %s: %w", cursor.LastSyncedDate, referenceID, err)
	}

	from := lastSynced.AddDate(0, 0, -e.cfg.OverlapDays)
	return &from, cursor.ServerKnowledge, nil
}

// refreshServerKnowledge records the ledger's change cursor alongside ours.
// Best effort: a failure here keeps the previous value rather than failing
// a run whose submissions already landed.
func (e *Engine) refreshServerKnowledge(ctx context.Context, budgetID string, previous int64) int64 {
	_, knowledge, err := e.ledger.ListTransactions(ctx, budgetID, ynab.ListTransactionsOptions{
		LastKnowledgeOfServer: previous,
	})
	if err != nil {
		e.log.Warn().Err(err).Msg("Could not refresh server knowledge")
		return previous
	}
	return knowledge
}

func fail(result Result, err error) Result {
	result.Status = StatusFailed
	result.Err = err
	result.Error = err.Error()
	return result
}
