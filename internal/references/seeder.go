package references

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SeedEntry describes one reference to create during seeding.
type SeedEntry struct {
	Name            string `json:"name"`
	SourceItemID    string `json:"item_id"`
	LedgerAccountID string `json:"account_id"`
	LedgerBudgetID  string `json:"budget_id"`
	LedgerPayeeID   string `json:"payee_id"`
}

// seedUserID owns every file-seeded reference. The id is fixed so repeated
// seed runs land in the same (user, item) uniqueness scope instead of
// duplicating references under a fresh user.
const seedUserID = "seed-owner"

// Seeder creates an owning user and its references from a seed list.
type Seeder struct {
	repo *Repository
	log  zerolog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(repo *Repository, log zerolog.Logger) *Seeder {
	return &Seeder{
		repo: repo,
		log:  log.With().Str("component", "seeder").Logger(),
	}
}

// Seed creates the seed-owner user and one reference per entry, skipping
// entries whose item is already referenced so re-running a seed file is
// harmless. Returns the id of the user the references belong to.
func (s *Seeder) Seed(ctx context.Context, entries []SeedEntry) (string, error) {
	if len(entries) == 0 {
		return "", fmt.Errorf("no seed entries provided")
	}

	userID := seedUserID
	if err := s.repo.CreateUser(ctx, userID); err != nil {
		return "", err
	}

	created := 0
	for _, entry := range entries {
		if entry.SourceItemID == "" || entry.LedgerAccountID == "" || entry.LedgerBudgetID == "" {
			return "", fmt.Errorf("seed entry %q is missing item, account, or budget id", entry.Name)
		}

		existing, err := s.repo.GetByItemID(ctx, userID, entry.SourceItemID)
		if err != nil && !errors.Is(err, ErrReferenceNotFound) {
			return "", err
		}
		if existing != nil {
			s.log.Info().Str("name", entry.Name).Msg("Reference already exists, skipping")
			continue
		}

		ref := &AccountReference{
			ID:              uuid.NewString(),
			UserID:          userID,
			Name:            entry.Name,
			SourceItemID:    entry.SourceItemID,
			LedgerAccountID: entry.LedgerAccountID,
			LedgerBudgetID:  entry.LedgerBudgetID,
			LedgerPayeeID:   entry.LedgerPayeeID,
		}
		if err := s.repo.Create(ctx, ref); err != nil {
			return "", err
		}

		s.log.Info().Str("name", entry.Name).Str("reference_id", ref.ID).Msg("Created account reference")
		created++
	}

	s.log.Info().Int("created", created).Int("total", len(entries)).Msg("Seeding complete")
	return userID, nil
}
