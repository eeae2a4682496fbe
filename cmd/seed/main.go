// Package main seeds account references from a JSON file. Each entry links
// a Pluggy item to a YNAB account:
//
//	[
//	  {
//	    "name": "Checking",
//	    "item_id": "...",
//	    "account_id": "...",
//	    "budget_id": "...",
//	    "payee_id": "..."
//	  }
//	]
//
// Usage: seed -file references.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/ledgerlink-dev/ledgerlink/internal/config"
	"github.com/ledgerlink-dev/ledgerlink/internal/database"
	"github.com/ledgerlink-dev/ledgerlink/internal/references"
	"github.com/ledgerlink-dev/ledgerlink/pkg/logger"
)

func main() {
	file := flag.String("file", "references.json", "path to the seed file")
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Pretty: true})

	cfg, err := config.LoadForTooling()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read seed file")
	}

	var entries []references.SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatal().Err(err).Msg("Seed file is not valid JSON")
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "references.db"),
		Profile: database.ProfileReference,
		Name:    "references",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open references database")
	}
	defer db.Close()

	if err := references.InitSchema(db.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}

	seeder := references.NewSeeder(references.NewRepository(db.Conn()), log)
	userID, err := seeder.Seed(context.Background(), entries)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().Str("user_id", userID).Int("entries", len(entries)).Msg("Done")
}
