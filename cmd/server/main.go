// Package main is the entry point for the LedgerLink sync service. It links
// open-finance (Pluggy) accounts to YNAB accounts and keeps the ledger up to
// date by periodically pulling source transactions and submitting them with
// idempotent import ids.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ledgerlink-dev/ledgerlink/internal/clients/pluggy"
	"github.com/ledgerlink-dev/ledgerlink/internal/clients/ynab"
	"github.com/ledgerlink-dev/ledgerlink/internal/config"
	"github.com/ledgerlink-dev/ledgerlink/internal/database"
	"github.com/ledgerlink-dev/ledgerlink/internal/references"
	"github.com/ledgerlink-dev/ledgerlink/internal/reliability"
	"github.com/ledgerlink-dev/ledgerlink/internal/scheduler"
	"github.com/ledgerlink-dev/ledgerlink/internal/server"
	"github.com/ledgerlink-dev/ledgerlink/internal/syncer"
	"github.com/ledgerlink-dev/ledgerlink/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting LedgerLink")

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
	repo := references.NewRepository(db.Conn())

	// Dev mode may run without real credentials; placeholder values keep the
	// wiring intact while API calls fail fast.
	pluggyID, pluggySecret := cfg.PluggyClientID, cfg.PluggyClientSecret
	ynabToken := cfg.YNABAccessToken
	if cfg.DevMode && (pluggyID == "" || pluggySecret == "" || ynabToken == "") {
		log.Warn().Msg("Running in dev mode without API credentials")
		pluggyID, pluggySecret, ynabToken = "dev", "dev", "dev"
	}

	session, err := pluggy.NewSession(pluggyID, pluggySecret, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Pluggy session")
	}
	source := pluggy.NewClient(session, log)

	ledger, err := ynab.NewClient(ynabToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create YNAB client")
	}

	engine := syncer.NewEngine(source, ledger, repo, time.Now, syncer.Config{
		PageSize:    cfg.SyncPageSize,
		OverlapDays: cfg.SyncOverlapDays,
		Concurrency: cfg.SyncConcurrency,
	}, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.SyncSchedule, scheduler.NewSyncJob(engine, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register sync job")
	}
	if err := sched.AddJob("@hourly", scheduler.NewCheckpointJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register checkpoint job")
	}

	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			Bucket:    cfg.Backup.Bucket,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 client")
		}

		backupService := reliability.NewBackupService(s3Client, db, cfg.DataDir, cfg.Backup.Keep, log)
		if err := sched.AddJob(cfg.Backup.Schedule, scheduler.NewBackupJob(backupService, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Backups disabled, no bucket configured")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		DB:      db,
		Repo:    repo,
		Engine:  engine,
		Source:  source,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Stopped")
}
