package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	billingapp "enercom-billing/internal/billing/application"
	billingrepo "enercom-billing/internal/billing/infrastructure/postgres"
	"enercom-billing/internal/ingest"
	ingestrepo "enercom-billing/internal/ingest/infrastructure/postgres"
	participantrepo "enercom-billing/internal/participant/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dbURL   string
	file    string
	rebuild bool
	timeout time.Duration
}

func main() {
	cfg := parseFlags()
	logger := log.New(os.Stdout, "import_readings ", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.dbURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	f, err := os.Open(cfg.file)
	if err != nil {
		logger.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	result, err := ingest.ReadMonthlyVolumes(f)
	if err != nil {
		logger.Fatalf("parse workbook: %v", err)
	}
	for _, skipped := range result.Skipped {
		logger.Printf("row %d skipped: %s", skipped.Row, skipped.Reason)
	}

	readings := ingestrepo.NewReadingsRepository(db)
	if err := readings.Upsert(ctx, result.Volumes); err != nil {
		logger.Fatalf("store readings: %v", err)
	}
	logger.Printf("stored %d participant-month rows for %d meters", result.Rows(), len(result.Volumes))

	if !cfg.rebuild {
		return
	}

	rates, networkCosts, numberPrefix, err := billingapp.LoadRatesConfig()
	if err != nil {
		logger.Fatalf("rates config error: %v", err)
	}
	participants := participantrepo.NewParticipantRepository(db)
	service, err := billingapp.NewBillingService(
		billingrepo.NewLedgerRepository(db),
		participants,
		readings,
		rates,
		networkCosts,
		logger,
		billingapp.WithNumberPrefix(numberPrefix),
	)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}

	for ean := range result.Volumes {
		member, err := participants.GetByEAN(ctx, ean)
		if err != nil {
			logger.Printf("ean %s: no participant, ledger not rebuilt: %v", ean, err)
			continue
		}
		ledger, err := service.EnsureLedger(ctx, member.ID, true)
		if err != nil {
			logger.Printf("participant %s: rebuild error: %v", member.ID, err)
			continue
		}
		logger.Printf("participant %s: ledger rebuilt with %d months", member.ID, len(ledger.Months))
	}
}

func parseFlags() config {
	cfg := config{}
	flag.StringVar(&cfg.dbURL, "db", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.StringVar(&cfg.file, "file", "", "path to the meter readings workbook (xlsx)")
	flag.BoolVar(&cfg.rebuild, "rebuild", false, "rebuild ledgers for imported participants")
	flag.DurationVar(&cfg.timeout, "timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	if cfg.dbURL == "" {
		log.Fatal("-db or DATABASE_URL is required")
	}
	if cfg.file == "" {
		log.Fatal("-file is required")
	}
	return cfg
}
