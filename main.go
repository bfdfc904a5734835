package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"enercom-billing/internal/audit"
	"enercom-billing/internal/auth"
	billingapp "enercom-billing/internal/billing/application"
	billingrepo "enercom-billing/internal/billing/infrastructure/postgres"
	billinginterfaces "enercom-billing/internal/billing/interfaces"
	ingestrepo "enercom-billing/internal/ingest/infrastructure/postgres"
	ingestinterfaces "enercom-billing/internal/ingest/interfaces"
	"enercom-billing/internal/observability/metrics"
	participantrepo "enercom-billing/internal/participant/infrastructure/postgres"
	participantinterfaces "enercom-billing/internal/participant/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	rates, networkCosts, numberPrefix, err := billingapp.LoadRatesConfig()
	if err != nil {
		logger.Fatalf("rates config error: %v", err)
	}

	ledgerRepo := billingrepo.NewLedgerRepository(db)
	participantRepo := participantrepo.NewParticipantRepository(db)
	readingsRepo := ingestrepo.NewReadingsRepository(db)

	billingService, err := billingapp.NewBillingService(
		ledgerRepo,
		participantRepo,
		readingsRepo,
		rates,
		networkCosts,
		logger,
		billingapp.WithNumberPrefix(numberPrefix),
	)
	if err != nil {
		logger.Fatalf("billing service error: %v", err)
	}

	billingHandler, err := billinginterfaces.NewBillingHandler(billingService, auditRepo, logger)
	if err != nil {
		logger.Fatalf("billing handler error: %v", err)
	}
	participantHandler, err := participantinterfaces.NewParticipantHandler(participantRepo, auditRepo, logger)
	if err != nil {
		logger.Fatalf("participant handler error: %v", err)
	}
	uploadHandler, err := ingestinterfaces.NewUploadHandler(readingsRepo, logger)
	if err != nil {
		logger.Fatalf("upload handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ingest/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), time.Duration(cfg.IngestSkewSeconds)*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/ingest/readings", ingestAuth.Wrap(uploadHandler))
	mux.Handle("/api/v1/ledgers", billingHandler)
	mux.Handle("/api/v1/ledgers/build", billingHandler)
	mux.Handle("/api/v1/invoices/generate", billingHandler)
	mux.Handle("/api/v1/invoices/export", billingHandler)
	mux.Handle("/api/v1/participants", participantHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	JWTSecret         string
	IngestSecret      string
	IngestSkewSeconds int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:      getenvDefault("INGEST_HMAC_SECRET", ""),
		IngestSkewSeconds: getenvIntDefault("INGEST_MAX_SKEW_SECONDS", 300),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
