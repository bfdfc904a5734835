package audit_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"enercom-billing/internal/audit"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestAuditRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	migration, err := os.ReadFile(filepath.Join("..", "..", "migrations", "004_audit_logs.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := db.Exec(string(migration)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	ctx := context.Background()
	repo := audit.NewRepository(db)
	entry := audit.Entry{
		Actor:         "user-it",
		Role:          "operator",
		Action:        "invoice.generate",
		ResourceType:  "billing",
		ResourceID:    "participant-it",
		ParticipantID: "participant-it",
		Metadata:      json.RawMessage(`{"number":"INV-202503-particip"}`),
		IP:            "127.0.0.1",
		UserAgent:     "integration-test",
	}
	if err := repo.Log(ctx, entry); err != nil {
		t.Fatalf("log entry: %v", err)
	}

	var digest string
	err = db.QueryRowContext(ctx, `
SELECT payload_digest FROM audit_logs
WHERE participant_id = $1 AND action = $2
ORDER BY created_at DESC
LIMIT 1`, "participant-it", "invoice.generate").Scan(&digest)
	if err != nil {
		t.Fatalf("read back entry: %v", err)
	}
	if digest != audit.DigestJSON(entry.Metadata) {
		t.Fatalf("payload digest mismatch")
	}
}
