package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"enercom-billing/internal/ingest"
	"enercom-billing/internal/observability/metrics"
)

// ReadingsStore persists parsed reading datasets.
type ReadingsStore interface {
	Upsert(ctx context.Context, dataset ingest.Dataset) error
}

// UploadHandler ingests meter-readings workbooks posted by the community
// operator's export tooling.
type UploadHandler struct {
	store  ReadingsStore
	logger *log.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(store ReadingsStore, logger *log.Logger) (*UploadHandler, error) {
	if store == nil {
		return nil, errors.New("readings upload: nil store")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &UploadHandler{store: store, logger: logger}, nil
}

// ServeHTTP accepts an xlsx body on POST /ingest/readings.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveIngest(result, time.Since(start))
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("readings upload: read body error: %v", err)
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	parsed, err := ingest.ReadMonthlyVolumes(bytes.NewReader(body))
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("readings upload: parse error: %v", err)
		http.Error(w, "invalid workbook", http.StatusBadRequest)
		return
	}

	if err := h.store.Upsert(r.Context(), parsed.Volumes); err != nil {
		result = metrics.ResultError
		h.logger.Printf("readings upload: store error: %v", err)
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}

	metrics.AddIngestRows("stored", parsed.Rows())
	metrics.AddIngestRows("skipped", len(parsed.Skipped))
	h.logger.Printf("readings upload: stored=%d skipped=%d", parsed.Rows(), len(parsed.Skipped))

	skipped := make([]map[string]any, 0, len(parsed.Skipped))
	for _, rowErr := range parsed.Skipped {
		skipped = append(skipped, map[string]any{"row": rowErr.Row, "reason": rowErr.Reason})
	}
	resp := map[string]any{
		"stored":  parsed.Rows(),
		"skipped": skipped,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
