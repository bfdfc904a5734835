package interfaces

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"enercom-billing/internal/audit"
	"enercom-billing/internal/auth"
	billingapp "enercom-billing/internal/billing/application"
	billing "enercom-billing/internal/billing/domain"
	"enercom-billing/internal/observability/metrics"
	participant "enercom-billing/internal/participant/domain"
)

// BillingHandler handles ledger and invoice APIs.
type BillingHandler struct {
	service     *billingapp.BillingService
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewBillingHandler constructs a handler.
func NewBillingHandler(service *billingapp.BillingService, auditLogger audit.Logger, logger *log.Logger) (*BillingHandler, error) {
	if service == nil {
		return nil, errors.New("billing handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BillingHandler{service: service, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles billing routes under /api/v1.
func (h *BillingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/ledgers/build" && r.Method == http.MethodPost:
		h.handleBuildLedger(w, r)
	case r.URL.Path == "/api/v1/ledgers" && r.Method == http.MethodGet:
		h.handleGetLedger(w, r)
	case r.URL.Path == "/api/v1/invoices/generate" && r.Method == http.MethodPost:
		h.handleGenerateInvoice(w, r)
	case r.URL.Path == "/api/v1/invoices/export" && r.Method == http.MethodGet:
		h.handleExportInvoice(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BillingHandler) handleBuildLedger(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		Rebuild       bool   `json:"rebuild"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	ledger, err := h.service.EnsureLedger(r.Context(), req.ParticipantID, req.Rebuild)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, ledgerResponse(ledger))

	action := "ledger.build"
	if req.Rebuild {
		action = "ledger.rebuild"
	}
	h.logAudit(r, req.ParticipantID, action, map[string]any{"months": len(ledger.Months)})
}

func (h *BillingHandler) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	if !auth.CanAccessParticipant(r.Context(), participantID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	ledger, err := h.service.GetLedger(r.Context(), participantID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, ledgerResponse(ledger))
}

func (h *BillingHandler) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		StartMonth    string `json:"start_month"`
		EndMonth      string `json:"end_month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	invoice, err := h.service.GenerateInvoice(r.Context(), req.ParticipantID, req.StartMonth, req.EndMonth)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, invoiceResponse(invoice))

	h.logAudit(r, req.ParticipantID, "invoice.generate", map[string]any{
		"number":      invoice.Number,
		"start_month": req.StartMonth,
		"end_month":   req.EndMonth,
	})
}

func (h *BillingHandler) handleExportInvoice(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	startMonth := r.URL.Query().Get("start_month")
	endMonth := r.URL.Query().Get("end_month")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
		return
	}
	if !auth.CanAccessParticipant(r.Context(), participantID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess

	invoice, err := h.service.GenerateInvoice(r.Context(), participantID, startMonth, endMonth)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveInvoiceExport(format, result, time.Since(start))
		respondServiceError(w, err)
		return
	}
	ledger, err := h.service.GetLedger(r.Context(), participantID)
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveInvoiceExport(format, result, time.Since(start))
		respondServiceError(w, err)
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "pdf":
		payload, err = BuildInvoicePDF(invoice, ledger)
		contentType = "application/pdf"
	case "xlsx":
		payload, err = BuildInvoiceXLSX(invoice, ledger)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		metrics.ObserveInvoiceExport(format, result, time.Since(start))
		h.logger.Printf("invoice export: render error: %v", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveInvoiceExport(format, result, time.Since(start))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Number+`.`+format+`"`)
	_, _ = w.Write(payload)

	h.logAudit(r, participantID, "invoice.export", map[string]any{
		"number": invoice.Number,
		"format": format,
	})
}

func (h *BillingHandler) logAudit(r *http.Request, participantID, action string, details map[string]any) {
	if h.auditLogger == nil {
		return
	}
	metadata, err := json.Marshal(details)
	if err != nil {
		metadata = nil
	}
	entry := audit.Entry{
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		ResourceType:  "billing",
		ResourceID:    participantID,
		ParticipantID: participantID,
		Metadata:      metadata,
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit log error: %v", err)
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidPeriod), errors.Is(err, billing.ErrEmptyParticipantID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, participant.ErrNotFound), errors.Is(err, billingapp.ErrLedgerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
