package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"enercom-billing/internal/audit"
	"enercom-billing/internal/auth"
	participant "enercom-billing/internal/participant/domain"
)

// Directory abstracts participant master data storage.
type Directory interface {
	Get(ctx context.Context, id string) (*participant.Participant, error)
	List(ctx context.Context) ([]participant.Participant, error)
	Create(ctx context.Context, member *participant.Participant) error
}

// ParticipantHandler handles participant master data APIs.
type ParticipantHandler struct {
	directory   Directory
	auditLogger audit.Logger
	logger      *log.Logger
}

// NewParticipantHandler constructs a handler.
func NewParticipantHandler(directory Directory, auditLogger audit.Logger, logger *log.Logger) (*ParticipantHandler, error) {
	if directory == nil {
		return nil, errors.New("participant handler: nil directory")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ParticipantHandler{directory: directory, auditLogger: auditLogger, logger: logger}, nil
}

// ServeHTTP handles /api/v1/participants.
func (h *ParticipantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type participantDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	EAN     string `json:"ean"`
}

func toDTO(member participant.Participant) participantDTO {
	return participantDTO{
		ID:      member.ID,
		Name:    member.Name,
		Email:   member.Email,
		Address: member.Address,
		EAN:     member.EAN,
	}
}

func (h *ParticipantHandler) handleList(w http.ResponseWriter, r *http.Request) {
	members, err := h.directory.List(r.Context())
	if err != nil {
		h.logger.Printf("participant list error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]participantDTO, 0, len(members))
	for _, member := range members {
		out = append(out, toDTO(member))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"participants": out})
}

func (h *ParticipantHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req participantDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	member, err := participant.New(req.ID, req.Name, req.Email, req.Address, req.EAN)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.directory.Create(r.Context(), member); err != nil {
		h.logger.Printf("participant create error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toDTO(*member))

	h.logAudit(r, member.ID, "participant.create")
}

func (h *ParticipantHandler) logAudit(r *http.Request, participantID, action string) {
	if h.auditLogger == nil {
		return
	}
	entry := audit.Entry{
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		ResourceType:  "participant",
		ResourceID:    participantID,
		ParticipantID: participantID,
		IP:            r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	}
	if err := h.auditLogger.Log(r.Context(), entry); err != nil {
		h.logger.Printf("audit log error: %v", err)
	}
}
