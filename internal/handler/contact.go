package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/TimFooLabs/drtimfoo-api/internal/handler/dto"
	"github.com/TimFooLabs/drtimfoo-api/internal/metrics"
	"github.com/TimFooLabs/drtimfoo-api/internal/middleware"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// ContactStore defines the persistence the contact handler needs.
type ContactStore interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
}

// ContactHandler manages the public contact form endpoint.
type ContactHandler struct {
	store   ContactStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(store ContactStore, recorder metrics.Recorder, logger *slog.Logger) *ContactHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ContactHandler{
		store:   store,
		metrics: recorder,
		logger:  logger.With("handler", "contact"),
	}
}

// Submit handles POST /api/v1/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	if err := middleware.ValidateName(req.Name); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
		return
	}
	if err := middleware.ValidateEmail(req.Email); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_EMAIL", err.Error())
		return
	}
	if err := middleware.ValidateSubject(req.Subject); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_SUBJECT", err.Error())
		return
	}
	if err := middleware.ValidateMessage(req.Message); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_MESSAGE", err.Error())
		return
	}

	contact := &model.Contact{
		ID:        ulid.Make().String(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    model.ContactNew,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateContact(r.Context(), contact); err != nil {
		h.logger.Error("failed to save contact submission", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save message")
		return
	}

	h.metrics.IncContactReceived()
	h.logger.Info("contact form received", "id", contact.ID)

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     contact.ID,
		"status": string(contact.Status),
	})
}
