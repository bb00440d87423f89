package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TimFooLabs/drtimfoo-api/internal/handler/dto"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
	"github.com/TimFooLabs/drtimfoo-api/internal/repository"
)

// AdminTestimonialStore defines the moderation operations for testimonials.
type AdminTestimonialStore interface {
	ListTestimonialsByStatus(ctx context.Context, status model.TestimonialStatus, featuredOnly bool) ([]*model.Testimonial, error)
	UpdateTestimonialStatus(ctx context.Context, id string, status model.TestimonialStatus) error
	SetTestimonialFeatured(ctx context.Context, id string, featured bool) error
}

// AdminContactStore defines the triage operations for contact submissions.
type AdminContactStore interface {
	ListContactsByStatus(ctx context.Context, status model.ContactStatus) ([]*model.Contact, error)
	UpdateContactStatus(ctx context.Context, id string, status model.ContactStatus) error
}

// AdminHandler provides admin-only moderation and triage endpoints.
type AdminHandler struct {
	testimonials AdminTestimonialStore
	contacts     AdminContactStore
	logger       *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(testimonials AdminTestimonialStore, contacts AdminContactStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		testimonials: testimonials,
		contacts:     contacts,
		logger:       logger.With("handler", "admin"),
	}
}

// ListTestimonials handles GET /api/v1/admin/testimonials?status={status}.
// Defaults to the pending moderation queue.
func (h *AdminHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	status := model.TestimonialPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = model.TestimonialStatus(raw)
		if !model.IsValidTestimonialStatus(status) {
			writeErrorJSON(w, http.StatusBadRequest, "INVALID_STATUS", "status is not a recognized moderation state")
			return
		}
	}

	testimonials, err := h.testimonials.ListTestimonialsByStatus(r.Context(), status, false)
	if err != nil {
		h.logger.Error("failed to list testimonials", "error", err, "status", status)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list testimonials")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTestimonialListResponse(testimonials))
}

// ModerateTestimonial handles PATCH /api/v1/admin/testimonials/{id}.
// Sets the moderation status and, optionally, the featured flag.
func (h *AdminHandler) ModerateTestimonial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ModerateTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	status := model.TestimonialStatus(req.Status)
	if !model.IsValidTestimonialStatus(status) {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_STATUS", "status is not a recognized moderation state")
		return
	}

	if err := h.testimonials.UpdateTestimonialStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrTestimonialNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "TESTIMONIAL_NOT_FOUND", "testimonial not found")
			return
		}
		h.logger.Error("failed to moderate testimonial", "error", err, "id", id)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update testimonial")
		return
	}

	if req.Featured != nil {
		if err := h.testimonials.SetTestimonialFeatured(r.Context(), id, *req.Featured); err != nil {
			h.logger.Error("failed to set featured flag", "error", err, "id", id)
			writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update testimonial")
			return
		}
	}

	h.logger.Info("testimonial moderated", "id", id, "status", status)
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// ListContacts handles GET /api/v1/admin/contacts?status={status}.
// Defaults to unread submissions.
func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	status := model.ContactNew
	if raw := r.URL.Query().Get("status"); raw != "" {
		status = model.ContactStatus(raw)
		if !model.IsValidContactStatus(status) {
			writeErrorJSON(w, http.StatusBadRequest, "INVALID_STATUS", "status is not a recognized triage state")
			return
		}
	}

	contacts, err := h.contacts.ListContactsByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err, "status", status)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToContactListResponse(contacts))
}

// UpdateContactStatus handles PATCH /api/v1/admin/contacts/{id}.
func (h *AdminHandler) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateContactStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	status := model.ContactStatus(req.Status)
	if !model.IsValidContactStatus(status) {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_STATUS", "status is not a recognized triage state")
		return
	}

	if err := h.contacts.UpdateContactStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "contact not found")
			return
		}
		h.logger.Error("failed to update contact status", "error", err, "id", id)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update contact")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

// StatsResponse represents operational statistics.
type StatsResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	response := StatsResponse{
		Timestamp: time.Now().UTC(),
		Service:   "drtimfoo-api",
		Version:   "1.0.0", // TODO: inject at build time
	}
	writeJSON(w, http.StatusOK, response)
}
