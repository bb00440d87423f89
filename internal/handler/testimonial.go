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

// TestimonialStore defines the persistence the testimonial handler needs.
type TestimonialStore interface {
	CreateTestimonial(ctx context.Context, tm *model.Testimonial) error
	ListTestimonialsByStatus(ctx context.Context, status model.TestimonialStatus, featuredOnly bool) ([]*model.Testimonial, error)
}

// TestimonialHandler manages patient review endpoints.
type TestimonialHandler struct {
	store   TestimonialStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewTestimonialHandler creates a new TestimonialHandler.
func NewTestimonialHandler(store TestimonialStore, recorder metrics.Recorder, logger *slog.Logger) *TestimonialHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TestimonialHandler{
		store:   store,
		metrics: recorder,
		logger:  logger.With("handler", "testimonial"),
	}
}

// ListApproved handles GET /api/v1/testimonials?featured=true.
// Only approved testimonials are visible to the public site.
func (h *TestimonialHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	featuredOnly := r.URL.Query().Get("featured") == "true"

	testimonials, err := h.store.ListTestimonialsByStatus(r.Context(), model.TestimonialApproved, featuredOnly)
	if err != nil {
		h.logger.Error("failed to list testimonials", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load testimonials")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTestimonialListResponse(testimonials))
}

// Submit handles POST /api/v1/testimonials.
// New testimonials always start pending and stay hidden until approved.
func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	if req.UserID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}
	if err := middleware.ValidateName(req.Name); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_NAME", err.Error())
		return
	}
	if err := middleware.ValidateTestimonialContent(req.Content); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_CONTENT", err.Error())
		return
	}
	if err := middleware.ValidateRating(req.Rating); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_RATING", err.Error())
		return
	}

	now := time.Now().UTC()
	testimonial := &model.Testimonial{
		ID:        ulid.Make().String(),
		UserID:    req.UserID,
		Name:      strings.TrimSpace(req.Name),
		Role:      strings.TrimSpace(req.Role),
		Content:   strings.TrimSpace(req.Content),
		Rating:    req.Rating,
		Status:    model.TestimonialPending,
		Featured:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateTestimonial(r.Context(), testimonial); err != nil {
		h.logger.Error("failed to create testimonial", "error", err, "user_id", req.UserID)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save testimonial")
		return
	}

	h.metrics.IncTestimonialSubmitted()
	h.logger.Info("testimonial submitted", "id", testimonial.ID, "user_id", testimonial.UserID)

	writeJSON(w, http.StatusCreated, dto.ToTestimonialResponse(testimonial))
}
