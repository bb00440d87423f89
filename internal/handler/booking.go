package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/TimFooLabs/drtimfoo-api/internal/availability"
	"github.com/TimFooLabs/drtimfoo-api/internal/handler/dto"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
	"github.com/TimFooLabs/drtimfoo-api/internal/service"
)

// BookingService defines the booking operations the handler needs.
type BookingService interface {
	CreateBooking(ctx context.Context, input service.CreateBookingInput) (*model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	ListUpcoming(ctx context.Context, limit int) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
	Availability(ctx context.Context, from, to time.Time) ([]availability.Day, error)
}

// BookingHandler manages appointment endpoints.
type BookingHandler struct {
	service BookingService
	logger  *slog.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger.With("handler", "booking"),
	}
}

const dateLayout = "2006-01-02"

// Create handles POST /api/v1/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	if req.UserID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_DATE", "date must be formatted as YYYY-MM-DD")
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), service.CreateBookingInput{
		UserID:      req.UserID,
		ServiceType: req.ServiceType,
		Date:        date,
		Time:        req.Time,
		Notes:       req.Notes,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToBookingResponse(booking))
}

// Get handles GET /api/v1/bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.service.GetBooking(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookingResponse(booking))
}

// ListByUser handles GET /api/v1/bookings?user_id={id}.
func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeErrorJSON(w, http.StatusBadRequest, "MISSING_USER_ID", "query parameter 'user_id' is required")
		return
	}

	bookings, err := h.service.ListBookingsByUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookingListResponse(bookings))
}

// ListUpcoming handles GET /api/v1/bookings/upcoming?limit={n}.
func (h *BookingHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return
		}
		limit = parsed
	}

	bookings, err := h.service.ListUpcoming(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookingListResponse(bookings))
}

// UpdateStatus handles PATCH /api/v1/bookings/{id}/status.
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.UpdateBookingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), id, model.BookingStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookingResponse(booking))
}

// Availability handles GET /api/v1/availability?from={date}&to={date}.
// Defaults to the next two weeks when no range is given.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()
	to := from.AddDate(0, 0, 13)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "INVALID_DATE", "from must be formatted as YYYY-MM-DD")
			return
		}
		from = parsed
		to = from.AddDate(0, 0, 13)
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "INVALID_DATE", "to must be formatted as YYYY-MM-DD")
			return
		}
		to = parsed
	}

	if to.Before(from) {
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_RANGE", "to must not be before from")
		return
	}

	days, err := h.service.Availability(r.Context(), from, to)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailabilityResponse{Days: days})
}

// handleServiceError maps booking service errors to HTTP responses.
func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidServiceType):
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_SERVICE_TYPE", "service_type is not a recognized service")
	case errors.Is(err, service.ErrSlotUnavailable):
		writeErrorJSON(w, http.StatusBadRequest, "SLOT_UNAVAILABLE", err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		writeErrorJSON(w, http.StatusBadRequest, "INVALID_STATUS", "status is not a recognized booking status")
	case errors.Is(err, service.ErrBookingNotFound):
		writeErrorJSON(w, http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found")
	case errors.Is(err, service.ErrSlotTaken):
		writeErrorJSON(w, http.StatusConflict, "SLOT_TAKEN", "that time slot is already booked")
	case errors.Is(err, service.ErrInvalidTransition):
		writeErrorJSON(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	default:
		h.logger.Error("booking operation failed", "error", err)
		writeErrorJSON(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
