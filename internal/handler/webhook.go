package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/handler/dto"
	"github.com/TimFooLabs/drtimfoo-api/internal/metrics"
	"github.com/TimFooLabs/drtimfoo-api/internal/usersync"
	"github.com/TimFooLabs/drtimfoo-api/internal/webhook"
)

// Delivery headers set by the identity provider's webhook sender.
const (
	headerMessageID = "svix-id"
	headerTimestamp = "svix-timestamp"
	headerSignature = "svix-signature"
)

// Deduper tracks delivery ids so redelivered events can be
// acknowledged without re-dispatching.
type Deduper interface {
	SeenEvent(ctx context.Context, messageID string, ttl time.Duration) (bool, error)
}

// WebhookHandler receives identity provider webhooks, verifies their
// signatures and dispatches the events.
type WebhookHandler struct {
	verifier   *webhook.Verifier
	dispatcher *usersync.Dispatcher
	deduper    Deduper
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler. verifier may be nil
// when no webhook secret is configured; the endpoint then reports a
// server configuration error without taking the process down.
func NewWebhookHandler(verifier *webhook.Verifier, dispatcher *usersync.Dispatcher, deduper Deduper, recorder metrics.Recorder, logger *slog.Logger) *WebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		deduper:    deduper,
		metrics:    recorder,
		logger:     logger.With("handler", "webhook"),
	}
}

// Receive handles POST /webhooks/clerk.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		h.metrics.ObserveWebhookDuration(time.Since(start))
	}()

	if h.verifier == nil {
		h.logger.Error("webhook received but no signing secret is configured")
		h.metrics.IncWebhookReceived("failed")
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Webhook verification is not configured",
			Code:  "NOT_CONFIGURED",
		})
		return
	}

	msgID := r.Header.Get(headerMessageID)
	timestamp := r.Header.Get(headerTimestamp)
	signature := r.Header.Get(headerSignature)

	if msgID == "" || timestamp == "" || signature == "" {
		h.rejectf(w, "MISSING_HEADERS", "Missing webhook headers")
		return
	}

	// The signature covers the exact inbound bytes; read them untouched.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.rejectf(w, "UNREADABLE_BODY", "Could not read request body")
		return
	}

	if err := h.verifier.Verify(msgID, timestamp, signature, body); err != nil {
		h.rejectVerification(w, r, msgID, err)
		return
	}

	event, err := webhook.ParseEvent(body)
	if err != nil {
		h.rejectf(w, "MALFORMED_EVENT", "Request body is not a valid event")
		return
	}

	// Best-effort duplicate suppression. The upsert is idempotent, so
	// Redis being down just means we dispatch again.
	if h.deduper != nil {
		ttl := 2 * h.verifier.Tolerance()
		if seen, err := h.deduper.SeenEvent(r.Context(), msgID, ttl); err == nil && seen {
			h.logger.Info("duplicate delivery acknowledged",
				"message_id", msgID,
				"event_type", event.Type,
			)
			h.metrics.IncWebhookReceived("duplicate")
			writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
			return
		}
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), event)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidUserPayload) {
			h.rejectf(w, "INVALID_PAYLOAD", "Event payload is missing required user fields")
			return
		}

		// Store failure: log the detail, never leak it.
		h.logger.Error("event dispatch failed",
			"message_id", msgID,
			"event_type", event.Type,
			"error", err,
		)
		h.metrics.IncWebhookReceived("failed")
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Event could not be processed",
			Code:  "DISPATCH_FAILED",
		})
		return
	}

	h.logger.Info("webhook processed",
		"message_id", msgID,
		"event_type", event.Type,
		"outcome", string(outcome),
	)
	h.metrics.IncWebhookReceived(string(outcome))

	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

// rejectVerification maps verification errors to 400 responses. A
// signature mismatch is logged louder than a malformed request: a
// well-formed delivery with a bad signature looks like a forgery
// attempt, not a misconfigured client.
func (h *WebhookHandler) rejectVerification(w http.ResponseWriter, r *http.Request, msgID string, err error) {
	switch {
	case errors.Is(err, webhook.ErrInvalidSignature):
		h.logger.Warn("webhook signature mismatch",
			"message_id", msgID,
			"ip", r.RemoteAddr,
		)
		h.rejectf(w, "INVALID_SIGNATURE", "Webhook signature verification failed")
	case errors.Is(err, webhook.ErrReplayWindowExceeded):
		h.rejectf(w, "TIMESTAMP_OUT_OF_RANGE", "Webhook timestamp outside the accepted window")
	case errors.Is(err, webhook.ErrMalformedTimestamp):
		h.rejectf(w, "MALFORMED_TIMESTAMP", "Webhook timestamp is not a unix timestamp")
	case errors.Is(err, webhook.ErrMalformedSignatureHeader):
		h.rejectf(w, "MALFORMED_SIGNATURE", "Webhook signature header is malformed")
	default:
		h.rejectf(w, "VERIFICATION_FAILED", "Webhook verification failed")
	}
}

func (h *WebhookHandler) rejectf(w http.ResponseWriter, code, message string) {
	h.metrics.IncWebhookReceived("rejected")
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
