package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TimFooLabs/drtimfoo-api/internal/handler/dto"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

type fakeTestimonialStore struct {
	created []*model.Testimonial
	listed  []*model.Testimonial

	lastStatus   model.TestimonialStatus
	lastFeatured bool
}

func (s *fakeTestimonialStore) CreateTestimonial(ctx context.Context, tm *model.Testimonial) error {
	s.created = append(s.created, tm)
	return nil
}

func (s *fakeTestimonialStore) ListTestimonialsByStatus(ctx context.Context, status model.TestimonialStatus, featuredOnly bool) ([]*model.Testimonial, error) {
	s.lastStatus = status
	s.lastFeatured = featuredOnly
	return s.listed, nil
}

func newTestimonialHandler(store TestimonialStore) *TestimonialHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTestimonialHandler(store, nil, logger)
}

func TestTestimonialHandler_Submit(t *testing.T) {
	store := &fakeTestimonialStore{}
	h := newTestimonialHandler(store)

	body, _ := json.Marshal(dto.SubmitTestimonialRequest{
		UserID:  "01JUSER",
		Name:    "Jane Doe",
		Role:    "Marathon runner",
		Content: "My back has never felt better.",
		Rating:  5,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/testimonials", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Submit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(store.created) != 1 {
		t.Fatalf("expected 1 stored testimonial, got %d", len(store.created))
	}
	tm := store.created[0]
	if tm.Status != model.TestimonialPending {
		t.Errorf("expected new testimonial pending, got %s", tm.Status)
	}
	if tm.Featured {
		t.Error("expected new testimonial not featured")
	}
}

func TestTestimonialHandler_Submit_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.SubmitTestimonialRequest
		wantCode string
	}{
		{
			name:     "missing user id",
			req:      dto.SubmitTestimonialRequest{Name: "Jane", Content: "My back has never felt better.", Rating: 5},
			wantCode: "MISSING_USER_ID",
		},
		{
			name:     "missing name",
			req:      dto.SubmitTestimonialRequest{UserID: "01JUSER", Content: "My back has never felt better.", Rating: 5},
			wantCode: "INVALID_NAME",
		},
		{
			name:     "content too short",
			req:      dto.SubmitTestimonialRequest{UserID: "01JUSER", Name: "Jane", Content: "ok", Rating: 5},
			wantCode: "INVALID_CONTENT",
		},
		{
			name:     "rating out of range",
			req:      dto.SubmitTestimonialRequest{UserID: "01JUSER", Name: "Jane", Content: "My back has never felt better.", Rating: 6},
			wantCode: "INVALID_RATING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeTestimonialStore{}
			h := newTestimonialHandler(store)

			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/testimonials", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			h.Submit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestTestimonialHandler_ListApproved(t *testing.T) {
	store := &fakeTestimonialStore{
		listed: []*model.Testimonial{
			{ID: "01JTM", Name: "Jane", Content: "Great care.", Rating: 5, Status: model.TestimonialApproved},
		},
	}
	h := newTestimonialHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/testimonials?featured=true", nil)
	rec := httptest.NewRecorder()

	h.ListApproved(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if store.lastStatus != model.TestimonialApproved {
		t.Errorf("expected approved filter, got %s", store.lastStatus)
	}
	if !store.lastFeatured {
		t.Error("expected featured filter to be applied")
	}
}
