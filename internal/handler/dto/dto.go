// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/availability"
	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// CreateBookingRequest represents the request body for creating a booking.
type CreateBookingRequest struct {
	UserID      string `json:"user_id"`
	ServiceType string `json:"service_type"`
	Date        string `json:"date"` // "2006-01-02"
	Time        string `json:"time"` // slot start, e.g. "09:00"
	Notes       string `json:"notes,omitempty"`
}

// UpdateBookingStatusRequest represents the request body for a status change.
type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// BookingResponse represents a booking in API responses.
type BookingResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ServiceType string    `json:"service_type"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookingListResponse represents a list of bookings.
type BookingListResponse struct {
	Data []BookingResponse `json:"data"`
}

// ToBookingResponse converts a Booking model to BookingResponse DTO.
func ToBookingResponse(b *model.Booking) *BookingResponse {
	return &BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		ServiceType: string(b.ServiceType),
		Date:        b.Date.Format("2006-01-02"),
		Time:        b.Time,
		Status:      string(b.Status),
		Notes:       b.Notes,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToBookingListResponse converts a slice of Booking models.
func ToBookingListResponse(bookings []*model.Booking) *BookingListResponse {
	responses := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		responses[i] = *ToBookingResponse(b)
	}
	return &BookingListResponse{Data: responses}
}

// AvailabilityResponse represents day availability over a range.
type AvailabilityResponse struct {
	Days []availability.Day `json:"days"`
}

// SubmitTestimonialRequest represents the request body for a testimonial.
type SubmitTestimonialRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// ModerateTestimonialRequest represents a moderation decision.
type ModerateTestimonialRequest struct {
	Status   string `json:"status"`
	Featured *bool  `json:"featured,omitempty"`
}

// TestimonialResponse represents a testimonial in API responses.
type TestimonialResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	Status    string    `json:"status"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"created_at"`
}

// ToTestimonialResponse converts a Testimonial model.
func ToTestimonialResponse(tm *model.Testimonial) *TestimonialResponse {
	return &TestimonialResponse{
		ID:        tm.ID,
		Name:      tm.Name,
		Role:      tm.Role,
		Content:   tm.Content,
		Rating:    tm.Rating,
		Status:    string(tm.Status),
		Featured:  tm.Featured,
		CreatedAt: tm.CreatedAt,
	}
}

// TestimonialListResponse represents a list of testimonials.
type TestimonialListResponse struct {
	Data []TestimonialResponse `json:"data"`
}

// ToTestimonialListResponse converts a slice of Testimonial models.
func ToTestimonialListResponse(testimonials []*model.Testimonial) *TestimonialListResponse {
	responses := make([]TestimonialResponse, len(testimonials))
	for i, tm := range testimonials {
		responses[i] = *ToTestimonialResponse(tm)
	}
	return &TestimonialListResponse{Data: responses}
}

// SubmitContactRequest represents the public contact form body.
type SubmitContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// UpdateContactStatusRequest represents a contact triage change.
type UpdateContactStatusRequest struct {
	Status string `json:"status"`
}

// ContactResponse represents a contact submission in admin responses.
type ContactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToContactResponse converts a Contact model.
func ToContactResponse(c *model.Contact) *ContactResponse {
	return &ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

// ContactListResponse represents a list of contact submissions.
type ContactListResponse struct {
	Data []ContactResponse `json:"data"`
}

// ToContactListResponse converts a slice of Contact models.
func ToContactListResponse(contacts []*model.Contact) *ContactListResponse {
	responses := make([]ContactResponse, len(contacts))
	for i, c := range contacts {
		responses[i] = *ToContactResponse(c)
	}
	return &ContactListResponse{Data: responses}
}
