package model

import "time"

// TestimonialStatus is the moderation state of a testimonial.
type TestimonialStatus string

const (
	TestimonialPending  TestimonialStatus = "pending"
	TestimonialApproved TestimonialStatus = "approved"
	TestimonialRejected TestimonialStatus = "rejected"
)

// IsValidTestimonialStatus checks if a moderation status is known.
func IsValidTestimonialStatus(s TestimonialStatus) bool {
	switch s {
	case TestimonialPending, TestimonialApproved, TestimonialRejected:
		return true
	}
	return false
}

// Testimonial is a patient review. Only approved testimonials are shown
// publicly; Featured pins one on the marketing pages.
type Testimonial struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Name      string            `json:"name"`
	Role      string            `json:"role,omitempty"`
	Content   string            `json:"content"`
	Rating    int               `json:"rating"`
	Status    TestimonialStatus `json:"status"`
	Featured  bool              `json:"featured"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
