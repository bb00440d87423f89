// Package middleware provides HTTP middleware components.
package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for public form input.
const (
	// MaxNameLength is the maximum length for a person's name.
	MaxNameLength = 100

	// MaxEmailLength is the maximum length for an email address.
	MaxEmailLength = 254

	// MaxSubjectLength is the maximum length for a contact subject.
	MaxSubjectLength = 200

	// MinMessageLength is the minimum length for a contact message.
	MinMessageLength = 10

	// MaxMessageLength is the maximum length for a contact message.
	MaxMessageLength = 5000

	// MinTestimonialLength is the minimum length for testimonial content.
	MinTestimonialLength = 10

	// MaxTestimonialLength is the maximum length for testimonial content.
	MaxTestimonialLength = 2000
)

// Validation errors.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name exceeds maximum length")
	ErrEmailInvalid     = errors.New("email address is invalid")
	ErrSubjectTooLong   = errors.New("subject exceeds maximum length")
	ErrMessageTooShort  = errors.New("message is too short")
	ErrMessageTooLong   = errors.New("message exceeds maximum length")
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrContentTooShort  = errors.New("testimonial content is too short")
	ErrContentTooLong   = errors.New("testimonial content exceeds maximum length")
)

// emailPattern is a pragmatic email shape check, not an RFC 5322
// validator. Deliverability is the sender's problem.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateName checks a person's name from a public form.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateEmail checks an email address's shape and length.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength {
		return ErrEmailInvalid
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateSubject checks an optional contact subject line.
func ValidateSubject(subject string) error {
	if utf8.RuneCountInString(strings.TrimSpace(subject)) > MaxSubjectLength {
		return ErrSubjectTooLong
	}
	return nil
}

// ValidateMessage checks a contact message body.
func ValidateMessage(message string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(message))
	if length < MinMessageLength {
		return ErrMessageTooShort
	}
	if length > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// ValidateRating checks a testimonial star rating.
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrRatingOutOfRange
	}
	return nil
}

// ValidateTestimonialContent checks testimonial body text.
func ValidateTestimonialContent(content string) error {
	length := utf8.RuneCountInString(strings.TrimSpace(content))
	if length < MinTestimonialLength {
		return ErrContentTooShort
	}
	if length > MaxTestimonialLength {
		return ErrContentTooLong
	}
	return nil
}
