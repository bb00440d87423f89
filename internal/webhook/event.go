package webhook

import (
	"encoding/json"
	"errors"
	"strings"
)

// Event types emitted by the identity provider that this service acts
// on. Anything else is treated as an unrecognized event: acknowledged
// and ignored, never an error, so the provider can add types without
// breaking deliveries.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

var (
	// ErrMalformedEvent is returned when the body is not a valid event envelope.
	ErrMalformedEvent = errors.New("malformed event envelope")
	// ErrInvalidUserPayload is returned when a user event is missing the
	// external id or carries no email address.
	ErrInvalidUserPayload = errors.New("user event missing id or email address")
)

// Event is the provider's webhook envelope. Data stays raw until the
// type is known, so unrecognized payload shapes cannot fail decoding.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a verified request body into an event envelope.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, ErrMalformedEvent
	}
	if evt.Type == "" {
		return nil, ErrMalformedEvent
	}
	return &evt, nil
}

// UserAccount is the normalized identity extracted from a user.* event.
type UserAccount struct {
	ClerkID string
	Email   string
	// Name is "first last" with outer whitespace trimmed, or empty when
	// the provider has no name on file.
	Name string
}

// userData mirrors the provider's user object. Only the fields the sync
// path needs are decoded.
type userData struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	EmailAddresses []emailAddress `json:"email_addresses"`
}

type emailAddress struct {
	EmailAddress string `json:"email_address"`
}

// User extracts the account fields from a user.created or user.updated
// payload. The external id and at least one email address are required.
func (e *Event) User() (UserAccount, error) {
	var data userData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return UserAccount{}, ErrInvalidUserPayload
	}

	if data.ID == "" || len(data.EmailAddresses) == 0 || data.EmailAddresses[0].EmailAddress == "" {
		return UserAccount{}, ErrInvalidUserPayload
	}

	return UserAccount{
		ClerkID: data.ID,
		Email:   data.EmailAddresses[0].EmailAddress,
		Name:    strings.TrimSpace(data.FirstName + " " + data.LastName),
	}, nil
}

// SubjectID returns the external id carried by the event, when present.
// Used for logging events that are acknowledged but not acted on.
func (e *Event) SubjectID() string {
	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return ""
	}
	return data.ID
}
