// Package usersync routes verified identity-provider events into the
// application data store.
package usersync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TimFooLabs/drtimfoo-api/internal/webhook"
)

// Outcome is the terminal state of a dispatched event.
type Outcome string

const (
	// OutcomeApplied means the event resulted in a data-store mutation.
	OutcomeApplied Outcome = "applied"
	// OutcomeIgnored means the event was acknowledged without a mutation.
	OutcomeIgnored Outcome = "ignored"
)

// UserStore is the downstream mutation contract for identity events.
// UpsertUser must be an idempotent create-or-update keyed by the
// external id; redelivered events may call it more than once.
type UserStore interface {
	UpsertUser(ctx context.Context, clerkID, email, name string) (string, error)
}

// Dispatcher routes verified events by their declared type.
type Dispatcher struct {
	store  UserStore
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher backed by the given user store.
func NewDispatcher(store UserStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		logger: logger.With("component", "sync"),
	}
}

// Dispatch applies a verified event. Unrecognized event types return
// OutcomeIgnored with no error so the provider can evolve its schema
// without deliveries starting to fail.
//
// Error semantics: webhook.ErrInvalidUserPayload means the event itself
// was unusable (no downstream call was made); any other error wraps a
// failed store mutation and the sender is expected to redeliver.
func (d *Dispatcher) Dispatch(ctx context.Context, evt *webhook.Event) (Outcome, error) {
	switch evt.Type {
	case webhook.EventUserCreated, webhook.EventUserUpdated:
		account, err := evt.User()
		if err != nil {
			return "", err
		}

		userID, err := d.store.UpsertUser(ctx, account.ClerkID, account.Email, account.Name)
		if err != nil {
			return "", fmt.Errorf("upsert user %s: %w", account.ClerkID, err)
		}

		d.logger.Info("user synced",
			"event", evt.Type,
			"clerk_id", account.ClerkID,
			"user_id", userID,
		)
		return OutcomeApplied, nil

	case webhook.EventUserDeleted:
		// Deletions are acknowledged but not propagated.
		// TODO: wire repository.DeleteUserByClerkID once account removal
		// is cleared for production data.
		d.logger.Info("user deletion received, not propagated",
			"clerk_id", evt.SubjectID(),
		)
		return OutcomeIgnored, nil

	default:
		d.logger.Info("ignoring unrecognized event type", "event", evt.Type)
		return OutcomeIgnored, nil
	}
}
