//go:build integration

package repository

import (
	"errors"
	"testing"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
	"github.com/TimFooLabs/drtimfoo-api/internal/testutil"
)

func TestContactTriage_Integration(t *testing.T) {
	env := newRepoTestEnv(t)

	if err := testutil.ResetContactsSchema(env.ctx, env.repo.Pool()); err != nil {
		t.Fatalf("failed to reset contacts schema: %v", err)
	}

	contact := testutil.NewTestContact(t)
	if err := env.repo.CreateContact(env.ctx, contact); err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}

	fresh, err := env.repo.ListContactsByStatus(env.ctx, model.ContactNew)
	if err != nil {
		t.Fatalf("failed to list new contacts: %v", err)
	}
	if len(fresh) != 1 || fresh[0].ID != contact.ID {
		t.Fatalf("expected the new contact in the queue, got %d entries", len(fresh))
	}
	if fresh[0].Email != contact.Email || fresh[0].Message != contact.Message {
		t.Errorf("stored contact does not match: %+v", fresh[0])
	}

	if err := env.repo.UpdateContactStatus(env.ctx, contact.ID, model.ContactReplied); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	fresh, err = env.repo.ListContactsByStatus(env.ctx, model.ContactNew)
	if err != nil {
		t.Fatalf("failed to list new contacts: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("expected empty new queue after triage, got %d entries", len(fresh))
	}

	replied, err := env.repo.ListContactsByStatus(env.ctx, model.ContactReplied)
	if err != nil {
		t.Fatalf("failed to list replied contacts: %v", err)
	}
	if len(replied) != 1 {
		t.Fatalf("expected 1 replied contact, got %d", len(replied))
	}
}

func TestCreateContact_EmptySubject(t *testing.T) {
	env := newRepoTestEnv(t)

	if err := testutil.ResetContactsSchema(env.ctx, env.repo.Pool()); err != nil {
		t.Fatalf("failed to reset contacts schema: %v", err)
	}

	contact := testutil.NewTestContact(t)
	contact.Subject = ""
	if err := env.repo.CreateContact(env.ctx, contact); err != nil {
		t.Fatalf("failed to create contact: %v", err)
	}

	stored, err := env.repo.ListContactsByStatus(env.ctx, model.ContactNew)
	if err != nil {
		t.Fatalf("failed to list contacts: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(stored))
	}
	if stored[0].Subject != "" {
		t.Errorf("expected empty subject, got %q", stored[0].Subject)
	}
}

func TestUpdateContactStatus_NotFound(t *testing.T) {
	env := newRepoTestEnv(t)

	if err := testutil.ResetContactsSchema(env.ctx, env.repo.Pool()); err != nil {
		t.Fatalf("failed to reset contacts schema: %v", err)
	}

	err := env.repo.UpdateContactStatus(env.ctx, "01JMISSING", model.ContactRead)
	if !errors.Is(err, ErrContactNotFound) {
		t.Errorf("expected ErrContactNotFound, got %v", err)
	}
}
