package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// ErrContactNotFound is returned when a contact lookup misses.
var ErrContactNotFound = errors.New("contact not found")

const contactColumns = `id, name, email, COALESCE(subject, ''), message, status, created_at`

func scanContact(row pgx.Row) (*model.Contact, error) {
	var c model.Contact
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Subject,
		&c.Message,
		&c.Status,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateContact inserts a new contact-form submission.
func (r *Repository) CreateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (id, name, email, subject, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.Name,
		contact.Email,
		nullIfEmpty(contact.Subject),
		contact.Message,
		contact.Status,
		contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// ListContactsByStatus returns contact submissions in a given state,
// newest first.
func (r *Repository) ListContactsByStatus(ctx context.Context, status model.ContactStatus) ([]*model.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE status = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	return contacts, rows.Err()
}

// UpdateContactStatus moves a contact submission through its workflow.
func (r *Repository) UpdateContactStatus(ctx context.Context, id string, status model.ContactStatus) error {
	query := `
		UPDATE contacts
		SET status = $1
		WHERE id = $2
	`

	tag, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update contact status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}
