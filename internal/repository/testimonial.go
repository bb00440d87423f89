package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TimFooLabs/drtimfoo-api/internal/model"
)

// ErrTestimonialNotFound is returned when a testimonial lookup misses.
var ErrTestimonialNotFound = errors.New("testimonial not found")

const testimonialColumns = `id, user_id, name, COALESCE(role, ''), content, rating, status, featured, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*model.Testimonial, error) {
	var tm model.Testimonial
	err := row.Scan(
		&tm.ID,
		&tm.UserID,
		&tm.Name,
		&tm.Role,
		&tm.Content,
		&tm.Rating,
		&tm.Status,
		&tm.Featured,
		&tm.CreatedAt,
		&tm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

// CreateTestimonial inserts a new testimonial, always pending review.
func (r *Repository) CreateTestimonial(ctx context.Context, tm *model.Testimonial) error {
	query := `
		INSERT INTO testimonials (id, user_id, name, role, content, rating, status, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		tm.ID,
		tm.UserID,
		tm.Name,
		nullIfEmpty(tm.Role),
		tm.Content,
		tm.Rating,
		tm.Status,
		tm.Featured,
		tm.CreatedAt,
		tm.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create testimonial: %w", err)
	}

	return nil
}

// ListTestimonialsByStatus returns testimonials in a given moderation
// state, newest first. featuredOnly narrows to featured ones.
func (r *Repository) ListTestimonialsByStatus(ctx context.Context, status model.TestimonialStatus, featuredOnly bool) ([]*model.Testimonial, error) {
	query := `
		SELECT ` + testimonialColumns + `
		FROM testimonials
		WHERE status = $1 AND ($2 = false OR featured = true)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, status, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var testimonials []*model.Testimonial
	for rows.Next() {
		tm, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		testimonials = append(testimonials, tm)
	}

	return testimonials, rows.Err()
}

// UpdateTestimonialStatus moves a testimonial between moderation states.
func (r *Repository) UpdateTestimonialStatus(ctx context.Context, id string, status model.TestimonialStatus) error {
	query := `
		UPDATE testimonials
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.pool.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update testimonial status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}

	return nil
}

// SetTestimonialFeatured flips the featured flag.
func (r *Repository) SetTestimonialFeatured(ctx context.Context, id string, featured bool) error {
	query := `
		UPDATE testimonials
		SET featured = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.pool.Exec(ctx, query, featured, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set testimonial featured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}

	return nil
}
