package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/localink/localink-backend/internal/onboarding/domain"
)

// BusinessRepository handles PostgreSQL operations for wizard businesses
type BusinessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Create inserts a new business and fills in the generated timestamps.
func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	query := `
		INSERT INTO businesses (
			id, user_id, name, category, description, address, goals, challenges
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		b.ID,
		b.UserID,
		b.Name,
		b.Category,
		b.Description,
		b.Address,
		b.Goals,
		b.Challenges,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	return nil
}

// ListByUser returns the user's businesses, newest first.
func (r *BusinessRepository) ListByUser(ctx context.Context, userID string) ([]domain.Business, error) {
	query := `
		SELECT id, user_id, name, category, description, address,
		       COALESCE(goals, ''), COALESCE(challenges, ''), created_at, updated_at
		FROM businesses
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	businesses := []domain.Business{}
	for rows.Next() {
		var b domain.Business
		if err := scanBusiness(rows, &b); err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate businesses: %w", err)
	}

	return businesses, nil
}

// GetByID returns the business only if it belongs to userID.
func (r *BusinessRepository) GetByID(ctx context.Context, id, userID string) (*domain.Business, error) {
	query := `
		SELECT id, user_id, name, category, description, address,
		       COALESCE(goals, ''), COALESCE(challenges, ''), created_at, updated_at
		FROM businesses
		WHERE id = $1 AND user_id = $2
	`

	var b domain.Business
	err := scanBusiness(r.db.QueryRowContext(ctx, query, id, userID), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return &b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBusiness(s scanner, b *domain.Business) error {
	return s.Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&b.Category,
		&b.Description,
		&b.Address,
		&b.Goals,
		&b.Challenges,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}
