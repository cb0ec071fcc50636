package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"zonegate/internal/identity"
	"zonegate/pkg/platform/sentinel"
)

// PostgresStore reads identity records from PostgreSQL. Writes exist for
// seeding and tests; the resolver path only calls FindByID.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema returns the DDL for the users table. Callers run it at bootstrap or
// in integration tests; production deployments manage migrations separately.
func Schema() string {
	return `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT,
			image TEXT,
			role TEXT NOT NULL DEFAULT 'USER',
			onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE
		)`
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, image, role, onboarding_completed
		 FROM users WHERE id = $1`, id)

	var ident identity.Identity
	var name, image sql.NullString
	err := row.Scan(&ident.ID, &ident.Email, &name, &image, &ident.Role, &ident.OnboardingCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}

	if name.Valid {
		ident.Name = &name.String
	}
	if image.Valid {
		ident.Image = &image.String
	}
	return &ident, nil
}

func (s *PostgresStore) Save(ctx context.Context, ident *identity.Identity) error {
	if ident == nil {
		return fmt.Errorf("identity is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, image, role, onboarding_completed)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			role = EXCLUDED.role,
			onboarding_completed = EXCLUDED.onboarding_completed`,
		ident.ID, ident.Email, nullString(ident.Name), nullString(ident.Image),
		string(ident.Role), ident.OnboardingCompleted)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
