package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/codemonkey/internal/models"
)

// PostgresIdentityRepository verifies identities stored in PostgreSQL.
type PostgresIdentityRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresIdentityRepository creates a new PostgresIdentityRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresIdentityRepository(db *sql.DB) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{DB: db}
}

// Verify returns the identity whose username is handle and whose stored
// secret equals secret byte for byte.
func (r *PostgresIdentityRepository) Verify(ctx context.Context, handle, secret string) (models.Identity, error) {
	var id models.Identity
	err := r.DB.QueryRowContext(ctx, `
		SELECT i.id, i.username, i.name, i.email, i.premium, i.created_at
		  FROM identities i
		  JOIN credentials c ON c.username = i.username
		 WHERE i.username = $1 AND c.secret = $2
	`, handle, secret).Scan(&id.ID, &id.Username, &id.Name, &id.Email, &id.Premium, &id.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, ErrNotFound
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("verify %s: %w", handle, err)
	}
	return id, nil
}

// Seed writes the fixture table in a single transaction. Existing rows are
// left untouched so the table stays fixed for the process lifetime.
func (r *PostgresIdentityRepository) Seed(ctx context.Context, fx models.Fixtures) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, id := range fx.Identities {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO identities (id, username, name, email, premium, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, id.ID, id.Username, id.Name, id.Email, id.Premium, id.CreatedAt); err != nil {
			return fmt.Errorf("seed identity %s: %w", id.Username, err)
		}
	}
	for handle, secret := range fx.Credentials {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO credentials (username, secret) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			handle, secret,
		); err != nil {
			return fmt.Errorf("seed credentials %s: %w", handle, err)
		}
	}

	return tx.Commit()
}
