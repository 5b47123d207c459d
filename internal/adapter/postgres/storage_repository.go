package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YelzhanWeb/powerpulse/internal/interfaces"

	"github.com/jackc/pgx/v5"
)

type storageRepository struct {
	db DB
}

func NewStorageRepository(db DB) interfaces.Storage {
	return &storageRepository{db: db}
}

// EnsureSchema creates the storage table when it does not exist yet
func EnsureSchema(ctx context.Context, db DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS storage_entries (
			scope      TEXT        NOT NULL,
			key        TEXT        NOT NULL,
			value      TEXT        NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (scope, key)
		)
	`
	if _, err := db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create storage_entries: %w", err)
	}
	return nil
}

func (r *storageRepository) Get(ctx context.Context, scope, key string) (string, bool, error) {
	query := `
		SELECT value
		FROM storage_entries
		WHERE scope = $1 AND key = $2
	`

	var value string
	err := r.db.QueryRow(ctx, query, scope, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

func (r *storageRepository) Set(ctx context.Context, scope, key, value string) error {
	query := `
		INSERT INTO storage_entries (scope, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scope, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query, scope, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", scope, key, err)
	}
	return nil
}
