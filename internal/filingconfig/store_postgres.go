package filingconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"efile/pkg/platform/sentinel"
	"efile/pkg/platform/tx"
)

// PostgresStore persists configuration in the filing_config table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed configuration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key Key) (string, error) {
	var value string
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT value FROM filing_config
		WHERE filing_group = $1 AND filing_type = $2 AND filing_year = $3 AND key = $4`,
		key.Group, string(key.FilingType), key.Year, key.Name,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get filing config %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, entry Entry) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO filing_config (filing_group, filing_type, filing_year, key, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (filing_group, filing_type, filing_year, key)
		DO UPDATE SET value = EXCLUDED.value, updated = now()`,
		entry.Group, string(entry.FilingType), entry.Year, entry.Name, entry.Value,
	)
	if err != nil {
		return fmt.Errorf("put filing config %s: %w", entry.Key, err)
	}
	return nil
}
