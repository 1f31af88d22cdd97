//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"efile/internal/platform/postgres"
)

// PostgresContainer is a migrated PostgreSQL shared by a test binary.
type PostgresContainer struct {
	Container *tcpostgres.PostgresContainer
	DSN       string
	DB        *sql.DB
}

func startPostgres(ctx context.Context) (*PostgresContainer, error) {
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("efile"),
		tcpostgres.WithUsername("efile"),
		tcpostgres.WithPassword("efile"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &PostgresContainer{Container: container, DSN: dsn, DB: db}, nil
}

// Reset removes every row so suites start from an empty schema.
func (p *PostgresContainer) Reset(t *testing.T) {
	t.Helper()
	_, err := p.DB.ExecContext(context.Background(), `
		TRUNCATE filing_raw, filing, filing_config, lobbying_entity_filer,
			filer_contact, filer, entity_contact_info, lobbying_entity CASCADE`)
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
