package main

import (
	"context"
	"database/sql"
	"time"

	filingservice "efile/internal/filing/service"
	filingstore "efile/internal/filing/store"
	dErrors "efile/pkg/domain-errors"
	"efile/pkg/platform/tx"
)

// postgresFilingTx runs filing mutations in one database transaction. The
// store and every store reached with the callback's ctx share it.
type postgresFilingTx struct {
	db      *sql.DB
	store   *filingstore.PostgresStore
	timeout time.Duration
}

func newPostgresFilingTx(db *sql.DB, timeout time.Duration) *postgresFilingTx {
	if timeout <= 0 {
		timeout = filingservice.DefaultTxTimeout
	}
	return &postgresFilingTx{db: db, store: filingstore.NewPostgres(db), timeout: timeout}
}

func (t *postgresFilingTx) RunInTx(ctx context.Context, fn func(ctx context.Context, store filingservice.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "begin filing transaction")
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx), t.store); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "commit filing transaction")
	}
	return nil
}
