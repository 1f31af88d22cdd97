package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"efile/internal/filing/models"
	id "efile/pkg/domain"
	"efile/pkg/platform/sentinel"
	"efile/pkg/platform/tx"
)

// PostgresStore persists filings in PostgreSQL. Every query runs on the
// transaction carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed filing store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

const filingColumns = `filing_id, entity_id, created_by, filer_id, filing_type, form_name, status,
	year, quarter, period_start, period_end, deadline, filing_date,
	amendment, amends_prev_id, amends_orig_id, amendment_number, version, created, updated`

func (s *PostgresStore) Create(ctx context.Context, f *models.Filing, raw []byte) error {
	conn := tx.Conn(ctx, s.db)
	f.Version = 1
	_, err := conn.ExecContext(ctx, `INSERT INTO filing (`+filingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		uuid.UUID(f.ID), uuid.UUID(f.EntityID), nullUUID(uuid.UUID(f.CreatedBy)), nullUUID(uuid.UUID(f.FilerID)),
		string(f.Type), f.FormName, string(f.Status), f.Year, nullString(string(f.Quarter)),
		f.PeriodStart.Time(), f.PeriodEnd.Time(), nullDate(f.Deadline), nullDate(f.FilingDate),
		f.Amendment, nullFilingID(f.AmendsPrevID), nullFilingID(f.AmendsOrigID), nullInt(f.AmendmentNumber),
		f.Version, f.Created, f.Updated,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create filing: %w", err)
	}
	if _, err := conn.ExecContext(ctx,
		`INSERT INTO filing_raw (filing_id, raw_json, updated) VALUES ($1, $2, $3)`,
		uuid.UUID(f.ID), raw, f.Updated); err != nil {
		return fmt.Errorf("create filing raw: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, filingID id.FilingID) (*models.Filing, error) {
	return s.findOne(ctx, `SELECT `+filingColumns+` FROM filing WHERE filing_id = $1`, filingID)
}

// FindForUpdate locks the filing row until the surrounding transaction ends.
func (s *PostgresStore) FindForUpdate(ctx context.Context, filingID id.FilingID) (*models.Filing, error) {
	return s.findOne(ctx, `SELECT `+filingColumns+` FROM filing WHERE filing_id = $1 FOR UPDATE`, filingID)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, filingID id.FilingID) (*models.Filing, error) {
	f, err := scanFiling(tx.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(filingID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}
	return f, nil
}

// Save writes f if its version matches the stored one, then bumps the version.
func (s *PostgresStore) Save(ctx context.Context, f *models.Filing) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE filing SET
			filer_id = $2, status = $3, deadline = $4, filing_date = $5, version = version + 1, updated = $6
		WHERE filing_id = $1 AND version = $7`,
		uuid.UUID(f.ID), nullUUID(uuid.UUID(f.FilerID)), string(f.Status),
		nullDate(f.Deadline), nullDate(f.FilingDate), f.Updated, f.Version)
	if err != nil {
		return fmt.Errorf("save filing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save filing: %w", err)
	}
	if n == 0 {
		if _, err := s.FindByID(ctx, f.ID); err != nil {
			return err
		}
		return sentinel.ErrConflict
	}
	f.Version++
	return nil
}

func (s *PostgresStore) LoadRaw(ctx context.Context, filingID id.FilingID) ([]byte, error) {
	var raw []byte
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT raw_json FROM filing_raw WHERE filing_id = $1`, uuid.UUID(filingID)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load filing raw: %w", err)
	}
	return raw, nil
}

func (s *PostgresStore) SaveRaw(ctx context.Context, filingID id.FilingID, raw []byte) error {
	res, err := tx.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE filing_raw SET raw_json = $2, updated = $3 WHERE filing_id = $1`,
		uuid.UUID(filingID), raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save filing raw: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// LatestFiled returns the most recent filed filing of a form for an entity and
// year, ordered by filing date, then update time, then id, all descending.
func (s *PostgresStore) LatestFiled(ctx context.Context, entityID id.EntityID, t models.FilingType, year int) (*models.Filing, error) {
	f, err := scanFiling(tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+filingColumns+` FROM filing
		WHERE entity_id = $1 AND filing_type = $2 AND year = $3 AND status = ANY($4)
		ORDER BY filing_date DESC NULLS LAST, updated DESC, filing_id DESC
		LIMIT 1`,
		uuid.UUID(entityID), string(t), year, pq.Array(statusStrings(models.FiledStatuses))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest filed: %w", err)
	}
	return f, nil
}

// HasAmendment reports whether a non-canceled filing amends filingID.
func (s *PostgresStore) HasAmendment(ctx context.Context, filingID id.FilingID) (bool, error) {
	var exists bool
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM filing WHERE amends_prev_id = $1 AND status <> $2)`,
		uuid.UUID(filingID), string(models.StatusCanceled)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check amendment: %w", err)
	}
	return exists, nil
}

// ListByEntity returns an entity's filings, newest first, optionally filtered by status.
func (s *PostgresStore) ListByEntity(ctx context.Context, entityID id.EntityID, statuses ...models.Status) ([]*models.Filing, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+filingColumns+` FROM filing
		WHERE entity_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY created DESC, filing_id DESC`,
		uuid.UUID(entityID), pq.Array(statusStrings(statuses)))
	if err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}
	defer rows.Close()
	var out []*models.Filing
	for rows.Next() {
		f, err := scanFiling(rows)
		if err != nil {
			return nil, fmt.Errorf("scan filing: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}
	return out, nil
}

func scanFiling(row interface{ Scan(...any) error }) (*models.Filing, error) {
	var (
		f                                models.Filing
		filingID, entityID               uuid.UUID
		createdBy, filerID, prevID, orig uuid.NullUUID
		filingType, status               string
		quarter                          sql.NullString
		periodStart, periodEnd           time.Time
		deadline, filingDate             sql.NullTime
		amendmentNumber                  sql.NullInt64
	)
	if err := row.Scan(&filingID, &entityID, &createdBy, &filerID, &filingType, &f.FormName, &status,
		&f.Year, &quarter, &periodStart, &periodEnd, &deadline, &filingDate,
		&f.Amendment, &prevID, &orig, &amendmentNumber, &f.Version, &f.Created, &f.Updated); err != nil {
		return nil, err
	}
	f.ID = id.FilingID(filingID)
	f.EntityID = id.EntityID(entityID)
	f.CreatedBy = id.FilerID(createdBy.UUID)
	f.FilerID = id.FilerID(filerID.UUID)
	f.Type = models.FilingType(filingType)
	f.Status = models.Status(status)
	f.Quarter = models.Quarter(quarter.String)
	f.PeriodStart = models.DateOf(periodStart)
	f.PeriodEnd = models.DateOf(periodEnd)
	if deadline.Valid {
		f.Deadline = models.DateOf(deadline.Time)
	}
	if filingDate.Valid {
		f.FilingDate = models.DateOf(filingDate.Time)
	}
	if prevID.Valid {
		p := id.FilingID(prevID.UUID)
		f.AmendsPrevID = &p
	}
	if orig.Valid {
		o := id.FilingID(orig.UUID)
		f.AmendsOrigID = &o
	}
	f.AmendmentNumber = int(amendmentNumber.Int64)
	return &f, nil
}

func statusStrings(statuses []models.Status) []string {
	out := make([]string, len(statuses))
	for i, st := range statuses {
		out[i] = string(st)
	}
	return out
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}

func nullFilingID(f *id.FilingID) uuid.NullUUID {
	if f == nil {
		return uuid.NullUUID{}
	}
	return nullUUID(uuid.UUID(*f))
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d models.Date) sql.NullTime {
	return sql.NullTime{Time: d.Time(), Valid: !d.IsZero()}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
