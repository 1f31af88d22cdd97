package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"efile/internal/entity/models"
	filingmodels "efile/internal/filing/models"
	id "efile/pkg/domain"
	"efile/pkg/platform/sentinel"
	"efile/pkg/platform/tx"
)

// PostgresStore persists entities, contact history and filers in PostgreSQL.
// Writes join the transaction carried by the context, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateEntity(ctx context.Context, e *models.LobbyingEntity) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO lobbying_entity (entity_id, name, created) VALUES ($1, $2, $3)`,
		uuid.UUID(e.ID), e.Name, e.Created)
	if err != nil {
		return fmt.Errorf("create lobbying entity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindEntity(ctx context.Context, entityID id.EntityID) (*models.LobbyingEntity, error) {
	var (
		e   models.LobbyingEntity
		uid uuid.UUID
	)
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT entity_id, name, created FROM lobbying_entity WHERE entity_id = $1`,
		uuid.UUID(entityID)).Scan(&uid, &e.Name, &e.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find lobbying entity: %w", err)
	}
	e.ID = id.EntityID(uid)
	return &e, nil
}

func (s *PostgresStore) AppendContactInfo(ctx context.Context, ci *models.ContactInfo) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO entity_contact_info
			(id, entity_id, effective_date, name, address1, address2, city, zipcode, state, phone, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		ci.ID, uuid.UUID(ci.EntityID), ci.EffectiveDate.Time(), ci.Name, ci.Address1, ci.Address2,
		ci.City, ci.Zipcode, ci.State, ci.Phone, ci.Created)
	if err != nil {
		return fmt.Errorf("append entity contact info: %w", err)
	}
	return nil
}

const contactColumns = `id, entity_id, effective_date, name, address1, address2, city, zipcode, state, phone, created`

func scanContact(row interface{ Scan(...any) error }) (*models.ContactInfo, error) {
	var (
		ci        models.ContactInfo
		entityID  uuid.UUID
		effective time.Time
	)
	if err := row.Scan(&ci.ID, &entityID, &effective, &ci.Name, &ci.Address1, &ci.Address2,
		&ci.City, &ci.Zipcode, &ci.State, &ci.Phone, &ci.Created); err != nil {
		return nil, err
	}
	ci.EntityID = id.EntityID(entityID)
	ci.EffectiveDate = filingmodels.DateOf(effective)
	return &ci, nil
}

func (s *PostgresStore) CurrentContactInfo(ctx context.Context, entityID id.EntityID) (*models.ContactInfo, error) {
	row := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+contactColumns+` FROM entity_contact_info
		WHERE entity_id = $1
		ORDER BY effective_date DESC, created DESC
		LIMIT 1`, uuid.UUID(entityID))
	ci, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("current entity contact info: %w", err)
	}
	return ci, nil
}

func (s *PostgresStore) ContactHistory(ctx context.Context, entityID id.EntityID) ([]*models.ContactInfo, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT `+contactColumns+` FROM entity_contact_info
		WHERE entity_id = $1
		ORDER BY effective_date, created`, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("list entity contact info: %w", err)
	}
	defer rows.Close()
	var out []*models.ContactInfo
	for rows.Next() {
		ci, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity contact info: %w", err)
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateFiler(ctx context.Context, f *models.Filer) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO filer (filer_id, email, created) VALUES ($1, $2, $3)`,
		uuid.UUID(f.ID), f.Email, f.Created)
	if err != nil {
		return fmt.Errorf("create filer: %w", err)
	}
	if f.Contact != (models.FilerContact{}) {
		return s.UpdateFilerContact(ctx, f.ID, f.Contact)
	}
	return nil
}

// UpdateFilerContact appends a contact record; the newest one is current.
func (s *PostgresStore) UpdateFilerContact(ctx context.Context, filerID id.FilerID, c models.FilerContact) error {
	updated := c.Updated
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO filer_contact
			(id, filer_id, first_name, middle_name, last_name, address1, address2, city, state, zipcode, phone, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		uuid.New(), uuid.UUID(filerID), c.FirstName, c.MiddleName, c.LastName, c.Address1, c.Address2,
		c.City, c.State, c.Zipcode, c.Phone, updated)
	if err != nil {
		return fmt.Errorf("update filer contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindFiler(ctx context.Context, filerID id.FilerID) (*models.Filer, error) {
	var (
		f   models.Filer
		uid uuid.UUID
		c   struct {
			first, middle, last, a1, a2, city, state, zip, phone sql.NullString
			updated                                              sql.NullTime
		}
	)
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT f.filer_id, f.email, f.created,
			c.first_name, c.middle_name, c.last_name, c.address1, c.address2,
			c.city, c.state, c.zipcode, c.phone, c.updated
		FROM filer f
		LEFT JOIN LATERAL (
			SELECT * FROM filer_contact fc WHERE fc.filer_id = f.filer_id
			ORDER BY fc.updated DESC LIMIT 1
		) c ON true
		WHERE f.filer_id = $1`, uuid.UUID(filerID)).Scan(
		&uid, &f.Email, &f.Created,
		&c.first, &c.middle, &c.last, &c.a1, &c.a2, &c.city, &c.state, &c.zip, &c.phone, &c.updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find filer: %w", err)
	}
	f.ID = id.FilerID(uid)
	f.Contact = models.FilerContact{
		FirstName:  c.first.String,
		MiddleName: c.middle.String,
		LastName:   c.last.String,
		Address1:   c.a1.String,
		Address2:   c.a2.String,
		City:       c.city.String,
		State:      c.state.String,
		Zipcode:    c.zip.String,
		Phone:      c.phone.String,
		Updated:    c.updated.Time,
	}
	return &f, nil
}

func (s *PostgresStore) Associate(ctx context.Context, filerID id.FilerID, entityID id.EntityID) error {
	_, err := tx.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO lobbying_entity_filer (entity_id, filer_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, uuid.UUID(entityID), uuid.UUID(filerID))
	if err != nil {
		return fmt.Errorf("associate filer: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAssociated(ctx context.Context, filerID id.FilerID, entityID id.EntityID) (bool, error) {
	var ok bool
	err := tx.Conn(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM lobbying_entity_filer WHERE entity_id = $1 AND filer_id = $2)`,
		uuid.UUID(entityID), uuid.UUID(filerID)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check filer association: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) FilersForEntity(ctx context.Context, entityID id.EntityID) ([]*models.Filer, error) {
	rows, err := tx.Conn(ctx, s.db).QueryContext(ctx, `
		SELECT f.filer_id FROM filer f
		JOIN lobbying_entity_filer lef ON lef.filer_id = f.filer_id
		WHERE lef.entity_id = $1
		ORDER BY f.email`, uuid.UUID(entityID))
	if err != nil {
		return nil, fmt.Errorf("list entity filers: %w", err)
	}
	var ids []id.FilerID
	for rows.Next() {
		var uid uuid.UUID
		if err := rows.Scan(&uid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan entity filer: %w", err)
		}
		ids = append(ids, id.FilerID(uid))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*models.Filer, 0, len(ids))
	for _, fid := range ids {
		f, err := s.FindFiler(ctx, fid)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
