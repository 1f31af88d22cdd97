//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"efile/internal/entity/models"
	filingmodels "efile/internal/filing/models"
	id "efile/pkg/domain"
	"efile/pkg/platform/sentinel"
	"efile/pkg/testutil/containers"
)

type PostgresEntityStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *PostgresStore
	ctx    context.Context
	entity *models.LobbyingEntity
}

func TestPostgresEntityStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresEntityStoreSuite))
}

func (s *PostgresEntityStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().Postgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresEntityStoreSuite) SetupTest() {
	s.pg.Reset(s.T())
	s.entity = &models.LobbyingEntity{ID: id.NewEntityID(), Name: "Harbor Advocacy", Created: time.Now().UTC()}
	s.Require().NoError(s.store.CreateEntity(s.ctx, s.entity))
}

func (s *PostgresEntityStoreSuite) TestContactHistory() {
	_, err := s.store.CurrentContactInfo(s.ctx, s.entity.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []struct{ effective, address string }{
		{"2021-03-01", "2 Second Ave"},
		{"2021-01-01", "1 First St"},
		{"2021-03-01", "3 Third Blvd"},
	} {
		ci, err := models.NewContactInfo(s.entity.ID, models.ContactInfo{
			EffectiveDate: filingmodels.MustParseDate(c.effective),
			Name:          s.entity.Name,
			Address1:      c.address,
		}, base.Add(time.Duration(i)*time.Hour))
		s.Require().NoError(err)
		s.Require().NoError(s.store.AppendContactInfo(s.ctx, ci))
	}

	current, err := s.store.CurrentContactInfo(s.ctx, s.entity.ID)
	s.Require().NoError(err)
	s.Equal("3 Third Blvd", current.Address1)

	history, err := s.store.ContactHistory(s.ctx, s.entity.ID)
	s.Require().NoError(err)
	s.Require().Len(history, 3)
	s.Equal("1 First St", history[0].Address1)
}

func (s *PostgresEntityStoreSuite) TestFilers() {
	filer := &models.Filer{
		ID: id.NewFilerID(), Email: "ana@example.com", Created: time.Now().UTC(),
		Contact: models.FilerContact{FirstName: "Ana", LastName: "Ortiz", City: "Oakland"},
	}
	s.Require().NoError(s.store.CreateFiler(s.ctx, filer))

	ok, err := s.store.IsAssociated(s.ctx, filer.ID, s.entity.ID)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.Associate(s.ctx, filer.ID, s.entity.ID))
	s.Require().NoError(s.store.Associate(s.ctx, filer.ID, s.entity.ID), "association is idempotent")

	ok, err = s.store.IsAssociated(s.ctx, filer.ID, s.entity.ID)
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.UpdateFilerContact(s.ctx, filer.ID, models.FilerContact{
		FirstName: "Ana", LastName: "Ortiz", City: "Berkeley", Updated: time.Now().UTC().Add(time.Minute),
	}))
	got, err := s.store.FindFiler(s.ctx, filer.ID)
	s.Require().NoError(err)
	s.Equal("Berkeley", got.Contact.City)

	filers, err := s.store.FilersForEntity(s.ctx, s.entity.ID)
	s.Require().NoError(err)
	s.Require().Len(filers, 1)
	s.Equal("ana@example.com", filers[0].Email)

	_, err = s.store.FindFiler(s.ctx, id.NewFilerID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
