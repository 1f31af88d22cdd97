// Package store persists filings and their raw documents.
package store

import (
	"context"
	"sort"
	"sync"

	"efile/internal/filing/models"
	id "efile/pkg/domain"
	"efile/pkg/platform/sentinel"
)

// InMemory keeps filings and raw documents in maps. Reads return copies.
type InMemory struct {
	mu      sync.RWMutex
	filings map[id.FilingID]*models.Filing
	raw     map[id.FilingID][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{
		filings: make(map[id.FilingID]*models.Filing),
		raw:     make(map[id.FilingID][]byte),
	}
}

func cloneFiling(f *models.Filing) *models.Filing {
	cp := *f
	if f.AmendsPrevID != nil {
		prev := *f.AmendsPrevID
		cp.AmendsPrevID = &prev
	}
	if f.AmendsOrigID != nil {
		orig := *f.AmendsOrigID
		cp.AmendsOrigID = &orig
	}
	return &cp
}

func (s *InMemory) Create(_ context.Context, f *models.Filing, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filings[f.ID]; ok {
		return sentinel.ErrConflict
	}
	f.Version = 1
	s.filings[f.ID] = cloneFiling(f)
	s.raw[f.ID] = append([]byte(nil), raw...)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, filingID id.FilingID) (*models.Filing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.filings[filingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneFiling(f), nil
}

// FindForUpdate is FindByID; callers serialize through the in-memory unit of work.
func (s *InMemory) FindForUpdate(ctx context.Context, filingID id.FilingID) (*models.Filing, error) {
	return s.FindByID(ctx, filingID)
}

// Save writes f if its version matches the stored one, then bumps the version.
func (s *InMemory) Save(_ context.Context, f *models.Filing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.filings[f.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Version != f.Version {
		return sentinel.ErrConflict
	}
	f.Version++
	s.filings[f.ID] = cloneFiling(f)
	return nil
}

func (s *InMemory) LoadRaw(_ context.Context, filingID id.FilingID) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.raw[filingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *InMemory) SaveRaw(_ context.Context, filingID id.FilingID, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filings[filingID]; !ok {
		return sentinel.ErrNotFound
	}
	s.raw[filingID] = append([]byte(nil), raw...)
	return nil
}

// LatestFiled returns the most recent filed filing of a form for an entity and
// year, ordered by filing date, then update time, then id, all descending.
func (s *InMemory) LatestFiled(_ context.Context, entityID id.EntityID, t models.FilingType, year int) (*models.Filing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.Filing
	for _, f := range s.filings {
		if f.EntityID != entityID || f.Type != t || f.Year != year || !f.Status.IsFiled() {
			continue
		}
		if best == nil || newer(f, best) {
			best = f
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	return cloneFiling(best), nil
}

func newer(a, b *models.Filing) bool {
	if !a.FilingDate.Equal(b.FilingDate) {
		return a.FilingDate.After(b.FilingDate)
	}
	if !a.Updated.Equal(b.Updated) {
		return a.Updated.After(b.Updated)
	}
	return a.ID.String() > b.ID.String()
}

// HasAmendment reports whether a non-canceled filing amends filingID.
func (s *InMemory) HasAmendment(_ context.Context, filingID id.FilingID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.filings {
		if f.AmendsPrevID != nil && *f.AmendsPrevID == filingID && f.Status != models.StatusCanceled {
			return true, nil
		}
	}
	return false, nil
}

// ListByEntity returns an entity's filings, newest first, optionally filtered by status.
func (s *InMemory) ListByEntity(_ context.Context, entityID id.EntityID, statuses ...models.Status) ([]*models.Filing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []*models.Filing
	for _, f := range s.filings {
		if f.EntityID != entityID || len(want) > 0 && !want[f.Status] {
			continue
		}
		out = append(out, cloneFiling(f))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	return out, nil
}
