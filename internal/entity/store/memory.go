package store

import (
	"context"
	"sort"
	"sync"

	"efile/internal/entity/models"
	id "efile/pkg/domain"
	"efile/pkg/platform/sentinel"
)

type association struct {
	filer  id.FilerID
	entity id.EntityID
}

// InMemory is a map-backed entity store for tests and local runs.
type InMemory struct {
	mu           sync.RWMutex
	entities     map[id.EntityID]*models.LobbyingEntity
	contacts     map[id.EntityID][]*models.ContactInfo
	filers       map[id.FilerID]*models.Filer
	associations map[association]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		entities:     make(map[id.EntityID]*models.LobbyingEntity),
		contacts:     make(map[id.EntityID][]*models.ContactInfo),
		filers:       make(map[id.FilerID]*models.Filer),
		associations: make(map[association]struct{}),
	}
}

func (s *InMemory) CreateEntity(_ context.Context, e *models.LobbyingEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *e
	s.entities[e.ID] = &cp
	return nil
}

func (s *InMemory) FindEntity(_ context.Context, entityID id.EntityID) (*models.LobbyingEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *InMemory) AppendContactInfo(_ context.Context, ci *models.ContactInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[ci.EntityID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *ci
	s.contacts[ci.EntityID] = append(s.contacts[ci.EntityID], &cp)
	return nil
}

func (s *InMemory) CurrentContactInfo(_ context.Context, entityID id.EntityID) (*models.ContactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var current *models.ContactInfo
	for _, ci := range s.contacts[entityID] {
		if current == nil || ci.IsNewerThan(current) {
			current = ci
		}
	}
	if current == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *current
	return &cp, nil
}

// ContactHistory returns every contact record of an entity, oldest first.
func (s *InMemory) ContactHistory(_ context.Context, entityID id.EntityID) ([]*models.ContactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.ContactInfo, 0, len(s.contacts[entityID]))
	for _, ci := range s.contacts[entityID] {
		cp := *ci
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[j].IsNewerThan(out[i]) })
	return out, nil
}

func (s *InMemory) CreateFiler(_ context.Context, f *models.Filer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filers[f.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *f
	s.filers[f.ID] = &cp
	return nil
}

func (s *InMemory) UpdateFilerContact(_ context.Context, filerID id.FilerID, c models.FilerContact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.filers[filerID]
	if !ok {
		return sentinel.ErrNotFound
	}
	f.Contact = c
	return nil
}

func (s *InMemory) FindFiler(_ context.Context, filerID id.FilerID) (*models.Filer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.filers[filerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *InMemory) Associate(_ context.Context, filerID id.FilerID, entityID id.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filers[filerID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.entities[entityID]; !ok {
		return sentinel.ErrNotFound
	}
	s.associations[association{filer: filerID, entity: entityID}] = struct{}{}
	return nil
}

func (s *InMemory) IsAssociated(_ context.Context, filerID id.FilerID, entityID id.EntityID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.associations[association{filer: filerID, entity: entityID}]
	return ok, nil
}

func (s *InMemory) FilersForEntity(_ context.Context, entityID id.EntityID) ([]*models.Filer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Filer
	for a := range s.associations {
		if a.entity != entityID {
			continue
		}
		if f, ok := s.filers[a.filer]; ok {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
