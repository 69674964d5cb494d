package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"civicdesk/internal/protocol/models"
	"civicdesk/pkg/platform/sentinel"
)

// MemoryProtocolStore is an in-memory ProtocolStore for tests and local
// development.
type MemoryProtocolStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*models.Protocol
	byNumber map[string]uuid.UUID
}

func NewMemoryProtocolStore() *MemoryProtocolStore {
	return &MemoryProtocolStore{
		byID:     make(map[uuid.UUID]*models.Protocol),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (s *MemoryProtocolStore) Create(_ context.Context, p *models.Protocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[p.Number]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[p.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *p
	s.byID[p.ID] = &cp
	s.byNumber[p.Number] = p.ID
	return nil
}

func (s *MemoryProtocolStore) GetByID(_ context.Context, id uuid.UUID) (*models.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProtocolStore) GetByNumber(_ context.Context, number string) (*models.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryProtocolStore) Update(_ context.Context, p *models.Protocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *p
	s.byID[p.ID] = &cp
	return nil
}

func (s *MemoryProtocolStore) ListByModule(_ context.Context, moduleType string) ([]*models.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Protocol
	for _, p := range s.byID {
		if p.ModuleType == moduleType {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryProtocolStore) ListPendingByModule(_ context.Context, moduleType string) ([]*models.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Protocol
	for _, p := range s.byID {
		if p.ModuleType == moduleType && !p.Terminal() {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryProtocolStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		ByStatus: make(map[models.Status]int),
		ByModule: make(map[string]int),
	}
	for _, p := range s.byID {
		stats.Total++
		stats.ByStatus[p.Status]++
		if p.ModuleType != "" {
			stats.ByModule[p.ModuleType]++
		}
	}
	return stats, nil
}

func sortByCreation(ps []*models.Protocol) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].Number < ps[j].Number
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
}

// MemoryHistoryStore is an in-memory HistoryStore.
type MemoryHistoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]*models.HistoryEntry
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{entries: make(map[uuid.UUID][]*models.HistoryEntry)}
}

func (s *MemoryHistoryStore) Append(_ context.Context, e *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.entries[e.ProtocolID] = append(s.entries[e.ProtocolID], &cp)
	return nil
}

func (s *MemoryHistoryStore) ListByProtocol(_ context.Context, protocolID uuid.UUID) ([]*models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.entries[protocolID]
	out := make([]*models.HistoryEntry, 0, len(src))
	for _, e := range src {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}
