package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"civicdesk/internal/workflow/models"
	"civicdesk/pkg/platform/sentinel"
)

// MemoryDefinitionStore holds definitions in memory.
type MemoryDefinitionStore struct {
	mu   sync.RWMutex
	defs map[string]*models.Definition
}

func NewMemoryDefinitionStore() *MemoryDefinitionStore {
	return &MemoryDefinitionStore{defs: make(map[string]*models.Definition)}
}

func (s *MemoryDefinitionStore) Upsert(_ context.Context, d *models.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.defs[d.ModuleType]; ok {
		d.ID = existing.ID
	}
	cp := *d
	cp.Stages = append([]models.Stage(nil), d.Stages...)
	s.defs[d.ModuleType] = &cp
	return nil
}

func (s *MemoryDefinitionStore) GetByModuleType(_ context.Context, moduleType string) (*models.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.defs[moduleType]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	cp.Stages = append([]models.Stage(nil), d.Stages...)
	return &cp, nil
}

func (s *MemoryDefinitionStore) List(_ context.Context) ([]*models.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Definition, 0, len(s.defs))
	for _, d := range s.defs {
		cp := *d
		cp.Stages = append([]models.Stage(nil), d.Stages...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModuleType < out[j].ModuleType })
	return out, nil
}

func (s *MemoryDefinitionStore) Delete(_ context.Context, moduleType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.defs[moduleType]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.defs, moduleType)
	return nil
}

// MemoryStageStore holds materialized stages in memory. The (protocol,
// order) uniqueness of the database schema is enforced here too so unit
// tests exercise the same idempotency path.
type MemoryStageStore struct {
	mu     sync.Mutex
	stages map[uuid.UUID][]*models.ProtocolStage
}

func NewMemoryStageStore() *MemoryStageStore {
	return &MemoryStageStore{stages: make(map[uuid.UUID][]*models.ProtocolStage)}
}

func (s *MemoryStageStore) BulkCreate(_ context.Context, stages []*models.ProtocolStage) error {
	if len(stages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[int]bool)
	for _, existing := range s.stages[stages[0].ProtocolID] {
		taken[existing.Order] = true
	}
	for _, st := range stages {
		if taken[st.Order] {
			return sentinel.ErrConflict
		}
	}
	for _, st := range stages {
		cp := *st
		s.stages[st.ProtocolID] = append(s.stages[st.ProtocolID], &cp)
	}
	return nil
}

func (s *MemoryStageStore) ListByProtocol(_ context.Context, protocolID uuid.UUID) ([]*models.ProtocolStage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.stages[protocolID]
	out := make([]*models.ProtocolStage, 0, len(src))
	for _, st := range src {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// MemoryDocumentStore holds protocol documents in memory.
type MemoryDocumentStore struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[uuid.UUID]*models.Document)}
}

func (s *MemoryDocumentStore) Create(_ context.Context, d *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.docs[d.ID] = &cp
	return nil
}

func (s *MemoryDocumentStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.Status = status
	return nil
}

func (s *MemoryDocumentStore) ListByProtocol(_ context.Context, protocolID uuid.UUID) ([]*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Document
	for _, d := range s.docs {
		if d.ProtocolID == protocolID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MemoryActionStore holds recorded actions in memory.
type MemoryActionStore struct {
	mu      sync.Mutex
	actions map[uuid.UUID]map[string]*models.Action
}

func NewMemoryActionStore() *MemoryActionStore {
	return &MemoryActionStore{actions: make(map[uuid.UUID]map[string]*models.Action)}
}

func (s *MemoryActionStore) Record(_ context.Context, a *models.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := s.actions[a.ProtocolID]
	if byName == nil {
		byName = make(map[string]*models.Action)
		s.actions[a.ProtocolID] = byName
	}
	if _, exists := byName[a.Action]; exists {
		return nil
	}
	cp := *a
	byName[a.Action] = &cp
	return nil
}

func (s *MemoryActionStore) ListByProtocol(_ context.Context, protocolID uuid.UUID) ([]*models.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Action
	for _, a := range s.actions[protocolID] {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
