package custom

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDefinitionStore keeps definitions in a map guarded by a mutex, which
// gives the same first-writer-wins semantics as the database unique
// constraint.
type MemoryDefinitionStore struct {
	mu   sync.Mutex
	defs map[string]*Definition
}

func NewMemoryDefinitionStore() *MemoryDefinitionStore {
	return &MemoryDefinitionStore{defs: make(map[string]*Definition)}
}

func (s *MemoryDefinitionStore) FindOrCreate(_ context.Context, moduleType string, now time.Time) (*Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if def, ok := s.defs[moduleType]; ok {
		cp := *def
		return &cp, nil
	}
	def := &Definition{
		ID:         uuid.New(),
		ModuleType: moduleType,
		TableName:  TableName(moduleType),
		CreatedAt:  now,
	}
	s.defs[moduleType] = def
	cp := *def
	return &cp, nil
}

// MemoryRecordStore keeps raw records in memory.
type MemoryRecordStore struct {
	mu      sync.Mutex
	records []*Record
}

func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{}
}

func (s *MemoryRecordStore) Create(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.records = append(s.records, &cp)
	return nil
}

func (s *MemoryRecordStore) UpdateStatusByProtocol(_ context.Context, protocolNumber, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ProtocolNumber == protocolNumber {
			r.Status = status
		}
	}
	return nil
}

func (s *MemoryRecordStore) ListByProtocol(_ context.Context, protocolNumber string) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Record
	for _, r := range s.records {
		if r.ProtocolNumber == protocolNumber {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
