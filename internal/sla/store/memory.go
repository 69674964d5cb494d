package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"civicdesk/internal/sla/models"
	"civicdesk/pkg/platform/sentinel"
)

// Memory is an in-memory SLA store for tests and local development.
type Memory struct {
	mu         sync.RWMutex
	byProtocol map[uuid.UUID]*models.SLA
}

func NewMemory() *Memory {
	return &Memory{byProtocol: make(map[uuid.UUID]*models.SLA)}
}

func (m *Memory) Create(_ context.Context, s *models.SLA) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byProtocol[s.ProtocolID]; exists {
		return sentinel.ErrConflict
	}
	cp := *s
	m.byProtocol[s.ProtocolID] = &cp
	return nil
}

func (m *Memory) GetByProtocol(_ context.Context, protocolID uuid.UUID) (*models.SLA, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byProtocol[protocolID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) Update(_ context.Context, s *models.SLA) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byProtocol[s.ProtocolID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *s
	m.byProtocol[s.ProtocolID] = &cp
	return nil
}

func (m *Memory) DeleteByProtocol(_ context.Context, protocolID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byProtocol[protocolID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(m.byProtocol, protocolID)
	return nil
}

func (m *Memory) ListActive(ctx context.Context) ([]*models.SLA, error) {
	return m.list(func(s *models.SLA) bool { return !s.Terminal() })
}

func (m *Memory) List(ctx context.Context) ([]*models.SLA, error) {
	return m.list(func(*models.SLA) bool { return true })
}

func (m *Memory) list(keep func(*models.SLA) bool) ([]*models.SLA, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.SLA
	for _, s := range m.byProtocol {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpectedEndDate.Before(out[j].ExpectedEndDate)
	})
	return out, nil
}
