package handlers

import (
	"context"
	"sync"
)

// MemoryEducationStore keeps education entities in memory for tests and
// local development.
type MemoryEducationStore struct {
	mu          sync.Mutex
	Enrollments []*StudentEnrollment
	Transports  []*SchoolTransport
}

func NewMemoryEducationStore() *MemoryEducationStore {
	return &MemoryEducationStore{}
}

func (s *MemoryEducationStore) CreateEnrollment(_ context.Context, e *StudentEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.Enrollments = append(s.Enrollments, &cp)
	return nil
}

func (s *MemoryEducationStore) CreateTransport(_ context.Context, t *SchoolTransport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.Transports = append(s.Transports, &cp)
	return nil
}

func (s *MemoryEducationStore) UpdateStatusByProtocol(_ context.Context, protocolNumber, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Enrollments {
		if e.ProtocolNumber == protocolNumber {
			e.Status = status
		}
	}
	for _, t := range s.Transports {
		if t.ProtocolNumber == protocolNumber {
			t.Status = status
		}
	}
	return nil
}

// MemoryHealthStore keeps health entities in memory.
type MemoryHealthStore struct {
	mu          sync.Mutex
	Attendances []*HealthAttendance
}

func NewMemoryHealthStore() *MemoryHealthStore {
	return &MemoryHealthStore{}
}

func (s *MemoryHealthStore) CreateAttendance(_ context.Context, a *HealthAttendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.Attendances = append(s.Attendances, &cp)
	return nil
}

func (s *MemoryHealthStore) UpdateStatusByProtocol(_ context.Context, protocolNumber, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.Attendances {
		if a.ProtocolNumber == protocolNumber {
			a.Status = status
		}
	}
	return nil
}
