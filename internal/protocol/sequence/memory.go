package sequence

import (
	"context"
	"sync"
	"time"

	"civicdesk/internal/protocol/models"
)

// InMemory allocates numbers from an in-process per-day counter. Used in
// unit tests and local development; it cannot participate in a database
// transaction, so numbers it allocates are consumed even if the caller
// later fails.
type InMemory struct {
	mu   sync.Mutex
	days map[string]int
}

// NewInMemory constructs an empty in-memory generator.
func NewInMemory() *InMemory {
	return &InMemory{days: make(map[string]int)}
}

func (g *InMemory) Next(_ context.Context, now time.Time) (string, error) {
	day := models.DayKey(now)

	g.mu.Lock()
	g.days[day]++
	seq := g.days[day]
	g.mu.Unlock()

	return models.FormatNumber(now, seq), nil
}
