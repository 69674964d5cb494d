// Package custom is the dispatch fallback: module types without a
// specialized handler get their request payload persisted verbatim under a
// per-module table definition.
package custom

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/dispatch"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/requestcontext"
)

// Definition names the logical table a module type's raw records live under.
// One definition exists per module type, created lazily on first dispatch.
type Definition struct {
	ID         uuid.UUID
	ModuleType string
	TableName  string
	CreatedAt  time.Time
}

// Record is one raw payload bound to a protocol.
type Record struct {
	ID             uuid.UUID
	DefinitionID   uuid.UUID
	ProtocolNumber string
	Status         string
	Data           map[string]any
	CreatedAt      time.Time
}

// DefinitionStore resolves a module type's definition, creating it on first
// use. Implementations must be race-safe: two concurrent resolutions of the
// same module type return the same definition.
type DefinitionStore interface {
	FindOrCreate(ctx context.Context, moduleType string, now time.Time) (*Definition, error)
}

// RecordStore persists raw payload records.
type RecordStore interface {
	Create(ctx context.Context, r *Record) error
	ListByProtocol(ctx context.Context, protocolNumber string) ([]*Record, error)
	UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error
}

// Handler is the fallback dispatch handler.
type Handler struct {
	definitions DefinitionStore
	records     RecordStore
}

func NewHandler(definitions DefinitionStore, records RecordStore) *Handler {
	return &Handler{definitions: definitions, records: records}
}

// CanHandle always claims the module type; the registry only consults the
// fallback after every specialized handler has declined.
func (h *Handler) CanHandle(string) bool { return true }

func (h *Handler) Execute(ctx context.Context, dc dispatch.Context) (*dispatch.Result, error) {
	now := requestcontext.Now(ctx)

	moduleType := dc.ServiceDescriptor.ModuleType
	if moduleType == "" {
		moduleType = dc.Protocol.ModuleType
	}
	if moduleType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "module type is required for custom dispatch")
	}

	def, err := h.definitions.FindOrCreate(ctx, moduleType, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEntityCreation, "resolve custom table definition")
	}

	rec := &Record{
		ID:             uuid.New(),
		DefinitionID:   def.ID,
		ProtocolNumber: dc.Protocol.Number,
		Status:         "pending",
		Data:           dc.RequestData,
		CreatedAt:      now,
	}
	if rec.Data == nil {
		rec.Data = map[string]any{}
	}
	if err := h.records.Create(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeEntityCreation, "persist custom module record")
	}

	return &dispatch.Result{EntityID: rec.ID, EntityType: def.TableName}, nil
}

// TableName derives the logical table name for a module type.
func TableName(moduleType string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, moduleType)
	return "custom_" + cleaned
}
