// Package dispatch routes protocol creation to module-specific handlers.
// Handlers create the specialized record a protocol binds to; the registry
// decides which handler owns a module type.
package dispatch

import (
	"context"

	"github.com/google/uuid"

	"civicdesk/internal/protocol/models"
	dErrors "civicdesk/pkg/domain-errors"
)

// ServiceDescriptor identifies the municipal service a request was filed
// under. EntityKind disambiguates services that map to different record
// types within the same module.
type ServiceDescriptor struct {
	Ref        string
	Name       string
	ModuleType string
	EntityKind string
}

// Context carries everything a handler needs to create its module record.
// The protocol is already inserted in the surrounding transaction, so
// handlers may reference Protocol.Number as a foreign key.
type Context struct {
	Protocol          *models.Protocol
	ServiceDescriptor ServiceDescriptor
	RequestData       map[string]any
	RequesterRef      string
}

// Result reports the record a handler created.
type Result struct {
	EntityID   uuid.UUID
	EntityType string
}

// Handler creates the module record for protocols of the module types it
// claims. Execute runs inside the coordinator's transaction and must not
// commit or roll back on its own; it performs exactly one logical create.
type Handler interface {
	CanHandle(moduleType string) bool
	Execute(ctx context.Context, dc Context) (*Result, error)
}

// Registry resolves module types to handlers. Registration order is fixed
// and the first handler claiming a type wins; the fallback, when set,
// matches anything.
type Registry struct {
	handlers []Handler
	fallback Handler
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a handler. Order matters.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// SetFallback installs the handler used when no registered handler claims a
// module type.
func (r *Registry) SetFallback(h Handler) {
	r.fallback = h
}

// Resolve returns the handler for moduleType, or an unknown_module error
// when nothing claims it and no fallback is installed.
func (r *Registry) Resolve(moduleType string) (Handler, error) {
	for _, h := range r.handlers {
		if h.CanHandle(moduleType) {
			return h, nil
		}
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, dErrors.Newf(dErrors.CodeUnknownModule, "no handler registered for module type %q", moduleType)
}
