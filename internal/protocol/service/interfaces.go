package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/dispatch"
	slamodels "civicdesk/internal/sla/models"
	wfmodels "civicdesk/internal/workflow/models"
)

//go:generate mockgen -destination=mocks/mocks.go -package=mocks civicdesk/internal/protocol/service SequenceGenerator,Dispatcher,WorkflowApplier,SLAManager,EntityActivator

// SequenceGenerator allocates protocol numbers inside the dispatch
// transaction.
type SequenceGenerator interface {
	Next(ctx context.Context, now time.Time) (string, error)
}

// Dispatcher resolves module types to handlers. Resolution failing is the
// fail-fast path for unknown module types, before any transaction opens.
type Dispatcher interface {
	Resolve(moduleType string) (dispatch.Handler, error)
}

// WorkflowApplier materializes a module type's workflow onto a protocol
// after the dispatch transaction commits.
type WorkflowApplier interface {
	ApplyWorkflowToProtocol(ctx context.Context, protocolID uuid.UUID, moduleType string) (*wfmodels.Definition, []*wfmodels.ProtocolStage, error)
}

// SLAManager creates an SLA when a protocol is dispatched and closes it when
// the protocol concludes.
type SLAManager interface {
	Create(ctx context.Context, protocolID uuid.UUID, start *time.Time, workingDays int) (*slamodels.SLA, error)
	Complete(ctx context.Context, protocolID uuid.UUID) (*slamodels.SLA, error)
}

// EntityActivator propagates a protocol decision onto the module records
// created at dispatch time. Runs inside the decision transaction.
type EntityActivator interface {
	UpdateStatusByProtocol(ctx context.Context, protocolNumber, status string) error
}

// TxRunner executes fn within a transaction carried by the derived context.
// The database-backed runner wraps tx.Run; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Passthrough is a TxRunner without transactional semantics, for memory
// stores.
func Passthrough(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
