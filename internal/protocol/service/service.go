// Package service is the transaction coordinator: it allocates a protocol
// number, creates the protocol, and dispatches the module record in one
// database transaction, then applies workflow, SLA, and audit side effects
// after commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"civicdesk/internal/audit"
	"civicdesk/internal/dispatch"
	"civicdesk/internal/platform/metrics"
	"civicdesk/internal/protocol/models"
	"civicdesk/internal/protocol/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/requestcontext"
)

const tracerName = "civicdesk/protocol"

// Service coordinates protocol creation and lifecycle decisions.
type Service struct {
	sequence   SequenceGenerator
	protocols  store.ProtocolStore
	history    store.HistoryStore
	dispatcher Dispatcher
	runTx      TxRunner

	workflows  WorkflowApplier
	slas       SLAManager
	activators []EntityActivator

	logger         *slog.Logger
	metrics        *metrics.Metrics
	audit          audit.Publisher
	dispatchBudget time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithWorkflows(w WorkflowApplier) Option {
	return func(s *Service) { s.workflows = w }
}

func WithSLAs(m SLAManager) Option {
	return func(s *Service) { s.slas = m }
}

// WithActivators registers the module stores that receive status updates on
// approval and rejection.
func WithActivators(activators ...EntityActivator) Option {
	return func(s *Service) { s.activators = activators }
}

func WithDispatchBudget(d time.Duration) Option {
	return func(s *Service) { s.dispatchBudget = d }
}

func NewService(seq SequenceGenerator, protocols store.ProtocolStore, history store.HistoryStore, dispatcher Dispatcher, runTx TxRunner, opts ...Option) *Service {
	s := &Service{
		sequence:       seq,
		protocols:      protocols,
		history:        history,
		dispatcher:     dispatcher,
		runTx:          runTx,
		logger:         slog.Default(),
		dispatchBudget: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DispatchInput describes a citizen request to turn into a protocol.
type DispatchInput struct {
	ServiceRef   string         `json:"service_ref"`
	ServiceName  string         `json:"service_name"`
	ModuleType   string         `json:"module_type"`
	EntityKind   string         `json:"entity_kind"`
	RequesterRef string         `json:"requester_ref"`
	RequestData  map[string]any `json:"request_data"`
}

func (in DispatchInput) validate() error {
	if in.ServiceRef == "" {
		return dErrors.New(dErrors.CodeValidation, "service reference is required")
	}
	if in.ModuleType == "" {
		return dErrors.New(dErrors.CodeValidation, "module type is required")
	}
	if in.RequesterRef == "" {
		return dErrors.New(dErrors.CodeValidation, "requester reference is required")
	}
	return nil
}

// DispatchResult reports the protocol and module record created.
type DispatchResult struct {
	Protocol   *models.Protocol `json:"protocol"`
	EntityID   string           `json:"entity_id"`
	EntityType string           `json:"entity_type"`
}

// DispatchRequest runs the dispatch pipeline: allocate a number, insert the
// protocol, execute the module handler, record history, all in one
// transaction. An unknown module type fails before any transaction opens.
// Workflow application, SLA creation, and audit emission happen after
// commit and never fail the request.
func (s *Service) DispatchRequest(ctx context.Context, in DispatchInput) (*DispatchResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	handler, err := s.dispatcher.Resolve(in.ModuleType)
	if err != nil {
		s.metrics.RecordDispatchFailure(string(dErrors.CodeOf(err)))
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "DispatchRequest",
		trace.WithAttributes(
			attribute.String("module_type", in.ModuleType),
			attribute.String("service_ref", in.ServiceRef),
		))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.dispatchBudget)
	defer cancel()

	now := requestcontext.Now(ctx).UTC()

	var (
		protocol *models.Protocol
		result   *dispatch.Result
	)
	err = s.runTx(ctx, func(ctx context.Context) error {
		seqStart := time.Now()
		number, err := s.sequence.Next(ctx, now)
		s.metrics.ObserveSequenceLatency(time.Since(seqStart).Seconds())
		if err != nil {
			return classifySequenceError(err)
		}

		protocol, err = models.NewProtocol(number, in.ServiceRef, in.ModuleType, in.RequesterRef, now)
		if err != nil {
			return err
		}
		if err := s.protocols.Create(ctx, protocol); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				// The unique constraint on number is the backstop against a
				// generator bug; retryable because the next allocation gets
				// a fresh number.
				return dErrors.Wrap(err, dErrors.CodeDuplicateNumber, "protocol number already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "persist protocol")
		}

		result, err = handler.Execute(ctx, dispatch.Context{
			Protocol: protocol,
			ServiceDescriptor: dispatch.ServiceDescriptor{
				Ref:        in.ServiceRef,
				Name:       in.ServiceName,
				ModuleType: in.ModuleType,
				EntityKind: in.EntityKind,
			},
			RequestData:  in.RequestData,
			RequesterRef: in.RequesterRef,
		})
		if err != nil {
			return err
		}

		entry := models.NewHistoryEntry(protocol.ID, models.HistoryCreated, now)
		entry.NewStatus = protocol.Status
		entry.ActorRef = in.RequesterRef
		entry.Comment = fmt.Sprintf("dispatched to %s", result.EntityType)
		if err := s.history.Append(ctx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "record protocol history")
		}
		return nil
	})
	if err != nil {
		code := string(dErrors.CodeOf(err))
		s.metrics.RecordDispatchFailure(code)
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		return nil, err
	}

	span.SetAttributes(attribute.String("protocol_number", protocol.Number))
	if s.metrics != nil {
		s.metrics.ProtocolsCreated.Inc()
	}
	s.logger.Info("protocol dispatched",
		"protocol_number", protocol.Number,
		"module_type", in.ModuleType,
		"entity_type", result.EntityType,
		"request_id", requestcontext.RequestID(ctx),
	)

	s.applyPostCommit(ctx, protocol)
	s.emit(ctx, audit.EventProtocolCreated, protocol, "entity_type="+result.EntityType)

	return &DispatchResult{
		Protocol:   protocol,
		EntityID:   result.EntityID.String(),
		EntityType: result.EntityType,
	}, nil
}

// applyPostCommit runs the workflow and SLA side effects. Best-effort: the
// protocol is already committed, so failures are logged and the request
// still succeeds.
func (s *Service) applyPostCommit(ctx context.Context, protocol *models.Protocol) {
	if s.workflows == nil {
		return
	}
	def, stages, err := s.workflows.ApplyWorkflowToProtocol(ctx, protocol.ID, protocol.ModuleType)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.logger.Warn("workflow application failed",
				"protocol_number", protocol.Number, "error", err)
		}
		return
	}
	s.emit(ctx, audit.EventWorkflowApplied, protocol, fmt.Sprintf("stages=%d", len(stages)))

	if s.slas == nil || def.DefaultSLADays <= 0 {
		return
	}
	if _, err := s.slas.Create(ctx, protocol.ID, &protocol.CreatedAt, def.DefaultSLADays); err != nil {
		if !dErrors.HasCode(err, dErrors.CodeConflict) {
			s.logger.Warn("SLA creation failed",
				"protocol_number", protocol.Number, "error", err)
		}
	}
}

func classifySequenceError(err error) error {
	if errors.Is(err, sentinel.ErrLockTimeout) {
		return dErrors.Wrap(err, dErrors.CodeConcurrencyTimeout, "timed out allocating protocol number")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "allocate protocol number")
}

// Approve concludes a protocol favorably: status update, history entry, and
// module record activation in one transaction, then SLA completion and an
// audit event.
func (s *Service) Approve(ctx context.Context, number, comment string) (*models.Protocol, error) {
	return s.decide(ctx, number, decision{
		comment:      comment,
		action:       models.HistoryApproved,
		entityStatus: "approved",
		event:        audit.EventProtocolApproved,
		check:        (*models.Protocol).CanApprove,
		apply:        (*models.Protocol).ApplyApproval,
		closeSLA:     true,
	})
}

// Reject concludes a protocol unfavorably. A rejection reason is required.
func (s *Service) Reject(ctx context.Context, number, reason string) (*models.Protocol, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	return s.decide(ctx, number, decision{
		comment:      reason,
		action:       models.HistoryRejected,
		entityStatus: "rejected",
		event:        audit.EventProtocolRejected,
		check:        (*models.Protocol).CanReject,
		apply:        (*models.Protocol).ApplyRejection,
		closeSLA:     true,
	})
}

type decision struct {
	comment      string
	action       models.HistoryAction
	entityStatus string
	event        audit.EventType
	check        func(*models.Protocol) error
	apply        func(*models.Protocol, time.Time)
	closeSLA     bool
}

func (s *Service) decide(ctx context.Context, number string, d decision) (*models.Protocol, error) {
	protocol, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := d.check(protocol); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	oldStatus := protocol.Status

	err = s.runTx(ctx, func(ctx context.Context) error {
		d.apply(protocol, now)
		if err := s.protocols.Update(ctx, protocol); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "persist protocol decision")
		}

		entry := models.NewHistoryEntry(protocol.ID, d.action, now)
		entry.OldStatus = oldStatus
		entry.NewStatus = protocol.Status
		entry.Comment = d.comment
		entry.ActorRef = requestcontext.UserID(ctx)
		if err := s.history.Append(ctx, entry); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "record protocol history")
		}

		for _, activator := range s.activators {
			if err := activator.UpdateStatusByProtocol(ctx, protocol.Number, d.entityStatus); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "propagate decision to module records")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.closeSLA && s.slas != nil {
		if _, err := s.slas.Complete(ctx, protocol.ID); err != nil {
			if !dErrors.HasCode(err, dErrors.CodeNotFound) && !dErrors.HasCode(err, dErrors.CodeConflict) {
				s.logger.Warn("SLA completion failed", "protocol_number", protocol.Number, "error", err)
			}
		}
	}
	s.emit(ctx, d.event, protocol, d.comment)
	return protocol, nil
}

// GetByNumber loads a protocol by its public number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*models.Protocol, error) {
	if !models.ValidNumber(number) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "malformed protocol number %q", number)
	}
	protocol, err := s.protocols.GetByNumber(ctx, number)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "protocol %s not found", number)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load protocol")
	}
	return protocol, nil
}

// History returns a protocol's action log, oldest first.
func (s *Service) History(ctx context.Context, number string) ([]*models.HistoryEntry, error) {
	protocol, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	entries, err := s.history.ListByProtocol(ctx, protocol.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load protocol history")
	}
	return entries, nil
}

// ListByModule lists all protocols for a module type.
func (s *Service) ListByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error) {
	if moduleType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "module type is required")
	}
	protocols, err := s.protocols.ListByModule(ctx, moduleType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list protocols")
	}
	return protocols, nil
}

// PendingByModule lists protocols for a module type still awaiting a
// decision.
func (s *Service) PendingByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error) {
	if moduleType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "module type is required")
	}
	protocols, err := s.protocols.ListPendingByModule(ctx, moduleType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list pending protocols")
	}
	return protocols, nil
}

// Stats aggregates the protocol population by status and module.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	stats, err := s.protocols.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "protocol stats")
	}
	return stats, nil
}

func (s *Service) emit(ctx context.Context, event audit.EventType, protocol *models.Protocol, detail string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Type:           event,
		Timestamp:      requestcontext.Now(ctx).UTC(),
		ProtocolNumber: protocol.Number,
		ModuleType:     protocol.ModuleType,
		ActorRef:       requestcontext.UserID(ctx),
		RequestID:      requestcontext.RequestID(ctx),
		Detail:         detail,
	})
	if err != nil {
		s.logger.Warn("audit emit failed", "event", event, "error", err)
	}
}
