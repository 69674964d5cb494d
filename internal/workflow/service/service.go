// Package service implements the workflow engine: definition management,
// application of workflows to protocols, and stage condition validation.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/platform/metrics"
	"civicdesk/internal/workflow/models"
	"civicdesk/internal/workflow/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/requestcontext"
)

// Service orchestrates workflow definitions and their application.
type Service struct {
	definitions store.DefinitionStore
	stages      store.StageStore
	documents   store.DocumentStore
	actions     store.ActionStore
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(definitions store.DefinitionStore, stages store.StageStore, documents store.DocumentStore, actions store.ActionStore, opts ...Option) *Service {
	s := &Service{
		definitions: definitions,
		stages:      stages,
		documents:   documents,
		actions:     actions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput describes a workflow definition to create or replace.
type CreateInput struct {
	ModuleType     string         `json:"module_type"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	Stages         []models.Stage `json:"stages"`
	DefaultSLADays int            `json:"default_sla_days"`
}

// CreateWorkflow validates and upserts the definition for a module type.
// A module type has exactly one definition; creating again replaces it.
func (s *Service) CreateWorkflow(ctx context.Context, in CreateInput) (*models.Definition, error) {
	d := &models.Definition{
		ID:             uuid.New(),
		ModuleType:     in.ModuleType,
		Name:           in.Name,
		Description:    in.Description,
		Stages:         in.Stages,
		DefaultSLADays: in.DefaultSLADays,
		UpdatedAt:      requestcontext.Now(ctx).UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	sort.Slice(d.Stages, func(i, j int) bool { return d.Stages[i].Order < d.Stages[j].Order })

	if err := s.definitions.Upsert(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist workflow definition")
	}
	s.logger.Info("workflow definition saved", "module_type", d.ModuleType, "stages", len(d.Stages))
	return d, nil
}

// UpdateWorkflow replaces the definition for an existing module type.
func (s *Service) UpdateWorkflow(ctx context.Context, moduleType string, in CreateInput) (*models.Definition, error) {
	if _, err := s.GetWorkflow(ctx, moduleType); err != nil {
		return nil, err
	}
	in.ModuleType = moduleType
	return s.CreateWorkflow(ctx, in)
}

// GetWorkflow returns the definition for a module type.
func (s *Service) GetWorkflow(ctx context.Context, moduleType string) (*models.Definition, error) {
	d, err := s.definitions.GetByModuleType(ctx, moduleType)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "no workflow defined for module type %q", moduleType)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load workflow definition")
	}
	return d, nil
}

// ListWorkflows returns all definitions ordered by module type.
func (s *Service) ListWorkflows(ctx context.Context) ([]*models.Definition, error) {
	defs, err := s.definitions.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list workflow definitions")
	}
	return defs, nil
}

// DeleteWorkflow removes a module type's definition. Stages already
// materialized onto protocols are untouched.
func (s *Service) DeleteWorkflow(ctx context.Context, moduleType string) error {
	err := s.definitions.Delete(ctx, moduleType)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "no workflow defined for module type %q", moduleType)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete workflow definition")
	}
	return nil
}

// ApplyWorkflowToProtocol materializes the module type's workflow onto a
// protocol. Applying twice is a no-op: the second application hits the
// (protocol, order) uniqueness guard and reports the stages already there.
// Returns the definition so callers can derive the protocol's SLA from it.
func (s *Service) ApplyWorkflowToProtocol(ctx context.Context, protocolID uuid.UUID, moduleType string) (*models.Definition, []*models.ProtocolStage, error) {
	d, err := s.GetWorkflow(ctx, moduleType)
	if err != nil {
		return nil, nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	stages := d.Materialize(protocolID, now)

	if err := s.stages.BulkCreate(ctx, stages); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			existing, listErr := s.stages.ListByProtocol(ctx, protocolID)
			if listErr != nil {
				return nil, nil, dErrors.Wrap(listErr, dErrors.CodeInternal, "load existing protocol stages")
			}
			s.logger.Debug("workflow already applied", "protocol_id", protocolID, "module_type", moduleType)
			return d, existing, nil
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "materialize workflow stages")
	}

	if s.metrics != nil {
		s.metrics.WorkflowsApplied.Inc()
	}
	s.logger.Info("workflow applied", "protocol_id", protocolID, "module_type", moduleType, "stages", len(stages))
	return d, stages, nil
}

// StagesForProtocol lists the stages materialized onto a protocol.
func (s *Service) StagesForProtocol(ctx context.Context, protocolID uuid.UUID) ([]*models.ProtocolStage, error) {
	stages, err := s.stages.ListByProtocol(ctx, protocolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list protocol stages")
	}
	return stages, nil
}

// ValidateStageConditions checks whether a protocol satisfies the
// requirements of the stage with the given order: every required document
// approved and every required action recorded. Read-only.
func (s *Service) ValidateStageConditions(ctx context.Context, protocolID uuid.UUID, moduleType string, order int) (*models.ValidationResult, error) {
	d, err := s.GetWorkflow(ctx, moduleType)
	if err != nil {
		return nil, err
	}
	stage, ok := d.StageByOrder(order)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "workflow for %q has no stage %d", moduleType, order)
	}

	docs, err := s.documents.ListByProtocol(ctx, protocolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list protocol documents")
	}
	approved := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.Status == models.DocumentApproved {
			approved[doc.DocumentType] = true
		}
	}

	actions, err := s.actions.ListByProtocol(ctx, protocolID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list protocol actions")
	}
	recorded := make(map[string]bool, len(actions))
	for _, a := range actions {
		recorded[a.Action] = true
	}

	result := &models.ValidationResult{Valid: true}
	for _, docType := range stage.RequiredDocuments {
		if !approved[docType] {
			result.Valid = false
			result.MissingItems = append(result.MissingItems, "document:"+docType)
		}
	}
	for _, action := range stage.RequiredActions {
		if !recorded[action] {
			result.Valid = false
			result.MissingItems = append(result.MissingItems, "action:"+action)
		}
	}
	return result, nil
}

// RecordAction records a named action on a protocol. Idempotent.
func (s *Service) RecordAction(ctx context.Context, protocolID uuid.UUID, action, actorRef string) error {
	if action == "" {
		return dErrors.New(dErrors.CodeValidation, "action name is required")
	}
	a := &models.Action{
		ID:         uuid.New(),
		ProtocolID: protocolID,
		Action:     action,
		ActorRef:   actorRef,
		CreatedAt:  requestcontext.Now(ctx).UTC(),
	}
	if err := s.actions.Record(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record protocol action")
	}
	return nil
}

// AttachDocument registers a document on a protocol in pending status.
func (s *Service) AttachDocument(ctx context.Context, protocolID uuid.UUID, documentType string) (*models.Document, error) {
	if documentType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document type is required")
	}
	d := &models.Document{
		ID:           uuid.New(),
		ProtocolID:   protocolID,
		DocumentType: documentType,
		Status:       "pending",
		CreatedAt:    requestcontext.Now(ctx).UTC(),
	}
	if err := s.documents.Create(ctx, d); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "attach document")
	}
	return d, nil
}

// SetDocumentStatus updates a document's review status.
func (s *Service) SetDocumentStatus(ctx context.Context, id uuid.UUID, status string) error {
	switch status {
	case "pending", models.DocumentApproved, "rejected":
	default:
		return dErrors.Newf(dErrors.CodeValidation, "unknown document status %q", status)
	}
	err := s.documents.UpdateStatus(ctx, id, status)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "document %s not found", id)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "update document status")
	}
	return nil
}

// Stats summarizes the configured workflows.
type Stats struct {
	Definitions  int            `json:"definitions"`
	StagesByType map[string]int `json:"stages_by_type"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Stats reports how many definitions exist and how many stages each one
// carries.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	defs, err := s.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		Definitions:  len(defs),
		StagesByType: make(map[string]int, len(defs)),
		UpdatedAt:    requestcontext.Now(ctx).UTC(),
	}
	for _, d := range defs {
		stats.StagesByType[d.ModuleType] = len(d.Stages)
	}
	return stats, nil
}
