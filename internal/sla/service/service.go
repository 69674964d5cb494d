// Package service implements SLA lifecycle operations and the periodic
// status refresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"civicdesk/internal/audit"
	"civicdesk/internal/platform/metrics"
	"civicdesk/internal/sla/models"
	"civicdesk/internal/sla/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/sentinel"
	"civicdesk/pkg/requestcontext"
)

// Service owns SLA records. One per protocol; day-granular arithmetic lives
// on the model, orchestration and persistence here.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   audit.Publisher
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

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts an SLA for a protocol. start defaults to now; a protocol
// can only carry one SLA.
func (s *Service) Create(ctx context.Context, protocolID uuid.UUID, start *time.Time, workingDays int) (*models.SLA, error) {
	now := requestcontext.Now(ctx)
	startAt := now
	if start != nil {
		startAt = *start
	}

	sla, err := models.New(protocolID, startAt, workingDays, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, sla); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "protocol %s already has an SLA", protocolID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist SLA")
	}

	if s.metrics != nil {
		s.metrics.SLAsCreated.Inc()
	}
	s.publish(ctx, audit.EventSLACreated, protocolID,
		fmt.Sprintf("working_days=%d expected_end=%s", sla.WorkingDays, sla.ExpectedEndDate.Format("2006-01-02")))
	return sla, nil
}

// Get returns a protocol's SLA.
func (s *Service) Get(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error) {
	sla, err := s.store.GetByProtocol(ctx, protocolID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "protocol %s has no SLA", protocolID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load SLA")
	}
	return sla, nil
}

// Pause stops the SLA clock for a protocol.
func (s *Service) Pause(ctx context.Context, protocolID uuid.UUID, reason string) (*models.SLA, error) {
	return s.mutate(ctx, protocolID, audit.EventSLAPaused, func(sla *models.SLA, now time.Time) error {
		return sla.Pause(reason, now)
	})
}

// Resume restarts a paused SLA, shifting the deadline by the days paused.
func (s *Service) Resume(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error) {
	return s.mutate(ctx, protocolID, audit.EventSLAResumed, func(sla *models.SLA, now time.Time) error {
		return sla.Resume(now)
	})
}

// Complete closes the SLA. Terminal.
func (s *Service) Complete(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error) {
	return s.mutate(ctx, protocolID, audit.EventSLACompleted, func(sla *models.SLA, now time.Time) error {
		return sla.Complete(now)
	})
}

func (s *Service) mutate(ctx context.Context, protocolID uuid.UUID, event audit.EventType, apply func(*models.SLA, time.Time) error) (*models.SLA, error) {
	sla, err := s.Get(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if err := apply(sla, now); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, sla); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist SLA update")
	}
	s.publish(ctx, event, protocolID,
		fmt.Sprintf("expected_end=%s paused=%t", sla.ExpectedEndDate.Format("2006-01-02"), sla.IsPaused))
	return sla, nil
}

// Delete removes a protocol's SLA.
func (s *Service) Delete(ctx context.Context, protocolID uuid.UUID) error {
	err := s.store.DeleteByProtocol(ctx, protocolID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "protocol %s has no SLA", protocolID)
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete SLA")
	}
	return nil
}

// UpdateStatuses refreshes the overdue standing of every active SLA.
// Idempotent: unchanged SLAs are not written back. Returns how many SLAs
// changed.
func (s *Service) UpdateStatuses(ctx context.Context) (int, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "list active SLAs")
	}

	now := requestcontext.Now(ctx)
	changed := 0
	overdue := 0
	for _, sla := range active {
		if sla.Refresh(now) {
			if err := s.store.Update(ctx, sla); err != nil {
				return changed, dErrors.Wrap(err, dErrors.CodeInternal, "persist SLA refresh")
			}
			changed++
		}
		if sla.IsOverdue {
			overdue++
		}
	}
	if s.metrics != nil {
		s.metrics.SLAOverdue.Set(float64(overdue))
	}
	return changed, nil
}

// Overdue lists active SLAs past their deadline as of now.
func (s *Service) Overdue(ctx context.Context) ([]*models.SLA, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list active SLAs")
	}
	now := requestcontext.Now(ctx)
	var out []*models.SLA
	for _, sla := range active {
		sla.Refresh(now)
		if sla.IsOverdue {
			out = append(out, sla)
		}
	}
	return out, nil
}

// NearDue lists active SLAs whose deadline falls within thresholdDays.
func (s *Service) NearDue(ctx context.Context, thresholdDays int) ([]*models.SLA, error) {
	if thresholdDays < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "threshold days cannot be negative")
	}
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list active SLAs")
	}
	now := requestcontext.Now(ctx)
	var out []*models.SLA
	for _, sla := range active {
		if sla.DueWithin(thresholdDays, now) {
			out = append(out, sla)
		}
	}
	return out, nil
}

// Stats summarizes SLA compliance.
type Stats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Paused         int     `json:"paused"`
	Completed      int     `json:"completed"`
	Overdue        int     `json:"overdue"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// Stats reports counts and the share of completed SLAs that met their
// deadline.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list SLAs")
	}

	now := requestcontext.Now(ctx)
	stats := &Stats{Total: len(all)}
	onTime := 0
	for _, sla := range all {
		switch {
		case sla.Terminal():
			stats.Completed++
			if sla.CompletedOnTime() {
				onTime++
			}
		case sla.IsPaused:
			stats.Paused++
		default:
			stats.Active++
			sla.Refresh(now)
		}
		if sla.IsOverdue {
			stats.Overdue++
		}
	}
	if stats.Completed > 0 {
		stats.ComplianceRate = float64(onTime) / float64(stats.Completed)
	}
	return stats, nil
}

// StartRefresher runs UpdateStatuses on a ticker until ctx is cancelled.
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				changed, err := s.UpdateStatuses(ctx)
				if err != nil {
					s.logger.Error("SLA refresh failed", "error", err)
					continue
				}
				if changed > 0 {
					s.logger.Info("SLA refresh", "updated", changed)
				}
			}
		}
	}()
}

func (s *Service) publish(ctx context.Context, event audit.EventType, protocolID uuid.UUID, detail string) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		Type:      event,
		Timestamp: requestcontext.Now(ctx).UTC(),
		ActorRef:  requestcontext.UserID(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    "protocol_id=" + protocolID.String() + " " + detail,
	})
	if err != nil {
		s.logger.Warn("audit emit failed", "event", event, "error", err)
	}
}
