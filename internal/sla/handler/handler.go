// Package handler exposes SLA tracking over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civicdesk/internal/sla/models"
	"civicdesk/internal/sla/service"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
)

// Service is the SLA surface the handler depends on.
type Service interface {
	Create(ctx context.Context, protocolID uuid.UUID, start *time.Time, workingDays int) (*models.SLA, error)
	Get(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error)
	Pause(ctx context.Context, protocolID uuid.UUID, reason string) (*models.SLA, error)
	Resume(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error)
	Complete(ctx context.Context, protocolID uuid.UUID) (*models.SLA, error)
	Delete(ctx context.Context, protocolID uuid.UUID) error
	Overdue(ctx context.Context) ([]*models.SLA, error)
	NearDue(ctx context.Context, thresholdDays int) ([]*models.SLA, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

type Handler struct {
	slas   Service
	logger *slog.Logger
}

func New(slas Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{slas: slas, logger: logger}
}

// Register mounts the SLA routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/slas", func(r chi.Router) {
		r.Get("/overdue", h.handleOverdue)
		r.Get("/near-due", h.handleNearDue)
		r.Get("/stats", h.handleStats)
		r.Route("/{protocolID}", func(r chi.Router) {
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleGet)
			r.Post("/pause", h.handlePause)
			r.Post("/resume", h.handleResume)
			r.Post("/complete", h.handleComplete)
			r.Delete("/", h.handleDelete)
		})
	})
}

func protocolID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "protocolID"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid protocol id")
	}
	return id, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body struct {
		StartDate   *time.Time `json:"start_date"`
		WorkingDays int        `json:"working_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sla, err := h.slas.Create(r.Context(), id, body.StartDate, body.WorkingDays)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sla)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sla, err := h.slas.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sla)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sla, err := h.slas.Pause(r.Context(), id, body.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sla)
}

func (h *Handler) handleResume(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sla, err := h.slas.Resume(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sla)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sla, err := h.slas.Complete(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sla)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := protocolID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.slas.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleOverdue(w http.ResponseWriter, r *http.Request) {
	slas, err := h.slas.Overdue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"slas": slas})
}

func (h *Handler) handleNearDue(w http.ResponseWriter, r *http.Request) {
	threshold := 3
	if raw := r.URL.Query().Get("threshold_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid threshold_days"))
			return
		}
		threshold = parsed
	}

	slas, err := h.slas.NearDue(r.Context(), threshold)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"slas": slas})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.slas.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
