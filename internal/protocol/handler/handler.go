// Package handler exposes protocol dispatch and lifecycle decisions over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civicdesk/internal/platform/middleware"
	"civicdesk/internal/protocol/models"
	"civicdesk/internal/protocol/service"
	"civicdesk/internal/protocol/store"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
)

// Service is the protocol surface the handler depends on.
type Service interface {
	DispatchRequest(ctx context.Context, in service.DispatchInput) (*service.DispatchResult, error)
	GetByNumber(ctx context.Context, number string) (*models.Protocol, error)
	History(ctx context.Context, number string) ([]*models.HistoryEntry, error)
	Approve(ctx context.Context, number, comment string) (*models.Protocol, error)
	Reject(ctx context.Context, number, reason string) (*models.Protocol, error)
	ListByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error)
	PendingByModule(ctx context.Context, moduleType string) ([]*models.Protocol, error)
	Stats(ctx context.Context) (*store.Stats, error)
}

type Handler struct {
	protocols Service
	logger    *slog.Logger
}

func New(protocols Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{protocols: protocols, logger: logger}
}

// Register mounts the protocol routes. Registrations are flat because the
// workflow handler shares the /protocols/{protocolRef} subtree.
func (h *Handler) Register(r chi.Router) {
	r.Post("/protocols", h.handleDispatch)
	r.Get("/protocols", h.handleList)
	r.Get("/protocols/stats", h.handleStats)
	r.Get("/protocols/{protocolRef}", h.handleGet)
	r.Get("/protocols/{protocolRef}/history", h.handleHistory)
	r.Post("/protocols/{protocolRef}/approve", h.handleApprove)
	r.Post("/protocols/{protocolRef}/reject", h.handleReject)
}

func (h *Handler) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var in service.DispatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.protocols.DispatchRequest(r.Context(), in)
	if err != nil {
		h.logger.Warn("dispatch failed",
			"module_type", in.ModuleType,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	protocol, err := h.protocols.GetByNumber(r.Context(), chi.URLParam(r, "protocolRef"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, protocol)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.protocols.History(r.Context(), chi.URLParam(r, "protocolRef"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	protocol, err := h.protocols.Approve(r.Context(), chi.URLParam(r, "protocolRef"), body.Comment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, protocol)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	protocol, err := h.protocols.Reject(r.Context(), chi.URLParam(r, "protocolRef"), body.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, protocol)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	moduleType := r.URL.Query().Get("module_type")

	var (
		protocols []*models.Protocol
		err       error
	)
	if r.URL.Query().Get("pending") == "true" {
		protocols, err = h.protocols.PendingByModule(r.Context(), moduleType)
	} else {
		protocols, err = h.protocols.ListByModule(r.Context(), moduleType)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"protocols": protocols})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.protocols.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
