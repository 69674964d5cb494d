// Package handler exposes workflow definition management and stage
// validation over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"civicdesk/internal/platform/middleware"
	"civicdesk/internal/workflow/models"
	"civicdesk/internal/workflow/service"
	dErrors "civicdesk/pkg/domain-errors"
	"civicdesk/pkg/platform/httputil"
	"civicdesk/pkg/requestcontext"
)

// Service is the workflow surface the handler depends on.
type Service interface {
	CreateWorkflow(ctx context.Context, in service.CreateInput) (*models.Definition, error)
	UpdateWorkflow(ctx context.Context, moduleType string, in service.CreateInput) (*models.Definition, error)
	GetWorkflow(ctx context.Context, moduleType string) (*models.Definition, error)
	ListWorkflows(ctx context.Context) ([]*models.Definition, error)
	DeleteWorkflow(ctx context.Context, moduleType string) error
	ValidateStageConditions(ctx context.Context, protocolID uuid.UUID, moduleType string, order int) (*models.ValidationResult, error)
	RecordAction(ctx context.Context, protocolID uuid.UUID, action, actorRef string) error
	AttachDocument(ctx context.Context, protocolID uuid.UUID, documentType string) (*models.Document, error)
	SetDocumentStatus(ctx context.Context, id uuid.UUID, status string) error
	Stats(ctx context.Context) (*service.Stats, error)
}

type Handler struct {
	workflows Service
	logger    *slog.Logger
}

func New(workflows Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{workflows: workflows, logger: logger}
}

// Register mounts the workflow routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/workflows", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/stats", h.handleStats)
		r.Route("/{moduleType}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
		})
	})
	// Flat registrations so the protocol handler can share the
	// /protocols/{protocolRef} subtree.
	r.Get("/protocols/{protocolRef}/stages/{order}/validation", h.handleValidateStage)
	r.Post("/protocols/{protocolRef}/actions", h.handleRecordAction)
	r.Post("/protocols/{protocolRef}/documents", h.handleAttachDocument)
	r.Patch("/documents/{documentID}", h.handleSetDocumentStatus)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.workflows.CreateWorkflow(r.Context(), in)
	if err != nil {
		h.logger.Warn("workflow creation failed", "request_id", middleware.GetRequestID(r.Context()), "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.workflows.UpdateWorkflow(r.Context(), chi.URLParam(r, "moduleType"), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.workflows.GetWorkflow(r.Context(), chi.URLParam(r, "moduleType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	defs, err := h.workflows.ListWorkflows(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"workflows": defs})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.workflows.DeleteWorkflow(r.Context(), chi.URLParam(r, "moduleType")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.workflows.Stats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleValidateStage(w http.ResponseWriter, r *http.Request) {
	protocolID, err := uuid.Parse(chi.URLParam(r, "protocolRef"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid protocol id"))
		return
	}
	order, err := strconv.Atoi(chi.URLParam(r, "order"))
	if err != nil || order < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid stage order"))
		return
	}
	moduleType := r.URL.Query().Get("module_type")
	if moduleType == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "module_type query parameter is required"))
		return
	}

	res, err := h.workflows.ValidateStageConditions(r.Context(), protocolID, moduleType, order)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleRecordAction(w http.ResponseWriter, r *http.Request) {
	protocolID, err := uuid.Parse(chi.URLParam(r, "protocolRef"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid protocol id"))
		return
	}
	var body struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor := requestcontext.UserID(r.Context())
	if err := h.workflows.RecordAction(r.Context(), protocolID, body.Action, actor); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	protocolID, err := uuid.Parse(chi.URLParam(r, "protocolRef"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid protocol id"))
		return
	}
	var body struct {
		DocumentType string `json:"document_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	doc, err := h.workflows.AttachDocument(r.Context(), protocolID, body.DocumentType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (h *Handler) handleSetDocumentStatus(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid document id"))
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.workflows.SetDocumentStatus(r.Context(), docID, body.Status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
