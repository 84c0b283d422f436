package handler

import (
	"encoding/json"
	"net/http"

	"microbus/internal/fleet/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/logger"
	"microbus/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type IssueHandler struct {
	service   service.IssueService
	jwtSecret string
	log       *logger.Logger
}

func NewIssueHandler(service service.IssueService, jwtSecret string, log *logger.Logger) *IssueHandler {
	return &IssueHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *IssueHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/issues", auth.RequireAuth(h.jwtSecret, h.List))
	router.POST("/issues", auth.RequireAuth(h.jwtSecret, h.Report))
	router.PATCH("/issues/:id", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.SetStatus)))
	router.DELETE("/issues/:id", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.Delete)))
}

type reportIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
}

type setIssueStatusRequest struct {
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes"`
}

func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	issues, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, issues); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *IssueHandler) Report(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Report", apperrors.Unauthorized("Missing authentication"))
		return
	}

	var req reportIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Report", apperrors.InvalidInput("Invalid request body"))
		return
	}

	issue := &model.Issue{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Location:    req.Location,
	}

	reported, err := h.service.Report(r.Context(), identity.Phone, issue)
	if err != nil {
		h.writeError(w, "Report", err)
		return
	}

	if err := httputil.WriteCreated(w, reported); err != nil {
		h.log.Error("failed to write created response", "handler", "Report", "error", err)
	}
}

func (h *IssueHandler) SetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "SetStatus", apperrors.Unauthorized("Missing authentication"))
		return
	}

	var req setIssueStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SetStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	id := ps.ByName("id")
	if err := h.service.SetStatus(r.Context(), id, identity.Phone, req.Status, req.ResolutionNotes); err != nil {
		h.writeError(w, "SetStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"message": "Issue status updated"}); err != nil {
		h.log.Error("failed to write success response", "handler", "SetStatus", "error", err)
	}
}

func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"message": "Issue deleted"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *IssueHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
