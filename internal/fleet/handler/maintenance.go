package handler

import (
	"encoding/json"
	"net/http"

	"microbus/internal/fleet/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type MaintenanceHandler struct {
	service   service.MaintenanceService
	jwtSecret string
	log       *logger.Logger
}

func NewMaintenanceHandler(service service.MaintenanceService, jwtSecret string, log *logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *MaintenanceHandler) RegisterRoutes(router *httprouter.Router) {
	// Status is public: the dashboard shows document expiry before login.
	router.GET("/maintenance/status", h.Status)
	router.POST("/maintenance/update", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.Update)))
	router.PATCH("/maintenance/update", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.Update)))
}

type updateMaintenanceRequest struct {
	Type       string `json:"type"`
	ExpiryDate string `json:"expiry_date"`
}

func (h *MaintenanceHandler) Status(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	docs, err := h.service.Status(r.Context())
	if err != nil {
		h.writeError(w, "Status", err)
		return
	}

	if err := httputil.WriteSuccess(w, docs); err != nil {
		h.log.Error("failed to write success response", "handler", "Status", "error", err)
	}
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Update", apperrors.Unauthorized("Missing authentication"))
		return
	}

	var req updateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	doc, err := h.service.Update(r.Context(), identity.Phone, req.Type, req.ExpiryDate)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, doc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *MaintenanceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
