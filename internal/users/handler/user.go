package handler

import (
	"encoding/json"
	"net/http"

	"microbus/internal/users/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/logger"
	"microbus/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service   service.UserService
	jwtSecret string
	log       *logger.Logger
}

func NewUserHandler(service service.UserService, jwtSecret string, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/users", auth.RequireAuth(h.jwtSecret, h.List))
	router.POST("/users", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.Create)))
	router.DELETE("/users/:id", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.Delete)))
	router.GET("/admin/access-logs", auth.RequireAuth(h.jwtSecret, auth.RequireAdmin(h.AccessLogs)))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, users); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	created, err := h.service.Create(r.Context(), &user)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) AccessLogs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := h.service.AccessLogs(r.Context())
	if err != nil {
		h.writeError(w, "AccessLogs", err)
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "AccessLogs", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
