package handler

import (
	"encoding/json"
	"net/http"

	"microbus/internal/users/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service   service.AuthService
	jwtSecret string
	log       *logger.Logger
}

func NewAuthHandler(service service.AuthService, jwtSecret string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/pin/request-pin", h.RequestPin)
	router.POST("/pincheck/validate-pin", h.ValidatePin)
	router.GET("/auth/user-details", auth.RequireAuth(h.jwtSecret, h.UserDetails))
}

type requestPinRequest struct {
	Phone string `json:"phone"`
}

type validatePinRequest struct {
	Phone string `json:"phone"`
	Pin   string `json:"pin"`
}

func (h *AuthHandler) RequestPin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req requestPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "RequestPin", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.RequestPin(r.Context(), req.Phone); err != nil {
		h.writeError(w, "RequestPin", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"message": "PIN sent via SMS"}); err != nil {
		h.log.Error("failed to write success response", "handler", "RequestPin", "error", err)
	}
}

func (h *AuthHandler) ValidatePin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ValidatePin", apperrors.InvalidInput("Invalid request body"))
		return
	}

	session, err := h.service.ValidatePin(r.Context(), req.Phone, req.Pin, r.UserAgent())
	if err != nil {
		h.writeError(w, "ValidatePin", err)
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidatePin", "error", err)
	}
}

func (h *AuthHandler) UserDetails(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "UserDetails", apperrors.Unauthorized("Missing authentication"))
		return
	}

	user, err := h.service.UserDetails(r.Context(), identity.Phone)
	if err != nil {
		h.writeError(w, "UserDetails", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "UserDetails", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
