package handler

import "github.com/julienschmidt/httprouter"

// Handler bundles the auth and user admin routes behind one registration
// point for the application wiring.
type Handler struct {
	auth  *AuthHandler
	users *UserHandler
}

func NewHandler(auth *AuthHandler, users *UserHandler) *Handler {
	return &Handler{auth: auth, users: users}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	h.auth.RegisterRoutes(router)
	h.users.RegisterRoutes(router)
}
