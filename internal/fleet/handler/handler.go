package handler

import "github.com/julienschmidt/httprouter"

// Handler bundles the issue and maintenance routes behind one registration
// point for the application wiring.
type Handler struct {
	issues      *IssueHandler
	maintenance *MaintenanceHandler
}

func NewHandler(issues *IssueHandler, maintenance *MaintenanceHandler) *Handler {
	return &Handler{issues: issues, maintenance: maintenance}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	h.issues.RegisterRoutes(router)
	h.maintenance.RegisterRoutes(router)
}
