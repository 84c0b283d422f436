package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"microbus/internal/bookings/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	httputil "microbus/pkg/http"
	"microbus/pkg/logger"
	"microbus/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service   service.BookingService
	jwtSecret string
	log       *logger.Logger
}

func NewBookingHandler(service service.BookingService, jwtSecret string, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/bookings", h.List)
	router.POST("/bookings", auth.RequireAuth(h.jwtSecret, h.Create))
	router.DELETE("/bookings/:id", auth.RequireAuth(h.jwtSecret, h.Cancel))
}

type createBookingRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Purpose   string `json:"purpose"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Missing authentication"))
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid start_date: expected RFC3339 or YYYY-MM-DD"))
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid end_date: expected RFC3339 or YYYY-MM-DD"))
		return
	}

	booking := &model.Booking{
		StartDate: startDate,
		EndDate:   endDate,
		Purpose:   req.Purpose,
	}

	created, err := h.service.Create(r.Context(), identity.Phone, booking)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bookings, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Missing authentication"))
		return
	}

	id := ps.ByName("id")
	if err := h.service.Cancel(r.Context(), id, identity.Phone); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"message": "Booking cancelled"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}

// parseDate accepts RFC3339 timestamps and bare YYYY-MM-DD dates; bare
// dates are interpreted as midnight UTC.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
