package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microbus/internal/bookings/service"
	"microbus/pkg/auth"
	apperrors "microbus/pkg/errors"
	"microbus/pkg/logger"
	"microbus/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const testSecret = "test-jwt-secret"

type mockBookingService struct {
	createFn func(ctx context.Context, requesterPhone string, booking *model.Booking) (*model.Booking, error)
	cancelFn func(ctx context.Context, id string, requesterPhone string) error
	listFn   func(ctx context.Context) ([]*model.Booking, error)
}

func (m *mockBookingService) Create(ctx context.Context, requesterPhone string, booking *model.Booking) (*model.Booking, error) {
	return m.createFn(ctx, requesterPhone, booking)
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, requesterPhone string) error {
	return m.cancelFn(ctx, id, requesterPhone)
}

func (m *mockBookingService) List(ctx context.Context) ([]*model.Booking, error) {
	return m.listFn(ctx)
}

func newRouter(svc service.BookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	h := NewBookingHandler(svc, testSecret, log)
	router := httprouter.New()
	h.RegisterRoutes(router)
	return router
}

func bearerToken(t *testing.T, phone string) string {
	t.Helper()
	token, _, err := auth.NewSessionToken(testSecret, &model.User{
		ID:    "507f1f77bcf86cd799439011",
		Name:  "Ion Popescu",
		Phone: phone,
		Role:  model.RoleUser,
	}, time.Hour)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return "Bearer " + token
}

func TestList_Public(t *testing.T) {
	svc := &mockBookingService{
		listFn: func(ctx context.Context) ([]*model.Booking, error) {
			return []*model.Booking{{ID: "a", Phone: "+40721234567"}}, nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestCreate_RequiresAuth(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, phone string, booking *model.Booking) (*model.Booking, error) {
			t.Fatal("service must not be called without auth")
			return nil, nil
		},
	}
	router := newRouter(svc)

	body := `{"start_date":"2026-09-10","end_date":"2026-09-12"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestCreate_ParsesDates(t *testing.T) {
	var gotStart, gotEnd time.Time
	svc := &mockBookingService{
		createFn: func(ctx context.Context, phone string, booking *model.Booking) (*model.Booking, error) {
			gotStart, gotEnd = booking.StartDate, booking.EndDate
			booking.ID = "64b0c8f1a2d3e4f5a6b7c8d9"
			return booking, nil
		},
	}
	router := newRouter(svc)

	body := `{"start_date":"2026-09-10","end_date":"2026-09-12T08:30:00Z","purpose":"drum la munte"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "+40721234567"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	wantStart := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.September, 12, 8, 30, 0, 0, time.UTC)
	if !gotStart.Equal(wantStart) {
		t.Errorf("start = %v, want %v", gotStart, wantStart)
	}
	if !gotEnd.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", gotEnd, wantEnd)
	}
}

func TestCreate_BadDate(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, phone string, booking *model.Booking) (*model.Booking, error) {
			t.Fatal("service must not be called for malformed dates")
			return nil, nil
		},
	}
	router := newRouter(svc)

	body := `{"start_date":"10.09.2026","end_date":"2026-09-12"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "+40721234567"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreate_ConflictMapsTo409(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, phone string, booking *model.Booking) (*model.Booking, error) {
			return nil, apperrors.Conflict("Requested dates overlap with an existing booking")
		},
	}
	router := newRouter(svc)

	body := `{"start_date":"2026-09-10","end_date":"2026-09-12"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "+40721234567"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp["error"] == "" {
		t.Error("expected error message in response")
	}
}

func TestCancel_PassesIdentityPhone(t *testing.T) {
	var gotID, gotPhone string
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, id string, phone string) error {
			gotID, gotPhone = id, phone
			return nil
		},
	}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/bookings/64b0c8f1a2d3e4f5a6b7c8d9", nil)
	req.Header.Set("Authorization", bearerToken(t, "+40721234567"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotID != "64b0c8f1a2d3e4f5a6b7c8d9" {
		t.Errorf("id = %q", gotID)
	}
	if gotPhone != "+40721234567" {
		t.Errorf("phone = %q", gotPhone)
	}
}
