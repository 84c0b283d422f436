package validator

import (
	"strings"
	"testing"
	"time"

	"microbus/pkg/logger"
	"microbus/pkg/model"
)

func newValidator() *BookingValidator {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	return &model.Booking{
		UserID:    "507f1f77bcf86cd799439011",
		Name:      "Maria Ionescu",
		Phone:     "+40721234567",
		StartDate: time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		Status:    model.StatusConfirmed,
	}
}

func TestValidate_AcceptsValidBooking(t *testing.T) {
	v := newValidator()
	if err := v.Validate(validBooking()); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidate_SingleDayBooking(t *testing.T) {
	v := newValidator()
	b := validBooking()
	b.EndDate = b.StartDate

	if err := v.Validate(b); err != nil {
		t.Fatalf("single-day booking should be valid, got %v", err)
	}
}

func TestValidate_EndBeforeStart(t *testing.T) {
	v := newValidator()
	b := validBooking()
	b.StartDate, b.EndDate = b.EndDate, b.StartDate

	err := v.Validate(b)
	if err == nil {
		t.Fatal("expected error for end before start")
	}
	if !strings.Contains(err.Error(), "end_date") {
		t.Errorf("error should mention end_date, got %q", err.Error())
	}
}

func TestValidate_MissingPhone(t *testing.T) {
	v := newValidator()
	b := validBooking()
	b.Phone = ""

	if err := v.Validate(b); err == nil {
		t.Fatal("expected error for missing phone")
	}
}

func TestValidate_PurposeTooLong(t *testing.T) {
	v := newValidator()
	b := validBooking()
	b.Purpose = strings.Repeat("x", 501)

	if err := v.Validate(b); err == nil {
		t.Fatal("expected error for oversized purpose")
	}
}

func TestValidate_BadStatus(t *testing.T) {
	v := newValidator()
	b := validBooking()
	b.Status = "pending"

	if err := v.Validate(b); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
