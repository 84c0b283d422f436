package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microbus/pkg/client"
	"microbus/pkg/kafka"
	"microbus/pkg/logger"
	"microbus/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func bookingMessage(t *testing.T, eventType string, event model.BookingEvent) kafka.Message {
	t.Helper()
	return kafka.NewMessage().
		WithKey(event.Phone).
		WithEventType(eventType).
		WithSource("bookings").
		WithValue(event).
		Build()
}

func TestHandle_BookingCreated(t *testing.T) {
	var smsBody smsRequest
	var emailBody emailRequest
	smsCalls, emailCalls := 0, 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notify/sms":
			smsCalls++
			json.NewDecoder(r.Body).Decode(&smsBody)
		case "/notify/email":
			emailCalls++
			json.NewDecoder(r.Body).Decode(&emailBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

	event := model.BookingEvent{
		BookingID:   "64b0c8f1a2d3e4f5a6b7c8d9",
		Name:        "Ion Popescu",
		Phone:       "+40721234567",
		StartDate:   time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
		Purpose:     "excursie tineret",
		AdminEmails: []string{"admin@biserica.ro"},
	}

	if err := d.Handle(context.Background(), bookingMessage(t, model.EventBookingCreated, event)); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if smsCalls != 1 || emailCalls != 1 {
		t.Fatalf("calls: sms=%d email=%d, want 1 each", smsCalls, emailCalls)
	}
	if smsBody.To != "+40721234567" {
		t.Errorf("sms to = %q", smsBody.To)
	}
	if !strings.Contains(smsBody.Message, "10 septembrie 2026") {
		t.Errorf("sms message missing Romanian date: %q", smsBody.Message)
	}
	if len(emailBody.To) != 1 || emailBody.To[0] != "admin@biserica.ro" {
		t.Errorf("email to = %v", emailBody.To)
	}
	if !strings.Contains(emailBody.Text, "excursie tineret") {
		t.Errorf("email body missing purpose: %q", emailBody.Text)
	}
}

func TestHandle_BookingWithoutAdmins_SkipsEmail(t *testing.T) {
	emailCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/notify/email" {
			emailCalls++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

	event := model.BookingEvent{
		Phone:     "+40721234567",
		Name:      "Ion Popescu",
		StartDate: time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
	}

	if err := d.Handle(context.Background(), bookingMessage(t, model.EventBookingCancelled, event)); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if emailCalls != 0 {
		t.Errorf("email calls = %d, want 0", emailCalls)
	}
}

func TestHandle_PinIssued(t *testing.T) {
	var body smsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

	msg := kafka.NewMessage().
		WithKey("+40721234567").
		WithEventType(model.EventPinIssued).
		WithValue(model.PinEvent{Phone: "+40721234567", Name: "Maria", PIN: "4821"}).
		Build()

	if err := d.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !strings.Contains(body.Message, "4821") {
		t.Errorf("sms missing PIN: %q", body.Message)
	}
}

func TestHandle_GatewayErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantType      kafka.ErrorType
	}{
		{"server error is transient", http.StatusBadGateway, kafka.ErrorTypeTransient},
		{"client error is permanent", http.StatusBadRequest, kafka.ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

			msg := kafka.NewMessage().
				WithKey("+40721234567").
				WithEventType(model.EventPinIssued).
				WithValue(model.PinEvent{Phone: "+40721234567", PIN: "1234"}).
				Build()

			err := d.Handle(context.Background(), msg)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := kafka.ClassifyError(err); got != tt.wantType {
				t.Errorf("classification = %v, want %v", got, tt.wantType)
			}
		})
	}
}

func TestHandle_UnknownEventType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	}))
	defer server.Close()

	d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

	msg := kafka.NewMessage().
		WithKey("k").
		WithEventType("somebody.else").
		WithValue(map[string]string{}).
		Build()

	err := d.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Fatalf("unknown event must be permanent, got %v", err)
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	d := NewDispatcher(client.NewHttpClient("http://unreachable"), testLogger())

	msg := kafka.Message{
		Key:     "k",
		Value:   []byte("{not json"),
		Headers: map[string]string{kafka.HeaderEventType: model.EventPinIssued},
	}

	err := d.Handle(context.Background(), msg)
	if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
		t.Fatalf("malformed payload must be permanent, got %v", err)
	}
}

func TestHandle_IssueReported(t *testing.T) {
	var smsTo []string
	var emailBody emailRequest
	emailCalls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/notify/sms":
			var body smsRequest
			json.NewDecoder(r.Body).Decode(&body)
			smsTo = append(smsTo, body.To)
		case "/notify/email":
			emailCalls++
			json.NewDecoder(r.Body).Decode(&emailBody)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

	event := model.IssueEvent{
		IssueID:       "64b0c8f1a2d3e4f5a6b7c8d9",
		Title:         "Far spart",
		Description:   "Farul dreapta nu functioneaza",
		Severity:      model.SeverityUrgent,
		Location:      "Parcare biserica",
		ReporterName:  "Ion Popescu",
		ReporterPhone: "+40721234567",
		AdminPhones:   []string{"+40731111111", "+40732222222"},
		AdminEmails:   []string{"admin@biserica.ro"},
	}
	msg := kafka.NewMessage().
		WithKey(event.ReporterPhone).
		WithEventType(model.EventIssueReported).
		WithSource("fleet").
		WithValue(event).
		Build()

	if err := d.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(smsTo) != 2 || smsTo[0] != "+40731111111" || smsTo[1] != "+40732222222" {
		t.Errorf("sms recipients = %v", smsTo)
	}
	if emailCalls != 1 {
		t.Fatalf("email calls = %d, want 1", emailCalls)
	}
	if !strings.Contains(emailBody.Subject, "URGENT") {
		t.Errorf("email subject missing severity: %q", emailBody.Subject)
	}
	if !strings.Contains(emailBody.Text, "Farul dreapta nu functioneaza") {
		t.Errorf("email body missing description: %q", emailBody.Text)
	}
}

func TestHandle_IssueStatusChanged(t *testing.T) {
	tests := []struct {
		name  string
		event model.IssueStatusEvent
		want  string
	}{
		{
			name:  "in progress",
			event: model.IssueStatusEvent{Title: "Far spart", Status: model.IssueStatusInProgress, ReporterPhone: "+40721234567"},
			want:  `Problema "Far spart" a fost marcata ca in lucru`,
		},
		{
			name: "resolved with notes",
			event: model.IssueStatusEvent{
				Title:           "Far spart",
				Status:          model.IssueStatusResolved,
				ResolutionNotes: "Bec schimbat",
				ReporterPhone:   "+40721234567",
			},
			want: `Problema "Far spart" a fost marcata ca rezolvata. Nota: Bec schimbat`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body smsRequest
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/notify/sms" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				json.NewDecoder(r.Body).Decode(&body)
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			d := NewDispatcher(client.NewHttpClient(server.URL), testLogger())

			msg := kafka.NewMessage().
				WithKey(tt.event.ReporterPhone).
				WithEventType(model.EventIssueStatusChanged).
				WithSource("fleet").
				WithValue(tt.event).
				Build()

			if err := d.Handle(context.Background(), msg); err != nil {
				t.Fatalf("Handle returned error: %v", err)
			}
			if body.To != "+40721234567" {
				t.Errorf("sms to = %q", body.To)
			}
			if body.Message != tt.want {
				t.Errorf("sms message = %q, want %q", body.Message, tt.want)
			}
		})
	}
}
