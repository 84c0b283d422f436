package notifier

import (
	"context"
	"fmt"
	"net/http"

	"microbus/pkg/client"
	"microbus/pkg/kafka"
	"microbus/pkg/logger"
	"microbus/pkg/model"
)

// Dispatcher turns queued events into calls against the delivery gateway.
// It is the consumer side of the fire-and-forget pipeline: publishers never
// wait for delivery, the dispatcher retries transient failures and parks
// the rest in the DLQ.
type Dispatcher struct {
	gateway *client.HttpClient
	log     *logger.Logger
}

func NewDispatcher(gateway *client.HttpClient, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		gateway: gateway,
		log:     log,
	}
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type emailRequest struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Handle routes one consumed message by its event-type header.
func (d *Dispatcher) Handle(ctx context.Context, msg kafka.Message) error {
	eventType := msg.GetEventType()

	d.log.Info("Dispatching notification",
		"event_id", msg.GetEventID(),
		"event_type", eventType,
	)

	switch eventType {
	case model.EventBookingCreated:
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode booking event", err)
		}
		return d.dispatchBooking(ctx, &event,
			bookingCreatedSMS(&event),
			bookingCreatedEmailSubject(&event),
			bookingCreatedEmailBody(&event),
		)

	case model.EventBookingCancelled:
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode booking event", err)
		}
		return d.dispatchBooking(ctx, &event,
			bookingCancelledSMS(&event),
			bookingCancelledEmailSubject(&event),
			bookingCancelledEmailBody(&event),
		)

	case model.EventIssueReported:
		var event model.IssueEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode issue event", err)
		}
		return d.dispatchIssueReported(ctx, &event)

	case model.EventIssueStatusChanged:
		var event model.IssueStatusEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode issue status event", err)
		}
		return d.sendSMS(ctx, event.ReporterPhone, issueStatusSMS(&event))

	case model.EventPinIssued:
		var event model.PinEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode pin event", err)
		}
		return d.sendSMS(ctx, event.Phone, pinSMS(&event))

	case model.EventUserWelcome:
		var event model.WelcomeEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("failed to decode welcome event", err)
		}
		return d.sendSMS(ctx, event.Phone, welcomeSMS(&event))

	default:
		return kafka.NewPermanentError(fmt.Sprintf("unknown event type: %s", eventType), nil)
	}
}

// dispatchBooking sends the owner SMS and, when admin recipients exist,
// one batch email. The SMS failing fails the whole message so the retry
// covers both; a duplicate admin email on redelivery is acceptable.
func (d *Dispatcher) dispatchBooking(ctx context.Context, event *model.BookingEvent, sms, subject, body string) error {
	if err := d.sendSMS(ctx, event.Phone, sms); err != nil {
		return err
	}

	if len(event.AdminEmails) == 0 {
		return nil
	}

	return d.sendEmail(ctx, event.AdminEmails, subject, body)
}

// dispatchIssueReported texts every admin and sends one batch email. The
// same ordering rule as bookings applies: a failed SMS fails the message so
// the retry covers everything after it.
func (d *Dispatcher) dispatchIssueReported(ctx context.Context, event *model.IssueEvent) error {
	sms := issueReportedSMS(event)
	for _, phone := range event.AdminPhones {
		if err := d.sendSMS(ctx, phone, sms); err != nil {
			return err
		}
	}

	if len(event.AdminEmails) == 0 {
		return nil
	}

	return d.sendEmail(ctx, event.AdminEmails, issueReportedEmailSubject(event), issueReportedEmailBody(event))
}

func (d *Dispatcher) sendSMS(ctx context.Context, to, message string) error {
	resp, err := d.gateway.POST(ctx, "/notify/sms", smsRequest{To: to, Message: message})
	if err != nil {
		return kafka.NewTransientError("sms gateway unreachable", err)
	}
	return classifyStatus("sms", resp.StatusCode)
}

func (d *Dispatcher) sendEmail(ctx context.Context, to []string, subject, text string) error {
	resp, err := d.gateway.POST(ctx, "/notify/email", emailRequest{To: to, Subject: subject, Text: text})
	if err != nil {
		return kafka.NewTransientError("email gateway unreachable", err)
	}
	return classifyStatus("email", resp.StatusCode)
}

// classifyStatus maps gateway responses to retry behavior: 5xx is worth
// retrying, 4xx means the request itself is bad and belongs in the DLQ.
func classifyStatus(channel string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= http.StatusInternalServerError:
		return kafka.NewTransientError(fmt.Sprintf("%s gateway returned %d", channel, status), nil)
	default:
		return kafka.NewPermanentError(fmt.Sprintf("%s gateway rejected request with %d", channel, status), nil)
	}
}
