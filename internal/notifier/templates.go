package notifier

import (
	"fmt"
	"strings"
	"time"

	"microbus/pkg/model"
)

// Outbound texts are in Romanian, matching the congregation's language.

var romanianMonths = [...]string{
	"ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
	"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie",
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), romanianMonths[t.Month()-1], t.Year())
}

func formatRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.Month() == end.Month() && start.Day() == end.Day() {
		return formatDate(start)
	}
	return fmt.Sprintf("%s - %s", formatDate(start), formatDate(end))
}

func bookingCreatedSMS(e *model.BookingEvent) string {
	return fmt.Sprintf(
		"Rezervarea microbuzului pentru %s a fost confirmata. Multumim, %s!",
		formatRange(e.StartDate, e.EndDate), e.Name,
	)
}

func bookingCreatedEmailSubject(e *model.BookingEvent) string {
	return fmt.Sprintf("Rezervare noua: %s", formatRange(e.StartDate, e.EndDate))
}

func bookingCreatedEmailBody(e *model.BookingEvent) string {
	body := fmt.Sprintf(
		"%s (%s) a rezervat microbuzul pentru %s.",
		e.Name, e.Phone, formatRange(e.StartDate, e.EndDate),
	)
	if e.Purpose != "" {
		body += fmt.Sprintf(" Scop: %s.", e.Purpose)
	}
	return body
}

func bookingCancelledSMS(e *model.BookingEvent) string {
	return fmt.Sprintf(
		"Rezervarea microbuzului pentru %s a fost anulata.",
		formatRange(e.StartDate, e.EndDate),
	)
}

func bookingCancelledEmailSubject(e *model.BookingEvent) string {
	return fmt.Sprintf("Rezervare anulata: %s", formatRange(e.StartDate, e.EndDate))
}

func bookingCancelledEmailBody(e *model.BookingEvent) string {
	return fmt.Sprintf(
		"Rezervarea facuta de %s (%s) pentru %s a fost anulata.",
		e.Name, e.Phone, formatRange(e.StartDate, e.EndDate),
	)
}

func issueReportedSMS(e *model.IssueEvent) string {
	return fmt.Sprintf(
		"%s a raportat o problema noua: %s. Severitate: %s",
		e.ReporterName, e.Title, e.Severity,
	)
}

func issueReportedEmailSubject(e *model.IssueEvent) string {
	return fmt.Sprintf("Problema noua: %s [%s]", e.Title, strings.ToUpper(e.Severity))
}

func issueReportedEmailBody(e *model.IssueEvent) string {
	return fmt.Sprintf(
		"Titlu: %s\nDescriere: %s\nSeveritate: %s\nLocatie: %s\n\nRaportat de %s (%s).",
		e.Title, e.Description, e.Severity, e.Location,
		e.ReporterName, e.ReporterPhone,
	)
}

// issueStatusSMS tells the reporter what happened to their issue, using
// the Romanian status wording.
func issueStatusSMS(e *model.IssueStatusEvent) string {
	statusText := e.Status
	switch e.Status {
	case model.IssueStatusInProgress:
		statusText = "in lucru"
	case model.IssueStatusResolved:
		statusText = "rezolvata"
	}

	message := fmt.Sprintf("Problema \"%s\" a fost marcata ca %s", e.Title, statusText)
	if e.ResolutionNotes != "" {
		message += fmt.Sprintf(". Nota: %s", e.ResolutionNotes)
	}
	return message
}

func pinSMS(e *model.PinEvent) string {
	return fmt.Sprintf("Codul tau de acces este %s. Este valabil 5 minute.", e.PIN)
}

func welcomeSMS(e *model.WelcomeEvent) string {
	return fmt.Sprintf(
		"Bun venit, %s! Contul tau pentru rezervarea microbuzului a fost creat. Te poti conecta cu numarul de telefon.",
		e.Name,
	)
}
