package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/events"
)

type mockEmailSender struct {
	sent   []EmailMessage
	failOn string // fail if To matches this
}

func (m *mockEmailSender) Send(_ context.Context, msg EmailMessage) error {
	if m.failOn != "" && msg.To == m.failOn {
		return errors.New("mock email error")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func jerusalem(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func createdEvent(loc *time.Location) events.AppointmentCreatedV1 {
	return events.AppointmentCreatedV1{
		AppointmentID:  "appt-1",
		PatientName:    "Анна",
		PatientPhone:   "+972501234567",
		PatientEmail:   "anna@example.com",
		ServiceName:    "Детский массаж",
		SpecialistName: "Авраам",
		Price:          150,
		Start:          time.Date(2025, 12, 9, 11, 0, 0, 0, loc).UTC(),
		Channel:        "chat",
	}
}

func TestAppointmentCreated_PatientAndAdmins(t *testing.T) {
	loc := jerusalem(t)
	sender := &mockEmailSender{}
	n := NewNotifier(sender, NotifierConfig{
		ClinicName:  "Центр здоровья",
		ClinicPhone: "+972-2-000-0000",
		AdminEmails: []string{"admin@example.com", "owner@example.com"},
		Location:    loc,
	}, nil)

	if err := n.AppointmentCreated(context.Background(), createdEvent(loc)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(sender.sent))
	}

	patient := sender.sent[0]
	if patient.To != "anna@example.com" || patient.Category != "confirmation" {
		t.Errorf("unexpected patient email %q / %q", patient.To, patient.Category)
	}
	for _, want := range []string{"Здравствуйте, Анна!", "Детский массаж", "09.12.2025 (Вторник) 11:00", "150₪", "Телефон: +972-2-000-0000"} {
		if !strings.Contains(patient.Body, want) {
			t.Errorf("patient body missing %q:\n%s", want, patient.Body)
		}
	}

	admin := sender.sent[1]
	if admin.ReplyTo != "anna@example.com" || admin.Category != "admin_created" {
		t.Errorf("admin email should reply to the patient, got %q / %q", admin.ReplyTo, admin.Category)
	}
	if !strings.Contains(admin.Subject, "Новая запись: Анна") {
		t.Errorf("unexpected admin subject %q", admin.Subject)
	}
	if !strings.Contains(admin.Body, "(ИИ-чат)") {
		t.Errorf("admin body should name the chat channel:\n%s", admin.Body)
	}
	if !strings.Contains(admin.HTML, "+972501234567") {
		t.Error("admin HTML should include the phone")
	}
}

func TestAppointmentCreated_NoPatientEmail(t *testing.T) {
	loc := jerusalem(t)
	sender := &mockEmailSender{}
	n := NewNotifier(sender, NotifierConfig{AdminEmails: []string{"admin@example.com"}, Location: loc}, nil)

	evt := createdEvent(loc)
	evt.PatientEmail = ""
	if err := n.AppointmentCreated(context.Background(), evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "admin@example.com" {
		t.Fatalf("expected only the admin email, got %+v", sender.sent)
	}
}

func TestAppointmentCreated_PartialFailure(t *testing.T) {
	loc := jerusalem(t)
	sender := &mockEmailSender{failOn: "admin@example.com"}
	n := NewNotifier(sender, NotifierConfig{AdminEmails: []string{"admin@example.com", "owner@example.com"}, Location: loc}, nil)

	err := n.AppointmentCreated(context.Background(), createdEvent(loc))
	if err == nil {
		t.Fatal("expected error when one recipient fails")
	}
	if !strings.Contains(err.Error(), "admin@example.com") {
		t.Errorf("error should name the failed recipient: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Errorf("other recipients should still be sent, got %d", len(sender.sent))
	}
}

func TestAppointmentCreated_NoSender(t *testing.T) {
	n := NewNotifier(nil, NotifierConfig{}, nil)
	if err := n.AppointmentCreated(context.Background(), createdEvent(time.UTC)); err != nil {
		t.Fatalf("expected nil error without a sender, got %v", err)
	}
}

func TestAppointmentCancelled(t *testing.T) {
	loc := jerusalem(t)
	sender := &mockEmailSender{}
	n := NewNotifier(sender, NotifierConfig{AdminEmails: []string{"admin@example.com"}, Location: loc}, nil)

	err := n.AppointmentCancelled(context.Background(), events.AppointmentCancelledV1{
		AppointmentID:  "appt-1",
		PatientName:    "Анна",
		PatientEmail:   "anna@example.com",
		ServiceName:    "Детский массаж",
		SpecialistName: "Авраам",
		Start:          time.Date(2025, 12, 9, 11, 0, 0, 0, loc),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}
	if sender.sent[0].Subject != "Запись отменена" {
		t.Errorf("unexpected subject %q", sender.sent[0].Subject)
	}
}

func TestAppointmentReminder(t *testing.T) {
	loc := jerusalem(t)
	sender := &mockEmailSender{}
	n := NewNotifier(sender, NotifierConfig{Location: loc}, nil)
	start := time.Date(2025, 12, 9, 11, 0, 0, 0, loc)

	err := n.AppointmentReminder(context.Background(), Reminder{
		AppointmentID: "appt-1", PatientName: "Анна", PatientEmail: "anna@example.com",
		ServiceName: "Детский массаж", SpecialistName: "Авраам", Start: start, Before: 2 * time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "через 2 ч.") {
		t.Errorf("2h reminder should say so:\n%s", sender.sent[0].Body)
	}

	err = n.AppointmentReminder(context.Background(), Reminder{AppointmentID: "appt-2", Start: start, Before: 24 * time.Hour})
	if err == nil {
		t.Error("expected error for reminder without email")
	}
}
