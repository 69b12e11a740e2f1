package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/clinic"
	"github.com/wolfman30/clinic-secretary/internal/events"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

// NotifierConfig describes the clinic for message bodies.
type NotifierConfig struct {
	ClinicName    string
	ClinicPhone   string
	ClinicAddress string
	AdminEmails   []string
	Location      *time.Location
}

// Reminder is an upcoming visit a patient should be reminded of.
type Reminder struct {
	AppointmentID  string
	PatientName    string
	PatientEmail   string
	ServiceName    string
	SpecialistName string
	Start          time.Time
	Before         time.Duration
}

// Notifier emails patients and clinic staff about appointments.
type Notifier struct {
	email  EmailSender
	cfg    NotifierConfig
	logger *logging.Logger
}

// NewNotifier creates a notifier. A nil sender disables sending.
func NewNotifier(email EmailSender, cfg NotifierConfig, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = "Центр здоровья"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Notifier{email: email, cfg: cfg, logger: logger}
}

// AppointmentCreated sends the patient confirmation (when an email is known)
// and the staff notification.
func (n *Notifier) AppointmentCreated(ctx context.Context, evt events.AppointmentCreatedV1) error {
	if n.email == nil {
		n.logger.Debug("notify: email sender not configured, skipping", "appointment_id", evt.AppointmentID)
		return nil
	}
	var errs []error

	if evt.PatientEmail != "" {
		body := fmt.Sprintf(`Здравствуйте, %s!

Вы записаны в %s.

Услуга: %s
Специалист: %s
Дата и время: %s
Стоимость: %.0f₪
%s
Мы свяжемся с вами для подтверждения записи.`,
			evt.PatientName, n.cfg.ClinicName, evt.ServiceName, evt.SpecialistName, n.when(evt.Start), evt.Price, n.contacts())
		errs = append(errs, n.send(ctx, EmailMessage{
			To:      evt.PatientEmail,
			ToName:  evt.PatientName,
			Subject: fmt.Sprintf("Запись подтверждена: %s, %s", evt.ServiceName, n.when(evt.Start)),
			Body:    body,
		}, "confirmation", evt.AppointmentID))
	}

	channel := "сайт"
	if evt.Channel == "chat" {
		channel = "ИИ-чат"
	}
	subject := fmt.Sprintf("Новая запись: %s, %s", evt.PatientName, n.when(evt.Start))
	body := fmt.Sprintf(`Новая запись (%s)

Клиент: %s
Телефон: %s
Услуга: %s
Специалист: %s
Дата и время: %s
Стоимость: %.0f₪`,
		channel, evt.PatientName, evt.PatientPhone, evt.ServiceName, evt.SpecialistName, n.when(evt.Start), evt.Price)
	htmlBody := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #10b981;">Новая запись</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
%s%s%s%s%s</table>
<p style="color: #6b7280; font-size: 12px;">%s</p>
</div>`,
		row("Клиент", evt.PatientName), row("Телефон", evt.PatientPhone), row("Услуга", evt.ServiceName),
		row("Специалист", evt.SpecialistName), row("Дата и время", n.when(evt.Start)), html.EscapeString(n.cfg.ClinicName))
	for _, admin := range n.cfg.AdminEmails {
		errs = append(errs, n.send(ctx, EmailMessage{To: admin, ReplyTo: evt.PatientEmail, Subject: subject, Body: body, HTML: htmlBody}, "admin_created", evt.AppointmentID))
	}
	return errors.Join(errs...)
}

// AppointmentCancelled tells the patient and staff that a visit was cancelled.
func (n *Notifier) AppointmentCancelled(ctx context.Context, evt events.AppointmentCancelledV1) error {
	if n.email == nil {
		return nil
	}
	var errs []error
	if evt.PatientEmail != "" {
		body := fmt.Sprintf(`Здравствуйте, %s!

Ваша запись на %s к специалисту %s (%s) отменена.
Чтобы выбрать другое время, напишите нам в чат.
%s`, evt.PatientName, evt.ServiceName, evt.SpecialistName, n.when(evt.Start), n.contacts())
		errs = append(errs, n.send(ctx, EmailMessage{
			To:      evt.PatientEmail,
			ToName:  evt.PatientName,
			Subject: "Запись отменена",
			Body:    body,
		}, "cancellation", evt.AppointmentID))
	}
	body := fmt.Sprintf("Запись отменена\n\nКлиент: %s\nТелефон: %s\nУслуга: %s\nСпециалист: %s\nДата и время: %s",
		evt.PatientName, evt.PatientPhone, evt.ServiceName, evt.SpecialistName, n.when(evt.Start))
	for _, admin := range n.cfg.AdminEmails {
		errs = append(errs, n.send(ctx, EmailMessage{
			To:      admin,
			Subject: fmt.Sprintf("Отмена записи: %s, %s", evt.PatientName, n.when(evt.Start)),
			Body:    body,
		}, "admin_cancelled", evt.AppointmentID))
	}
	return errors.Join(errs...)
}

// AppointmentReminder emails the patient before the visit.
func (n *Notifier) AppointmentReminder(ctx context.Context, r Reminder) error {
	if n.email == nil {
		return nil
	}
	if r.PatientEmail == "" {
		return fmt.Errorf("notify: reminder for %s has no email", r.AppointmentID)
	}
	lead := "завтра"
	if r.Before < 24*time.Hour {
		lead = fmt.Sprintf("через %d ч.", int(r.Before.Hours()))
	}
	body := fmt.Sprintf(`Здравствуйте, %s!

Напоминаем, что %s у вас запись:

Услуга: %s
Специалист: %s
Дата и время: %s
%s
Если планы изменились, пожалуйста, сообщите нам заранее.`,
		r.PatientName, lead, r.ServiceName, r.SpecialistName, n.when(r.Start), n.contacts())
	return n.send(ctx, EmailMessage{
		To:      r.PatientEmail,
		ToName:  r.PatientName,
		Subject: fmt.Sprintf("Напоминание о записи: %s", n.when(r.Start)),
		Body:    body,
	}, "reminder", r.AppointmentID)
}

func (n *Notifier) send(ctx context.Context, msg EmailMessage, kind, appointmentID string) error {
	msg.Category = kind
	if err := n.email.Send(ctx, msg); err != nil {
		n.logger.Error("notify: failed to send email", "error", err, "to", msg.To, "kind", kind, "appointment_id", appointmentID)
		return fmt.Errorf("notify: %s to %s: %w", kind, msg.To, err)
	}
	n.logger.Info("notify: email sent", "to", msg.To, "kind", kind, "appointment_id", appointmentID)
	return nil
}

func (n *Notifier) when(t time.Time) string {
	local := t.In(n.cfg.Location)
	return fmt.Sprintf("%s (%s) %s", local.Format("02.01.2006"), clinic.DayName(local.Weekday()), local.Format("15:04"))
}

func (n *Notifier) contacts() string {
	var lines []string
	if n.cfg.ClinicAddress != "" {
		lines = append(lines, "Адрес: "+n.cfg.ClinicAddress)
	}
	if n.cfg.ClinicPhone != "" {
		lines = append(lines, "Телефон: "+n.cfg.ClinicPhone)
	}
	if len(lines) == 0 {
		return ""
	}
	return "\n" + strings.Join(lines, "\n") + "\n"
}

func row(label, value string) string {
	return fmt.Sprintf(`  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
`, label, html.EscapeString(value))
}

var _ events.AppointmentNotifier = (*Notifier)(nil)
