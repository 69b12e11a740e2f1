package secretary

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/clinic-secretary/internal/booking"
	"github.com/wolfman30/clinic-secretary/internal/catalog"
	"github.com/wolfman30/clinic-secretary/internal/clinic"
)

const (
	replyApology      = "Извините, произошла ошибка. Давайте начнем сначала. Чем могу помочь?"
	replyAskName      = "Как вас зовут?"
	replyAskDate      = "На какой день вам удобно?"
	replyAskTime      = "Какое время вам подойдет?"
	replyAskService   = "На какую услугу записываемся? (массаж, консультация, диагностика, остеопат)"
	replyPickAnother  = "Пожалуйста, выберите другую дату."
	replyMemoryEmpty  = "Простите за недоразумение! Давайте продолжим. Чем могу помочь?"
	maxListedSlots    = 8
	suggestedDayCount = 3
)

var memoryComplaints = []string{
	"уже говорил", "уже сказал", "уже называл",
	"я тебе говорил", "повторяю", "забыл",
	"не помнишь", "уже отвечал", "я же говорил",
}

var menuRequests = []string{"услуги", "что у вас", "расскажи", "прайс", "цены", "сколько стоит"}

// Generic service words that still need a specialist before the exact
// service can be picked.
var genericServices = []struct {
	stem  string
	reply string
}{
	{"консультац", "Отлично! На консультацию к какому специалисту хотите записаться?"},
	{"массаж", "Отлично! На массаж к какому специалисту хотите записаться?"},
	{"диагностик", "Отлично! На диагностику к какому специалисту хотите записаться?"},
}

func isMemoryComplaint(message string) bool {
	lower := strings.ToLower(message)
	for _, c := range memoryComplaints {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func memoryReply(e Entities) string {
	var remembered []string
	if e.Name != "" {
		remembered = append(remembered, "имя: "+e.Name)
	}
	if e.Phone != "" {
		remembered = append(remembered, "телефон: "+e.Phone)
	}
	if e.Service != "" {
		remembered = append(remembered, "услуга: "+e.Service)
	}
	if len(remembered) == 0 {
		return replyMemoryEmpty
	}
	return fmt.Sprintf("Извините за путаницу! У меня записано: %s. Что нужно уточнить дальше?", strings.Join(remembered, ", "))
}

func menuReply(services []catalog.Service) string {
	var b strings.Builder
	b.WriteString("У нас доступны:\n")
	for _, s := range services {
		fmt.Fprintf(&b, "• %s - %s (%s)\n", s.Name, price(s.Price), strings.Join(s.Specialists, ", "))
	}
	b.WriteString("\nНа что хотите записаться?")
	return b.String()
}

func specialistServicesReply(sp catalog.Specialist, services []catalog.Service) string {
	var names []string
	for _, s := range services {
		for _, n := range s.Specialists {
			if n == sp.Name {
				names = append(names, s.Name)
			}
		}
	}
	if len(names) == 0 {
		return replyAskService
	}
	return fmt.Sprintf("Какую услугу хотите? %s проводит:\n• %s", sp.Name, strings.Join(names, "\n• "))
}

func price(p float64) string {
	return fmt.Sprintf("%.0f₪", p)
}

func greetSpecialist(dative string) string {
	return fmt.Sprintf("Отлично! К %s. Как вас зовут?", dative)
}

func askPhone(name string) string {
	if name == "" {
		return "Спасибо! Укажите ваш номер телефона."
	}
	return fmt.Sprintf("Спасибо, %s! Укажите ваш номер телефона.", name)
}

func askSpecialist(specialists []catalog.Specialist) string {
	return fmt.Sprintf("К какому специалисту хотите записаться? (%s)", strings.Join(catalog.SpecialistNames(specialists), ", "))
}

func unknownSpecialist(name string, specialists []catalog.Specialist) string {
	return fmt.Sprintf("Специалист '%s' у нас не принимает. К кому хотите записаться? (%s)",
		name, strings.Join(catalog.SpecialistNames(specialists), ", "))
}

func formatDay(day time.Time) string {
	return fmt.Sprintf("%s (%s)", day.Format("02.01.2006"), clinic.DayName(day.Weekday()))
}

func formatDays(days []time.Time) string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = fmt.Sprintf("%s (%s)", d.Format("02.01"), clinic.DayName(d.Weekday()))
	}
	return strings.Join(out, ", ")
}

func withDateSuggestions(reply string, days []time.Time) string {
	if len(days) == 0 {
		return reply
	}
	return reply + "\n\nБлижайшие свободные дни: " + formatDays(days)
}

func freeSlotsReply(day time.Time, specialist string, times []string) string {
	return fmt.Sprintf("Отлично! %s у специалиста %s свободно:\n%s\n\nВыберите удобное время.",
		formatDay(day), specialist, strings.Join(times, ", "))
}

func noSlotsReply(day time.Time, specialist string) string {
	return fmt.Sprintf("К сожалению, %s у специалиста %s нет свободного времени.", formatDay(day), specialist)
}

func conflictReply(message, day string, times []string) string {
	return fmt.Sprintf("⚠️ %s\n\n✅ Доступные слоты на %s: %s\n\nВыберите удобное время:", message, day, strings.Join(times, ", "))
}

func confirmationReply(a *booking.Appointment) string {
	return fmt.Sprintf(`✅ Отлично! Запись создана:

👤 Клиент: %s
📞 Телефон: %s
🏥 Услуга: %s
🧑‍⚕️ Специалист: %s
📅 Дата: %s
⏰ Время: %s

Мы свяжемся с вами для подтверждения!`,
		a.PatientName, a.PatientPhone, a.ServiceName, a.SpecialistName, formatDay(a.Start), a.Start.Format("15:04"))
}
