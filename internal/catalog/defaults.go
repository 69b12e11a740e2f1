package catalog

const currencyILS = "ILS"

const (
	specialistAvraam    = "Авраам"
	specialistEkaterina = "Екатерина"
	specialistRimma     = "Римма"
)

// DefaultSpecialists returns the clinic staff.
func DefaultSpecialists() []Specialist {
	return []Specialist{
		{ID: "avraam", Name: specialistAvraam, Dative: "Аврааму", Specialty: "Массажист", Active: true},
		{ID: "ekaterina", Name: specialistEkaterina, Dative: "Екатерине", Specialty: "Врач-реабилитолог, врач спортивной медицины, остеопат", Active: true},
		{ID: "rimma", Name: specialistRimma, Dative: "Римме", Specialty: "Врач педиатр, врач нутрициолог", Active: true},
	}
}

// DefaultServices returns the price list. Order matters: keyword detection
// walks the list top to bottom, so narrower massage variants come first.
func DefaultServices() []Service {
	svc := func(id, name, category string, price float64, minutes int, specialist string, keywords ...string) Service {
		return Service{
			ID:              id,
			Name:            name,
			Price:           price,
			Currency:        currencyILS,
			DurationMinutes: minutes,
			Category:        category,
			Active:          true,
			Keywords:        keywords,
			Specialists:     []string{specialist},
		}
	}
	return []Service{
		svc("massage-women-classic", "Лечебный массаж (женщины) - классический шведский", CategoryMassage, 250, 55, specialistAvraam,
			"массаж для женщин", "женский массаж", "массаж женщинам"),
		svc("massage-men-classic", "Лечебный массаж (мужчины) - классический шведский", CategoryMassage, 250, 55, specialistAvraam,
			"массаж для мужчин", "мужской массаж", "массаж мужчинам"),
		svc("massage-men-sport", "Лечебный массаж (мужчины) - спортивный", CategoryMassage, 250, 55, specialistAvraam,
			"спортивный массаж", "массаж спортивный"),
		svc("massage-men-medical", "Лечебный массаж (мужчины) - лечебный", CategoryMassage, 250, 55, specialistAvraam,
			"лечебный массаж", "массаж лечебный"),
		svc("massage-children", "Детский массаж", CategoryMassage, 150, 45, specialistAvraam,
			"детский массаж", "массаж детям", "массаж ребенку"),
		svc("massage-infants", "Массаж для грудных детей", CategoryMassage, 70, 25, specialistAvraam,
			"массаж грудничкам", "массаж младенцам", "массаж грудным"),
		svc("massage-pregnant", "Массаж для беременных", CategoryMassage, 180, 35, specialistAvraam,
			"массаж беременным", "беременным массаж", "для беременных"),
		svc("consult-osteopath", "Консультация остеопата", CategoryConsultation, 80, 20, specialistEkaterina,
			"остеопат", "кости", "суставы", "позвоночник", "остео", "к остеопату"),
		svc("consult-rehab", "Консультация реабилитолога", CategoryConsultation, 80, 20, specialistEkaterina,
			"реабилитация", "восстановление", "травма", "реабилитолог", "к реабилитологу"),
		svc("consult-nutrition", "Консультация нутрициолога", CategoryConsultation, 450, 50, specialistRimma,
			"питание", "диета", "вес", "нутрициолог", "к нутрициологу"),
		svc("diag-basic", "Диагностика биорезонансным сканированием (базовая)", CategoryDiagnostics, 300, 30, specialistEkaterina,
			"диагностика базовая", "базовая диагностика", "сканирование базовое"),
		svc("diag-extended", "Диагностика биорезонансным сканированием (расширенная)", CategoryDiagnostics, 750, 60, specialistEkaterina,
			"диагностика расширенная", "расширенная диагностика", "сканирование расширенное"),
		svc("diag-vip", "Диагностика биорезонансным сканированием (VIP)", CategoryDiagnostics, 5500, 120, specialistEkaterina,
			"диагностика vip", "vip диагностика", "сканирование vip"),
		svc("kinesio-taping", "Кинезиотейпирование", CategoryTherapy, 50, 15, specialistEkaterina,
			"кинезио", "тейпирование", "тейпы", "кинезиотейп"),
		svc("exercise-program", "Подбор и демонстрация комплекса упражнений", CategoryTherapy, 100, 30, specialistEkaterina,
			"упражнения", "комплекс", "гимнастика", "лфк"),
	}
}
