package validation

import "errors"

// Field-level rule errors. Messages are shown to patients as-is.
var (
	ErrNameTooShort     = errors.New("Имя должно содержать минимум 2 символа")
	ErrNameMixedScripts = errors.New("Имя должно быть на одном языке (русский, иврит или английский)")
	ErrNameNotAName     = errors.New("Это не похоже на имя. Пожалуйста, укажите ваше настоящее имя")

	ErrPhoneEmpty   = errors.New("Телефон не может быть пустым")
	ErrPhoneIL      = errors.New("Неверный формат израильского номера (+972501234567)")
	ErrPhoneRU      = errors.New("Неверный формат российского номера (+79123456789)")
	ErrPhoneUA      = errors.New("Неверный формат украинского номера (+380501234567)")
	ErrPhoneUnknown = errors.New("Неизвестный формат номера. Поддерживаются: +972501234567, 0501234567, 501234567, +79123456789, +380501234567")

	ErrDateEmpty   = errors.New("Дата не может быть пустой")
	ErrInvalidDate = errors.New("Неверный формат даты")
	ErrTimeEmpty   = errors.New("Время не может быть пустым")
	ErrInvalidTime = errors.New("Неверный формат времени")
)
