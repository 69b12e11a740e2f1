package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var notANameWords = map[string]struct{}{
	"на": {}, "к": {}, "у": {}, "для": {}, "запись": {}, "прием": {},
	"консультация": {}, "массаж": {}, "диагностика": {}, "остеопат": {},
	"специалист": {}, "врач": {},
	"на массаж": {}, "на консультацию": {}, "на диагностику": {}, "на прием": {},
}

// ValidateName checks that name looks like a personal name written in a
// single script: Cyrillic, Hebrew or Latin.
func ValidateName(name string) error {
	clean := strings.TrimSpace(name)
	if utf8.RuneCountInString(clean) < 2 {
		return ErrNameTooShort
	}

	var cyrillic, hebrew, latin bool
	for _, r := range clean {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic = true
		case r >= 0x0590 && r <= 0x05FF:
			hebrew = true
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			latin = true
		}
	}
	scripts := 0
	for _, has := range []bool{cyrillic, hebrew, latin} {
		if has {
			scripts++
		}
	}
	if scripts > 1 {
		return ErrNameMixedScripts
	}

	if _, bad := notANameWords[strings.ToLower(clean)]; bad {
		return ErrNameNotAName
	}
	return nil
}
