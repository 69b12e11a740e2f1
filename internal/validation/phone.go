package validation

import "strings"

// Phone is a normalized phone number.
type Phone struct {
	E164    string `json:"e164"`
	Country string `json:"country"` // IL, RU or UA
}

// NormalizePhone converts the accepted Israeli, Russian and Ukrainian
// spellings to E.164.
func NormalizePhone(raw string) (Phone, error) {
	if strings.TrimSpace(raw) == "" {
		return Phone{}, ErrPhoneEmpty
	}

	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	digits := strings.TrimPrefix(clean, "+")
	n := len(clean)

	switch {
	case strings.HasPrefix(digits, "972"):
		if n == 12 || n == 13 {
			return Phone{E164: "+972" + last(clean, 9), Country: "IL"}, nil
		}
		return Phone{}, ErrPhoneIL
	case strings.HasPrefix(digits, "380"):
		if n == 12 || n == 13 {
			return Phone{E164: "+380" + last(clean, 9), Country: "UA"}, nil
		}
		return Phone{}, ErrPhoneUA
	// 9 digits starting with 7 is an Israeli number without the leading 0.
	case strings.HasPrefix(digits, "7") && !(n == 9 && clean[0] == '7'):
		if n == 11 || n == 12 {
			return Phone{E164: "+7" + last(clean, 10), Country: "RU"}, nil
		}
		return Phone{}, ErrPhoneRU
	case strings.HasPrefix(clean, "0") && (n == 9 || n == 10):
		return Phone{E164: "+972" + clean[1:], Country: "IL"}, nil
	case n == 9 && (clean[0] == '5' || clean[0] == '7'):
		return Phone{E164: "+972" + clean, Country: "IL"}, nil
	}
	return Phone{}, ErrPhoneUnknown
}

func last(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
