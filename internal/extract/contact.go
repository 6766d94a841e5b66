package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	emailPrefix = "email:"
	phonePrefix = "phone:"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().\-]{5,}\d`)
)

// Contact extracts an email address or phone number. Email wins when both
// are present. Phone numbers must have 7, 10 or 11 to 15 digits.
func Contact(raw string) (string, bool) {
	if m := emailRe.FindString(raw); m != "" {
		return emailPrefix + strings.ToLower(m), true
	}
	m := phoneRe.FindString(raw)
	if m == "" {
		return "", false
	}
	var digits strings.Builder
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	switch n := digits.Len(); {
	case n == 7, n == 10, n >= 11 && n <= 15:
		return phonePrefix + digits.String(), true
	}
	return "", false
}

// FormatContact renders a contact candidate for display.
func FormatContact(candidate string) string {
	switch {
	case strings.HasPrefix(candidate, emailPrefix):
		return "Email: " + strings.TrimPrefix(candidate, emailPrefix)
	case strings.HasPrefix(candidate, phonePrefix):
		return "Phone: " + FormatPhone(strings.TrimPrefix(candidate, phonePrefix))
	}
	return candidate
}

// FormatPhone renders a digit string in local format, prefixing the country
// code when the number is longer than ten digits.
func FormatPhone(digits string) string {
	switch n := len(digits); {
	case n == 7:
		return digits[:3] + "-" + digits[3:]
	case n == 10:
		return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
	case n > 10:
		cc, local := digits[:n-10], digits[n-10:]
		return fmt.Sprintf("+%s (%s) %s-%s", cc, local[:3], local[3:6], local[6:])
	}
	return digits
}
