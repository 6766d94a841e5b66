package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/BTreeMap/CancelPipe/internal/match"
)

// Canonical date tokens that are not calendar dates.
const (
	DateASAP             = "asap"
	DateNextBillingCycle = "next-billing-cycle"
)

const isoDate = "2006-01-02"

// DisplayDateLayout is how calendar dates appear in the summary.
const DisplayDateLayout = "Monday, January 2, 2006"

var (
	asapTerms    = []string{"asap", "as soon as possible", "immediately", "right away", "right now", "now"}
	billingTerms = []string{"next billing cycle", "next billing period", "next bill", "next billing date", "end of billing cycle", "end of the billing cycle", "end of my billing cycle", "billing cycle"}
	monthEnd     = []string{"end of month", "end of the month", "end of this month", "month end", "last day of the month"}

	months = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
		"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
		"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
	}

	monthPattern  = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	monthDayRe    = regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayMonthRe    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\b(?:,?\s+(\d{4}))?`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	negatedASAPRe = regexp.MustCompile(`(?i)\b(?:not|don'?t|no)\s+(?:right\s+)?(?:now|away|immediately|asap)\b`)
)

// Date returns an extractor that resolves relative terms against now and
// yields either a canonical token or an ISO calendar date. An absolute date
// wins over relative terms in the same reply, and a negated "now" is not a
// request for immediate cancellation. Dates in the past are rejected.
func Date(now func() time.Time) Extractor {
	return func(raw string) (string, bool) {
		t := now()
		today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

		if d, recognized := absoluteDate(raw, today); recognized {
			return d, d != ""
		}

		switch {
		case match.ContainsAny(raw, billingTerms...):
			return DateNextBillingCycle, true
		case match.ContainsAny(raw, monthEnd...):
			return today.AddDate(0, 1, -today.Day()).Format(isoDate), true
		case match.ContainsAny(raw, "tomorrow"):
			return today.AddDate(0, 0, 1).Format(isoDate), true
		case match.ContainsAny(raw, "today", "tonight"):
			return today.Format(isoDate), true
		case match.ContainsAny(raw, asapTerms...) && !negatedASAPRe.MatchString(raw):
			return DateASAP, true
		}

		if !hasDigit(raw) {
			return "", false
		}
		parsed, err := dateparse.ParseIn(strings.TrimSpace(raw), t.Location())
		if err != nil {
			return "", false
		}
		d := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, t.Location())
		if d.Before(today) {
			return "", false
		}
		return d.Format(isoDate), true
	}
}

// absoluteDate handles "March 3", "3rd of March 2027" and "3/15[/27]". The
// second result reports whether the text looked like an absolute date at all;
// an invalid or past date is recognized but yields an empty value.
func absoluteDate(raw string, today time.Time) (string, bool) {
	var (
		month      time.Month
		day        int
		year       string
		recognized bool
	)
	if m := monthDayRe.FindStringSubmatch(raw); m != nil {
		month, day, year, recognized = months[strings.ToLower(m[1][:3])], atoi(m[2]), m[3], true
	} else if m := dayMonthRe.FindStringSubmatch(raw); m != nil {
		month, day, year, recognized = months[strings.ToLower(m[2][:3])], atoi(m[1]), m[3], true
	} else if m := numericDateRe.FindStringSubmatch(raw); m != nil {
		mm := atoi(m[1])
		if mm < 1 || mm > 12 {
			return "", true
		}
		month, day, year, recognized = time.Month(mm), atoi(m[2]), m[3], true
	}
	if !recognized {
		return "", false
	}

	y := today.Year()
	explicitYear := year != ""
	if explicitYear {
		y = atoi(year)
		if len(year) == 2 {
			y += 2000
		}
	}
	d := time.Date(y, month, day, 0, 0, 0, 0, today.Location())
	if d.Month() != month || d.Day() != day {
		return "", true
	}
	if d.Before(today) {
		if explicitYear {
			return "", true
		}
		d = d.AddDate(1, 0, 0)
	}
	return d.Format(isoDate), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// FormatDate renders a canonical date candidate for display.
func FormatDate(candidate string) string {
	switch candidate {
	case DateASAP:
		return "As soon as possible"
	case DateNextBillingCycle:
		return "At the end of the current billing cycle"
	}
	d, err := time.Parse(isoDate, candidate)
	if err != nil {
		return candidate
	}
	return d.Format(DisplayDateLayout)
}

// DateGuidance describes the accepted date formats.
func DateGuidance() string {
	return fmt.Sprintf("Try %q, %q, %q, %q, or a date like %q or %q.",
		"today", "tomorrow", "end of month", "next billing cycle", "March 3", "3/15")
}
