package site

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"golang.org/x/text/unicode/norm"
)

var arabic = message.NewPrinter(language.Arabic)

// count formats n with Arabic digits.
func count(n int) string {
	return arabic.Sprint(number.Decimal(n, number.NoSeparator()))
}

var months = [12]string{
	`يناير`, `فبراير`, `مارس`, `أبريل`, `مايو`, `يونيو`,
	`يوليو`, `أغسطس`, `سبتمبر`, `أكتوبر`, `نوفمبر`, `ديسمبر`,
}

// formatDate formats a timestamp from the content store as "<day> <month> <year>".  Unparseable dates yield "".
func formatDate(raw string) string {
	if raw == `` {
		return ``
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		if t, err = time.Parse(time.DateOnly, raw); err != nil {
			return ``
		}
	}
	return longDate(t)
}

func longDate(t time.Time) string {
	return count(t.Day()) + ` ` + months[t.Month()-1] + ` ` + count(t.Year())
}

// normalizeID trims a query parameter and puts it in NFC, so slugs typed with decomposed Arabic marks still match.
func normalizeID(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}
