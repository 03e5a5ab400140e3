// views/format.go - Display formatting shared by the portal views
package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "02.01.2006."
	dateTimeLayout = "02.01.2006 15:04"
)

// FormatDate renders dd.MM.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime renders dd.MM.yyyy HH:mm
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatAmount renders a decimal string the sr-RS way: 12.500,00 RSD.
// The amount is only reformatted; unparsable input is shown as received.
func FormatAmount(amount, currency string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return strings.TrimSpace(amount + " " + currency)
	}
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}

// UnreadMessages builds the dashboard sentence with Serbian plural forms
func UnreadMessages(n int) string {
	switch {
	case n <= 0:
		return "Nemate nepročitanih poruka"
	case n == 1:
		return "Imate 1 nepročitanu poruku"
	case n < 5:
		return "Imate " + strconv.Itoa(n) + " nepročitane poruke"
	default:
		return "Imate " + strconv.Itoa(n) + " nepročitanih poruka"
	}
}
