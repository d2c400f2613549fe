package invoice

import (
	"math/big"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "January 02, 2006"
	dateTimeLayout = "January 02, 2006 03:04 PM"
)

// FormatCurrency renders an amount as dollars with thousands separators and
// exactly two decimals, e.g. $1,234.50 or -$5.00.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := whole
	if n, ok := new(big.Int).SetString(whole, 10); ok {
		grouped = humanize.BigComma(n)
	}
	return sign + "$" + grouped + "." + frac
}

// FormatDate renders the document generation date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime renders check-in/check-out with a 12-hour clock.
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}
