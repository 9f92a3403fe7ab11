package format

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02/01/2006"

// Cents renders an integer cent amount as euros with two decimals, e.g.
// 1234 -> "12.34 €".
func Cents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2) + " €"
}

// Date renders t as dd/mm/yyyy in UTC.
func Date(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
