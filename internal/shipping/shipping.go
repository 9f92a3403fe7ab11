// Package shipping prices postage for an order from its destination label and
// the number of books it carries.
package shipping

import "strings"

const (
	France = "France"
	Europe = "Europe"
)

// maxTier is the largest book count with its own rate; heavier parcels pay it.
const maxTier = 8

var rates = map[string][maxTier]int64{
	France: {471, 471, 677, 513, 894, 840, 842, 842},
	Europe: {1048, 1048, 1524, 1524, 2862, 2862, 2862, 2862},
}

// Cost returns the shipping cost in cents. Unknown destinations and
// non-positive counts cost 0.
func Cost(countryLabel string, bookCount int) int64 {
	table, ok := rates[strings.TrimSpace(countryLabel)]
	if !ok || bookCount <= 0 {
		return 0
	}
	if bookCount > maxTier {
		bookCount = maxTier
	}
	return table[bookCount-1]
}

// Supported reports whether a destination label has a rate table.
func Supported(countryLabel string) bool {
	_, ok := rates[strings.TrimSpace(countryLabel)]
	return ok
}

// Line is anything carrying a quantity of books.
type Line interface {
	BookQuantity() int
}

func CountBooks[T Line](lines []T) int {
	total := 0
	for _, l := range lines {
		total += l.BookQuantity()
	}
	return total
}
