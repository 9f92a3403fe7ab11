package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm statement.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type sortBy struct {
	column    string
	direction string
}

// WithQuerySortBy validates a requested sort column against an allowlist.
// A leading "-" on sort means descending, as does order=desc.
func WithQuerySortBy(sort, order string, allowed map[string]bool) (string, string) {
	sort = strings.TrimSpace(sort)
	direction := "DESC"
	if strings.HasPrefix(sort, "-") {
		sort = strings.TrimPrefix(sort, "-")
	} else if sort != "" {
		direction = "ASC"
	}
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "asc":
		direction = "ASC"
	case "desc":
		direction = "DESC"
	}
	if !allowed[sort] {
		return "created_at", "DESC"
	}
	return sort, direction
}

func WithSortBy(column, direction string) QueryOption {
	return sortBy{column: column, direction: direction}
}

func (s sortBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(s.column + " " + s.direction).Order("id " + s.direction)
}
