package option

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithQuerySortBy(t *testing.T) {
	allowed := map[string]bool{"created_at": true, "total": true}

	col, dir := WithQuerySortBy("-total", "", allowed)
	assert.Equal(t, "total", col)
	assert.Equal(t, "DESC", dir)

	col, dir = WithQuerySortBy("total", "", allowed)
	assert.Equal(t, "total", col)
	assert.Equal(t, "ASC", dir)

	col, dir = WithQuerySortBy("email", "asc", allowed)
	assert.Equal(t, "created_at", col)
	assert.Equal(t, "DESC", dir)

	col, dir = WithQuerySortBy("created_at", "desc", allowed)
	assert.Equal(t, "created_at", col)
	assert.Equal(t, "DESC", dir)
}
