package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCents(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00 €",
		5:      "0.05 €",
		471:    "4.71 €",
		1234:   "12.34 €",
		100000: "1000.00 €",
		-50:    "-0.50 €",
	}
	for in, want := range cases {
		assert.Equal(t, want, Cents(in), "cents=%d", in)
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "07/03/2024", Date(ts))
}
