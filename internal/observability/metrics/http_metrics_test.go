package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := newHTTPMetrics(reg)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/api/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/books", http.MethodGet, "200")))
}

func TestHTTPMetricsRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newHTTPMetrics(reg)
	second := newHTTPMetrics(reg)
	assert.Same(t, first.requests, second.requests)
}
