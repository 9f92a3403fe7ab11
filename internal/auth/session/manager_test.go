package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/zoonova/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestReadTokenPrefersBearer(t *testing.T) {
	m := NewManager(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "cookie-token"})
	c, _ := newContext(req)

	token, ok := m.ReadToken(c)
	require.True(t, ok)
	assert.Equal(t, "header-token", token)
}

func TestReadTokenFallsBackToCookie(t *testing.T) {
	m := NewManager(config.Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "cookie-token"})
	c, _ := newContext(req)

	token, ok := m.ReadToken(c)
	require.True(t, ok)
	assert.Equal(t, "cookie-token", token)

	c, _ = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	_, ok = m.ReadToken(c)
	assert.False(t, ok)
}

func TestSetWritesHTTPOnlyCookie(t *testing.T) {
	m := NewManager(config.Config{AuthCookieSecure: true})
	c, w := newContext(httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	m.Set(c, "tok", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Greater(t, cookies[0].MaxAge, 3500)
}
