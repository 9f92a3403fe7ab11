package server

import (
	"net/http"
	"testing"

	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactMessageFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	rec := ts.do(t, http.MethodPost, "/api/contact", contactdomain.CreateRequest{
		FirstName: "Hugo",
		LastName:  "Bernard",
		Email:     "hugo@example.com",
		Subject:   "Dédicace",
		Message:   "Pouvez-vous dédicacer le livre ?",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created contactdomain.Response
	decodeData(t, rec, &created)
	assert.False(t, created.IsRead)

	rec = ts.do(t, http.MethodGet, "/admin/contact/messages?is_read=false", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var unread []contactdomain.Response
	decodeData(t, rec, &unread)
	require.Len(t, unread, 1)

	rec = ts.do(t, http.MethodPost, "/admin/contact/messages/"+created.ID+"/mark_replied", map[string]any{"admin_notes": "envoyé"}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var replied contactdomain.Response
	decodeData(t, rec, &replied)
	assert.True(t, replied.IsRead)
	assert.NotNil(t, replied.RepliedAt)
	assert.Equal(t, "envoyé", replied.AdminNotes)

	rec = ts.do(t, http.MethodPost, "/admin/contact/messages/"+created.ID+"/mark_unread", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/contact/messages/bulk_mark_read", map[string]any{"ids": []string{created.ID}}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"updated":1}}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/admin/contact/messages/statistics", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats contactdomain.Statistics
	decodeData(t, rec, &stats)
	assert.Equal(t, int64(1), stats.TotalMessages)
	assert.Equal(t, int64(0), stats.UnreadMessages)
	assert.Equal(t, int64(1), stats.RepliedMessages)
}

func TestContactValidation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	rec := ts.do(t, http.MethodPost, "/api/contact", contactdomain.CreateRequest{
		FirstName: "Hugo",
		LastName:  "Bernard",
		Email:     "hugo@example.com",
		Message:   "court",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "message", payload.Errors[0].Field)
	assert.Equal(t, "message_too_short", payload.Errors[0].Code)

	rec = ts.do(t, http.MethodPost, "/admin/contact/messages/bulk_mark_read", map[string]any{"ids": []string{}}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_selection", decodeError(t, rec).Errors[0].Code)

	rec = ts.do(t, http.MethodGet, "/admin/contact/messages/1790000000000000001", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
