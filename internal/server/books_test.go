package server

import (
	"context"
	"net/http"
	"testing"

	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicCatalogHidesInactiveBooks(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	inactive := false

	visible, err := ts.books.Create(ctx, bookdomain.CreateRequest{Title: "Visible", Author: "A", Price: 1500, Quantity: 2})
	require.NoError(t, err)
	hidden, err := ts.books.Create(ctx, bookdomain.CreateRequest{Title: "Hidden", Author: "B", Price: 1500, Quantity: 2, IsActive: &inactive})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodGet, "/api/books", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []bookdomain.Response
	decodeData(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/books/"+hidden.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	token := ts.loginAs(t, "staff@zoonova.com", false)
	rec = ts.do(t, http.MethodGet, "/admin/books", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &list)
	assert.Len(t, list, 2)
}

func TestPublicRetrieveCountsViews(t *testing.T) {
	ts := newTestServer(t)
	_, bookID := ts.seedCatalog(t, 3)

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodGet, "/api/books/"+bookID, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	book, err := ts.books.Get(context.Background(), bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), book.ViewsCount)
}

func TestListBooksRejectsBadFilter(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/books?min_price=cheap", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "min_price", payload.Errors[0].Field)
}

func TestAdminBookLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	rec := ts.do(t, http.MethodPost, "/admin/books", map[string]any{
		"title":    "Petit Ours",
		"author":   "Zoé Nova",
		"price":    1250,
		"quantity": 4,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created bookdomain.Response
	decodeData(t, rec, &created)
	assert.True(t, created.IsActive)

	rec = ts.do(t, http.MethodPost, "/admin/books/"+created.ID+"/stock", map[string]any{"quantity": 9}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated bookdomain.Response
	decodeData(t, rec, &updated)
	assert.Equal(t, 9, updated.Quantity)

	rec = ts.do(t, http.MethodPost, "/admin/books/"+created.ID+"/stock", map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/books/"+created.ID+"/toggle_featured", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &updated)
	assert.True(t, updated.IsFeatured)

	rec = ts.do(t, http.MethodDelete, "/admin/books/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/books/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBookWithPendingOrderConflicts(t *testing.T) {
	ts := newTestServer(t)
	countryID, bookID := ts.seedCatalog(t, 3)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, bookID, 1), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/admin/books/"+bookID, nil, token)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Type)

	rec = ts.do(t, http.MethodGet, "/admin/books/"+bookID+"/order_status", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var status bookdomain.OrderStatusResponse
	decodeData(t, rec, &status)
	assert.Equal(t, int64(1), status.PendingOrders)
	assert.False(t, status.CanDelete)
}

func TestBookImagesMainCover(t *testing.T) {
	ts := newTestServer(t)
	_, bookID := ts.seedCatalog(t, 1)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	var first, second bookdomain.ImageResponse
	rec := ts.do(t, http.MethodPost, "/admin/books/"+bookID+"/images", map[string]any{
		"url":           "https://cdn.zoonova.com/cover-1.jpg",
		"type":          "cover",
		"is_main_cover": true,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &first)

	rec = ts.do(t, http.MethodPost, "/admin/books/"+bookID+"/images", map[string]any{
		"url":  "https://cdn.zoonova.com/cover-2.jpg",
		"type": "cover",
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, rec, &second)

	rec = ts.do(t, http.MethodPost, "/admin/books/"+bookID+"/images/"+second.ID+"/main_cover", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/books/"+bookID+"/images", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var images []bookdomain.ImageResponse
	decodeData(t, rec, &images)
	mains := 0
	for _, img := range images {
		if img.IsMainCover {
			mains++
			assert.Equal(t, second.ID, img.ID)
		}
	}
	assert.Equal(t, 1, mains)
}
