package server

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderComputesTotals(t *testing.T) {
	ts := newTestServer(t)
	countryID, bookID := ts.seedCatalog(t, 5)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, bookID, 2), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var order orderdomain.Response
	decodeData(t, rec, &order)
	assert.Equal(t, int64(3998), order.Subtotal)
	assert.Equal(t, int64(471), order.ShippingCost)
	assert.Equal(t, int64(4469), order.Total)
	assert.Equal(t, orderdomain.StatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ts := newTestServer(t)
	countryID, bookID := ts.seedCatalog(t, 1)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, bookID, 2), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "items", payload.Errors[0].Field)
	assert.Equal(t, "insufficient_stock", payload.Errors[0].Code)
}

func TestCreateOrderUnknownBook(t *testing.T) {
	ts := newTestServer(t)
	countryID, _ := ts.seedCatalog(t, 1)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, "1790000000000000001", 1), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "book_not_found", payload.Errors[0].Code)
	assert.Equal(t, "items", payload.Errors[0].Field)
}

func TestCreateOrderRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/orders", []byte(`{"items":`), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Errors[0].Code)
}

func TestDownloadInvoice(t *testing.T) {
	ts := newTestServer(t)
	countryID, bookID := ts.seedCatalog(t, 5)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, bookID, 1), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var order orderdomain.Response
	decodeData(t, rec, &order)

	rec = ts.do(t, http.MethodGet, "/api/orders/"+order.ID+"/invoice", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="facture_`+order.ID+`.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = ts.do(t, http.MethodGet, "/api/orders/"+snowflake.ID(42).String()+"/invoice", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminOrderStatusAndStatistics(t *testing.T) {
	ts := newTestServer(t)
	countryID, bookID := ts.seedCatalog(t, 5)
	token := ts.loginAs(t, "staff@zoonova.com", false)

	rec := ts.do(t, http.MethodPost, "/api/orders", orderPayload(countryID, bookID, 1), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var order orderdomain.Response
	decodeData(t, rec, &order)

	rec = ts.do(t, http.MethodPatch, "/admin/orders/"+order.ID+"/status", map[string]any{"status": "teleported"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", decodeError(t, rec).Errors[0].Code)

	rec = ts.do(t, http.MethodPatch, "/admin/orders/"+order.ID+"/status", map[string]any{
		"status":          "delivered",
		"tracking_number": "6A123",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated orderdomain.Response
	decodeData(t, rec, &updated)
	assert.Equal(t, orderdomain.StatusDelivered, updated.Status)
	assert.NotNil(t, updated.DeliveredAt)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "6A123", *updated.TrackingNumber)

	rec = ts.do(t, http.MethodGet, "/admin/orders?status=delivered&start_date=2024-06-01&end_date=2024-06-30", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []orderdomain.Response
	decodeData(t, rec, &list)
	assert.Len(t, list, 1)

	rec = ts.do(t, http.MethodGet, "/admin/orders?start_date=2024-06-30&end_date=2024-06-01", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/admin/orders/statistics", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats orderdomain.Statistics
	decodeData(t, rec, &stats)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.CurrentMonthOrders)
}
