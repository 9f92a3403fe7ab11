package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/authorization"
	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"insufficient stock", orderdomain.ErrInsufficientStock, http.StatusBadRequest, "validation_error"},
		{"wrapped validation", fmt.Errorf("create order: %w", orderdomain.ErrInvalidEmail), http.StatusBadRequest, "validation_error"},
		{"already paid", paymentdomain.ErrAlreadyPaid, http.StatusBadRequest, "validation_error"},
		{"invalid signature", paymentdomain.ErrInvalidSignature, http.StatusBadRequest, "validation_error"},
		{"order not found", orderdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"book not found", bookdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"admin not found", authdomain.ErrAdminNotFound, http.StatusNotFound, "not_found"},
		{"session expired", authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"disabled", authdomain.ErrAccountDisabled, http.StatusForbidden, "forbidden"},
		{"duplicate book", bookdomain.ErrDuplicateBook, http.StatusConflict, "conflict"},
		{"pending orders", bookdomain.ErrBookHasPendingOrders, http.StatusConflict, "conflict"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"not configured", paymentdomain.ErrNotConfigured, http.StatusServiceUnavailable, "service_unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorProviderMessage(t *testing.T) {
	err := fmt.Errorf("checkout: %w", &paymentdomain.ProviderError{StatusCode: 400, Message: "Invalid currency: xyz"})

	status, payload := mapError(err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "provider_error", payload.Type)
	assert.Equal(t, "Invalid currency: xyz", payload.Message)
}

func TestMapErrorValidationFields(t *testing.T) {
	_, payload := mapError(bookdomain.ErrInvalidPrice)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "price", payload.Errors[0].Field)
		assert.Equal(t, "invalid_price", payload.Errors[0].Code)
	}

	_, payload = mapError(newValidationError("quantity", "required", "quantity is required"))
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "quantity is required", payload.Errors[0].Message)
	}
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(orderdomain.ErrInsufficientStock)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "insufficient_stock", code)

	typ, code = classifyErrorForLog(orderdomain.ErrNotFound)
	assert.Equal(t, "not_found", typ)
	assert.Equal(t, "not_found", code)
}
