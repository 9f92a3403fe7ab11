package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
	"github.com/smallbiznis/zoonova/internal/authorization"
	bookdomain "github.com/smallbiznis/zoonova/internal/book/domain"
	contactdomain "github.com/smallbiznis/zoonova/internal/contact/domain"
	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
	orderdomain "github.com/smallbiznis/zoonova/internal/order/domain"
	paymentdomain "github.com/smallbiznis/zoonova/internal/payment/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

// classifyErrorForLog feeds the request logger with the same type/code the
// client receives.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var providerErr *paymentdomain.ProviderError
	if errors.As(err, &providerErr) {
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_error",
			Message: providerErr.Message,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err, code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authdomain.ErrAccountDisabled):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "account disabled",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, bookdomain.ErrBookHasPendingOrders):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "book is referenced by pending orders and cannot be deleted",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, bookdomain.ErrDuplicateBook),
		errors.Is(err, countrydomain.ErrDuplicateCode),
		errors.Is(err, authdomain.ErrAdminExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrNotConfigured):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isBookValidationError(err),
		isCountryValidationError(err),
		isOrderValidationError(err),
		isPaymentValidationError(err),
		isContactValidationError(err),
		isAuthValidationError(err):
		return true
	default:
		return false
	}
}

func isBookValidationError(err error) bool {
	switch {
	case errors.Is(err, bookdomain.ErrInvalidID),
		errors.Is(err, bookdomain.ErrInvalidTitle),
		errors.Is(err, bookdomain.ErrInvalidAuthor),
		errors.Is(err, bookdomain.ErrInvalidPrice),
		errors.Is(err, bookdomain.ErrInvalidQuantity),
		errors.Is(err, bookdomain.ErrInvalidDimension),
		errors.Is(err, bookdomain.ErrInvalidPublishedOn),
		errors.Is(err, bookdomain.ErrInvalidImageURL),
		errors.Is(err, bookdomain.ErrInvalidImageType):
		return true
	default:
		return false
	}
}

func isCountryValidationError(err error) bool {
	switch {
	case errors.Is(err, countrydomain.ErrInvalidID),
		errors.Is(err, countrydomain.ErrInvalidName),
		errors.Is(err, countrydomain.ErrInvalidCode),
		errors.Is(err, countrydomain.ErrInvalidShippingCost):
		return true
	default:
		return false
	}
}

// Unknown books and short stock are reported as item errors of the order request.
func isOrderValidationError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrInvalidID),
		errors.Is(err, orderdomain.ErrInvalidEmail),
		errors.Is(err, orderdomain.ErrInvalidName),
		errors.Is(err, orderdomain.ErrInvalidAddress),
		errors.Is(err, orderdomain.ErrInvalidCountry),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, orderdomain.ErrBookNotFound),
		errors.Is(err, orderdomain.ErrInsufficientStock):
		return true
	default:
		return false
	}
}

func isPaymentValidationError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidID),
		errors.Is(err, paymentdomain.ErrInvalidOrder),
		errors.Is(err, paymentdomain.ErrInvalidStatus),
		errors.Is(err, paymentdomain.ErrAlreadyPaid):
		return true
	default:
		return false
	}
}

func isContactValidationError(err error) bool {
	switch {
	case errors.Is(err, contactdomain.ErrInvalidID),
		errors.Is(err, contactdomain.ErrInvalidName),
		errors.Is(err, contactdomain.ErrInvalidEmail),
		errors.Is(err, contactdomain.ErrMessageTooShort),
		errors.Is(err, contactdomain.ErrEmptySelection):
		return true
	default:
		return false
	}
}

func isAuthValidationError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrInvalidID),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, authdomain.ErrWrongPassword),
		errors.Is(err, authdomain.ErrCannotToggleSelf):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, bookdomain.ErrNotFound),
		errors.Is(err, bookdomain.ErrImageNotFound),
		errors.Is(err, countrydomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrNotFound),
		errors.Is(err, contactdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrAdminNotFound),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

var validationFields = map[string]string{
	"invalid_request":        "request",
	"empty_order":            "items",
	"insufficient_stock":     "items",
	"invalid_transition":     "status",
	"invalid_signature":      "Stripe-Signature",
	"invalid_payload":        "body",
	"order_already_paid":     "order_id",
	"invalid_order":          "order_id",
	"message_too_short":      "message",
	"empty_selection":        "ids",
	"weak_password":          "password",
	"invalid_password":       "old_password",
	"cannot_deactivate_self": "id",
}

func validationErrorField(err error, code string) string {
	if errors.Is(err, orderdomain.ErrBookNotFound) {
		return "items"
	}
	if field, ok := validationFields[code]; ok {
		return field
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

var validationMessages = map[string]string{
	"invalid_request":        "invalid request",
	"empty_order":            "order must contain at least one item",
	"insufficient_stock":     "not enough copies in stock",
	"book_not_found":         "book does not exist",
	"invalid_transition":     "status change not allowed",
	"invalid_signature":      "invalid webhook signature",
	"order_already_paid":     "order already has a payment",
	"message_too_short":      "message must be at least 10 characters",
	"empty_selection":        "at least one message id is required",
	"weak_password":          "password must be at least 8 characters",
	"invalid_password":       "current password is incorrect",
	"cannot_deactivate_self": "you cannot deactivate your own account",
}

func validationErrorMessage(code string) string {
	if msg, ok := validationMessages[code]; ok {
		return msg
	}
	return "invalid value"
}
