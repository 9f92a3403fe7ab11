package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Detail(ctx context.Context, id string) (*Detail, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*Response, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

// Notifier receives post-commit side effects. Implementations must not block
// and must not fail the caller.
type Notifier interface {
	OrderPlaced(ctx context.Context, detail Detail)
	OrderStatusChanged(ctx context.Context, detail Detail, change StatusChange)
}

type CreateRequest struct {
	Email             string        `json:"email"`
	FirstName         string        `json:"first_name"`
	LastName          string        `json:"last_name"`
	Phone             string        `json:"phone"`
	Street            string        `json:"street"`
	StreetNumber      string        `json:"street_number"`
	AddressComplement string        `json:"address_complement"`
	PostalCode        string        `json:"postal_code"`
	City              string        `json:"city"`
	CountryID         string        `json:"country_id"`
	Notes             string        `json:"notes"`
	Items             []ItemRequest `json:"items"`
}

type ItemRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

type ListRequest struct {
	Status    string
	CountryID string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	OrderBy   string
}

type UpdateStatusRequest struct {
	ID             string  `json:"-"`
	Status         *string `json:"status"`
	TrackingNumber *string `json:"tracking_number"`
	Notes          *string `json:"notes"`
}

type Response struct {
	ID                      string         `json:"id"`
	Email                   string         `json:"email"`
	FirstName               string         `json:"first_name"`
	LastName                string         `json:"last_name"`
	FullName                string         `json:"full_name"`
	Phone                   string         `json:"phone"`
	Street                  string         `json:"street"`
	StreetNumber            string         `json:"street_number"`
	AddressComplement       string         `json:"address_complement"`
	PostalCode              string         `json:"postal_code"`
	City                    string         `json:"city"`
	Country                 CountryRef     `json:"country"`
	FullAddress             string         `json:"full_address"`
	Subtotal                int64          `json:"subtotal"`
	ShippingCost            int64          `json:"shipping_cost"`
	Total                   int64          `json:"total"`
	Status                  Status         `json:"status"`
	StripePaymentIntentID   *string        `json:"stripe_payment_intent_id,omitempty"`
	StripeCheckoutSessionID *string        `json:"stripe_checkout_session_id,omitempty"`
	TrackingNumber          *string        `json:"tracking_number,omitempty"`
	DeliveredAt             *time.Time     `json:"delivered_at,omitempty"`
	Notes                   string         `json:"notes"`
	Items                   []ItemResponse `json:"items"`
	TotalItems              int            `json:"total_items"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

type CountryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type ItemResponse struct {
	ID        string `json:"id"`
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type Statistics struct {
	TotalOrders         int64            `json:"total_orders"`
	TotalRevenue        int64            `json:"total_revenue"`
	OrdersByStatus      map[Status]int64 `json:"orders_by_status"`
	CurrentMonthOrders  int64            `json:"current_month_orders"`
	CurrentMonthRevenue int64            `json:"current_month_revenue"`
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidCountry    = errors.New("invalid_country")
	ErrEmptyOrder        = errors.New("empty_order")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrBookNotFound      = errors.New("book_not_found")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrNotFound          = errors.New("order_not_found")
)
