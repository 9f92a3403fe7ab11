package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Status    Status
	CountryID int64
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    string
	OrderBy   string
}

type Totals struct {
	Orders  int64
	Revenue int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID int64) ([]OrderItem, error)
	FindItemsForOrders(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]OrderItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)
	UpdateFulfillment(ctx context.Context, db *gorm.DB, order *Order) error
	// SetPaymentReferences overwrites both Stripe references.
	SetPaymentReferences(ctx context.Context, db *gorm.DB, id int64, intentID, sessionID *string, now time.Time) error
	SetCheckoutSession(ctx context.Context, db *gorm.DB, id int64, sessionID string, now time.Time) error
	CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error)
	Totals(ctx context.Context, db *gorm.DB, since *time.Time) (Totals, error)
}
