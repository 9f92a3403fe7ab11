package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	OrderID int64
	Status  string
}

type Repository interface {
	// Upsert inserts p or, when a row with the same payment_intent_id
	// exists, overwrites only the given columns.
	Upsert(ctx context.Context, db *gorm.DB, p *Payment, overwrite []string) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Payment, error)
	FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Payment, error)
	HasSucceeded(ctx context.Context, db *gorm.DB, orderID int64) (bool, error)
}
