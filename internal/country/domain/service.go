package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context, activeOnly bool) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type CreateRequest struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	ShippingCost int64  `json:"shipping_cost"`
	IsActive     *bool  `json:"is_active"`
}

type UpdateRequest struct {
	ID           string  `json:"-"`
	Name         *string `json:"name"`
	ShippingCost *int64  `json:"shipping_cost"`
	IsActive     *bool   `json:"is_active"`
}

type Response struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	ShippingCost int64     `json:"shipping_cost"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCode         = errors.New("invalid_code")
	ErrInvalidShippingCost = errors.New("invalid_shipping_cost")
	ErrDuplicateCode       = errors.New("duplicate_code")
	ErrNotFound            = errors.New("country_not_found")
)
