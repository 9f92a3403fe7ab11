package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	Search          string
	MinPrice        *int64
	MaxPrice        *int64
	InStock         *bool
	Featured        *bool
	IncludeInactive bool
	SortBy          string
	OrderBy         string
}

type Flag string

const (
	FlagActive   Flag = "active"
	FlagFeatured Flag = "featured"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, book *Book) error
	Update(ctx context.Context, db *gorm.DB, book *Book) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Book, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Book, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Book, error)
	IncrementViews(ctx context.Context, db *gorm.DB, id int64) error
	// DecrementStock removes qty from stock only when enough remains and
	// returns the number of rows changed (0 or 1).
	DecrementStock(ctx context.Context, db *gorm.DB, id int64, qty int, now time.Time) (int64, error)
	SetQuantity(ctx context.Context, db *gorm.DB, id int64, qty int, now time.Time) error
	SetFlag(ctx context.Context, db *gorm.DB, id int64, flag Flag, value bool, now time.Time) error

	OrderUsage(ctx context.Context, db *gorm.DB, id int64) (OrderUsage, error)
	DeleteOrderItems(ctx context.Context, db *gorm.DB, id int64) error

	InsertImage(ctx context.Context, db *gorm.DB, image *BookImage) error
	ListImages(ctx context.Context, db *gorm.DB, bookID int64) ([]BookImage, error)
	ListImagesForBooks(ctx context.Context, db *gorm.DB, bookIDs []int64) ([]BookImage, error)
	FindImage(ctx context.Context, db *gorm.DB, bookID, imageID int64) (*BookImage, error)
	DeleteImage(ctx context.Context, db *gorm.DB, bookID, imageID int64) error
	ClearMainCover(ctx context.Context, db *gorm.DB, bookID int64, now time.Time) error
	MarkMainCover(ctx context.Context, db *gorm.DB, bookID, imageID int64, now time.Time) error
}
