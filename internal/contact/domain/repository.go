package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	IsRead *bool
	Search string
}

type Counts struct {
	Total    int64
	Unread   int64
	Replied  int64
	LastWeek int64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, msg *Message) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Message, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Message, error)
	Update(ctx context.Context, db *gorm.DB, msg *Message) error
	MarkRead(ctx context.Context, db *gorm.DB, ids []int64, at time.Time) (int64, error)
	Counts(ctx context.Context, db *gorm.DB, since time.Time) (*Counts, error)
}
