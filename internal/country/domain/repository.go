package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, country *Country) error
	Update(ctx context.Context, db *gorm.DB, country *Country) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Country, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Country, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Country, error)
}
