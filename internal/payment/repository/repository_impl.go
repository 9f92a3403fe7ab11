package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/zoonova/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, p *domain.Payment, overwrite []string) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_intent_id"}},
		DoUpdates: clause.AssignmentColumns(append(append([]string{}, overwrite...), "updated_at")),
	}).Create(p).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Payment, error) {
	return r.first(db.WithContext(ctx).Where("id = ?", id))
}

func (r *repo) FindByIntentID(ctx context.Context, db *gorm.DB, intentID string) (*domain.Payment, error) {
	return r.first(db.WithContext(ctx).Where("payment_intent_id = ?", intentID))
}

func (r *repo) first(stmt *gorm.DB) (*domain.Payment, error) {
	var item domain.Payment
	err := stmt.Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Payment, error) {
	stmt := db.WithContext(ctx).Model(&domain.Payment{})
	if filter.OrderID != 0 {
		stmt = stmt.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var items []domain.Payment
	if err := stmt.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) HasSucceeded(ctx context.Context, db *gorm.DB, orderID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM stripe_payments WHERE order_id = ? AND status = ?`,
		orderID,
		domain.StatusSucceeded,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
