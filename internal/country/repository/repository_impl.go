package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/zoonova/internal/country/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const selectColumns = `SELECT id, name, code, shipping_cost, is_active, created_at, updated_at FROM countries`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO countries (id, name, code, shipping_cost, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		country.ID,
		country.Name,
		country.Code,
		country.ShippingCost,
		country.IsActive,
		country.CreatedAt,
		country.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	return db.WithContext(ctx).Exec(
		`UPDATE countries SET name = ?, shipping_cost = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		country.Name,
		country.ShippingCost,
		country.IsActive,
		country.UpdatedAt,
		country.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Country, error) {
	var c domain.Country
	if err := db.WithContext(ctx).Raw(selectColumns+` WHERE id = ?`, id).Scan(&c).Error; err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Country, error) {
	var c domain.Country
	err := db.WithContext(ctx).Raw(selectColumns+` WHERE code = ?`, strings.ToUpper(strings.TrimSpace(code))).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Country, error) {
	query := selectColumns
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	var items []domain.Country
	if err := db.WithContext(ctx).Raw(query + ` ORDER BY name ASC`).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
