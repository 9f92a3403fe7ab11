package repository

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/zoonova/internal/order/domain"
	"github.com/smallbiznis/zoonova/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) InsertItems(ctx context.Context, db *gorm.DB, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Raw(`SELECT * FROM orders WHERE id = ?`, id).Scan(&o).Error; err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, book_id, book_title, unit_price, quantity
		 FROM order_items WHERE order_id = ? ORDER BY id ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindItemsForOrders(ctx context.Context, db *gorm.DB, orderIDs []int64) ([]domain.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, book_id, book_title, unit_price, quantity
		 FROM order_items WHERE order_id IN ? ORDER BY id ASC`,
		orderIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CountryID != 0 {
		stmt = stmt.Where("country_id = ?", filter.CountryID)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"(LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(COALESCE(tracking_number, '')) LIKE ?)",
			like, like, like, like,
		)
	}
	if filter.StartDate != nil {
		stmt = stmt.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		stmt = stmt.Where("created_at <= ?", *filter.EndDate)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"total":      true,
	})).Apply(stmt)

	var items []domain.Order
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateFulfillment(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET status = ?, tracking_number = ?, delivered_at = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		order.Status,
		order.TrackingNumber,
		order.DeliveredAt,
		order.Notes,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) SetPaymentReferences(ctx context.Context, db *gorm.DB, id int64, intentID, sessionID *string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET stripe_payment_intent_id = ?, stripe_checkout_session_id = ?, updated_at = ?
		 WHERE id = ?`,
		intentID,
		sessionID,
		now.UTC(),
		id,
	).Error
}

func (r *repo) SetCheckoutSession(ctx context.Context, db *gorm.DB, id int64, sessionID string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET stripe_checkout_session_id = ?, updated_at = ? WHERE id = ?`,
		sessionID,
		now.UTC(),
		id,
	).Error
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (map[domain.Status]int64, error) {
	var rows []struct {
		Status domain.Status
		Total  int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT status, COUNT(*) AS total FROM orders GROUP BY status`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *repo) Totals(ctx context.Context, db *gorm.DB, since *time.Time) (domain.Totals, error) {
	query := `SELECT COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue FROM orders`
	args := []interface{}{}
	if since != nil {
		query += ` WHERE created_at >= ?`
		args = append(args, *since)
	}
	var totals domain.Totals
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&totals).Error; err != nil {
		return domain.Totals{}, err
	}
	return totals, nil
}
