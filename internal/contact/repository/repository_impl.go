package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/zoonova/internal/contact/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Message, error) {
	var msg domain.Message
	err := db.WithContext(ctx).Where("id = ?", id).Take(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Message, error) {
	stmt := db.WithContext(ctx).Model(&domain.Message{})
	if filter.IsRead != nil {
		stmt = stmt.Where("is_read = ?", *filter.IsRead)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(message) LIKE ?)",
			like, like, like, like, like,
		)
	}

	var items []domain.Message
	if err := stmt.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, msg *domain.Message) error {
	return db.WithContext(ctx).Exec(
		`UPDATE contact_messages
		 SET is_read = ?, replied_at = ?, admin_notes = ?, updated_at = ?
		 WHERE id = ?`,
		msg.IsRead,
		msg.RepliedAt,
		msg.AdminNotes,
		msg.UpdatedAt,
		msg.ID,
	).Error
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, ids []int64, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE contact_messages SET is_read = ?, updated_at = ? WHERE id IN ?`,
		true,
		at,
		ids,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) Counts(ctx context.Context, db *gorm.DB, since time.Time) (*domain.Counts, error) {
	var out domain.Counts
	err := db.WithContext(ctx).Raw(
		`SELECT
			COUNT(1) AS total,
			COALESCE(SUM(CASE WHEN is_read = ? THEN 1 ELSE 0 END), 0) AS unread,
			COALESCE(SUM(CASE WHEN replied_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS replied,
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS last_week
		 FROM contact_messages`,
		false,
		since,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}
