package repository

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/zoonova/internal/book/domain"
	"github.com/smallbiznis/zoonova/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, book *domain.Book) error {
	return db.WithContext(ctx).Create(book).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, book *domain.Book) error {
	if book == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Book{}).
		Where("id = ?", book.ID).
		Select("*").
		Omit("id", "created_at", "views_count", "sales_count").
		Updates(book).Error
}

func (r *repo) SetFlag(ctx context.Context, db *gorm.DB, id int64, flag domain.Flag, value bool, now time.Time) error {
	column, ok := flagColumns[flag]
	if !ok {
		return gorm.ErrInvalidField
	}
	return db.WithContext(ctx).Exec(
		`UPDATE books SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value,
		now.UTC(),
		id,
	).Error
}

var flagColumns = map[domain.Flag]string{
	domain.FlagActive:   "is_active",
	domain.FlagFeatured: "is_featured",
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM books WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Book, error) {
	var b domain.Book
	if err := db.WithContext(ctx).Raw(`SELECT * FROM books WHERE id = ?`, id).Scan(&b).Error; err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Book
	if err := db.WithContext(ctx).Raw(`SELECT * FROM books WHERE id IN ?`, ids).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Book, error) {
	stmt := db.WithContext(ctx).Model(&domain.Book{})

	if !filter.IncludeInactive {
		stmt = stmt.Where("is_active = ?", true)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)", like, like)
	}
	if filter.MinPrice != nil {
		stmt = stmt.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		stmt = stmt.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			stmt = stmt.Where("quantity > 0")
		} else {
			stmt = stmt.Where("quantity = 0")
		}
	}
	if filter.Featured != nil {
		stmt = stmt.Where("is_featured = ?", *filter.Featured)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at":  true,
		"price":       true,
		"title":       true,
		"sales_count": true,
		"views_count": true,
	})).Apply(stmt)

	var items []domain.Book
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementViews(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`UPDATE books SET views_count = views_count + 1 WHERE id = ?`, id).Error
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id int64, qty int, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE books
		 SET quantity = quantity - ?, sales_count = sales_count + ?, updated_at = ?
		 WHERE id = ? AND quantity >= ?`,
		qty,
		qty,
		now.UTC(),
		id,
		qty,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) SetQuantity(ctx context.Context, db *gorm.DB, id int64, qty int, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE books SET quantity = ?, updated_at = ? WHERE id = ?`,
		qty,
		now.UTC(),
		id,
	).Error
}

func (r *repo) OrderUsage(ctx context.Context, db *gorm.DB, id int64) (domain.OrderUsage, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT o.status AS status, COUNT(DISTINCT o.id) AS total
		 FROM order_items oi
		 JOIN orders o ON o.id = oi.order_id
		 WHERE oi.book_id = ?
		 GROUP BY o.status`,
		id,
	).Scan(&rows).Error
	if err != nil {
		return domain.OrderUsage{}, err
	}

	var usage domain.OrderUsage
	for _, row := range rows {
		switch row.Status {
		case "pending":
			usage.Pending = row.Total
		case "delivered":
			usage.Delivered = row.Total
		}
	}
	return usage, nil
}

func (r *repo) DeleteOrderItems(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM order_items WHERE book_id = ?`, id).Error
}

func (r *repo) InsertImage(ctx context.Context, db *gorm.DB, image *domain.BookImage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO book_images (id, book_id, url, type, is_main_cover, position, alt_text, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		image.ID,
		image.BookID,
		image.URL,
		image.Type,
		image.IsMainCover,
		image.Position,
		image.AltText,
		image.CreatedAt,
		image.UpdatedAt,
	).Error
}

func (r *repo) ListImages(ctx context.Context, db *gorm.DB, bookID int64) ([]domain.BookImage, error) {
	var items []domain.BookImage
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM book_images WHERE book_id = ? ORDER BY position ASC, created_at ASC`,
		bookID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListImagesForBooks(ctx context.Context, db *gorm.DB, bookIDs []int64) ([]domain.BookImage, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	var items []domain.BookImage
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM book_images WHERE book_id IN ? ORDER BY position ASC, created_at ASC`,
		bookIDs,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindImage(ctx context.Context, db *gorm.DB, bookID, imageID int64) (*domain.BookImage, error) {
	var img domain.BookImage
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM book_images WHERE book_id = ? AND id = ?`,
		bookID,
		imageID,
	).Scan(&img).Error
	if err != nil {
		return nil, err
	}
	if img.ID == 0 {
		return nil, nil
	}
	return &img, nil
}

func (r *repo) DeleteImage(ctx context.Context, db *gorm.DB, bookID, imageID int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM book_images WHERE book_id = ? AND id = ?`, bookID, imageID).Error
}

func (r *repo) ClearMainCover(ctx context.Context, db *gorm.DB, bookID int64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE book_images SET is_main_cover = ?, updated_at = ? WHERE book_id = ? AND is_main_cover = ?`,
		false,
		now.UTC(),
		bookID,
		true,
	).Error
}

func (r *repo) MarkMainCover(ctx context.Context, db *gorm.DB, bookID, imageID int64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE book_images SET is_main_cover = ?, updated_at = ? WHERE book_id = ? AND id = ?`,
		true,
		now.UTC(),
		bookID,
		imageID,
	).Error
}
