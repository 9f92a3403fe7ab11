package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID             int64               `gorm:"primaryKey"`
	Title          string              `gorm:"type:varchar(200);not null"`
	Author         string              `gorm:"type:varchar(200);not null"`
	Description    string              `gorm:"type:text"`
	Caption        string              `gorm:"type:text"`
	Price          int64               `gorm:"not null;default:0"`
	ISBN           *string             `gorm:"column:isbn;type:varchar(20);uniqueIndex"`
	PageCount      *int                `gorm:"column:page_count"`
	WidthCM        decimal.NullDecimal `gorm:"column:width_cm;type:decimal(6,2)"`
	HeightCM       decimal.NullDecimal `gorm:"column:height_cm;type:decimal(6,2)"`
	ThicknessCM    decimal.NullDecimal `gorm:"column:thickness_cm;type:decimal(6,2)"`
	WeightGrams    *int                `gorm:"column:weight_grams"`
	PublishedOn    *time.Time          `gorm:"column:published_on"`
	Publisher      string              `gorm:"type:varchar(200)"`
	Language       string              `gorm:"type:varchar(50);not null;default:'Français'"`
	Quantity       int                 `gorm:"not null;default:0"`
	Slug           string              `gorm:"type:varchar(220);not null;uniqueIndex"`
	SEOTitle       string              `gorm:"column:seo_title;type:varchar(200)"`
	SEODescription string              `gorm:"column:seo_description;type:varchar(300)"`
	ViewsCount     int64               `gorm:"not null;default:0"`
	SalesCount     int64               `gorm:"not null;default:0"`
	IsActive       bool                `gorm:"not null"`
	IsFeatured     bool                `gorm:"not null;default:false"`
	CreatedAt      time.Time           `gorm:"not null"`
	UpdatedAt      time.Time           `gorm:"not null"`
}

func (Book) TableName() string { return "books" }

func (b Book) InStock() bool { return b.Quantity > 0 }

type ImageType string

const (
	ImageCover    ImageType = "cover"
	ImageBack     ImageType = "back"
	ImageInterior ImageType = "interior"
	ImageOther    ImageType = "other"
)

func (t ImageType) Valid() bool {
	switch t {
	case ImageCover, ImageBack, ImageInterior, ImageOther:
		return true
	}
	return false
}

type BookImage struct {
	ID          int64     `gorm:"primaryKey"`
	BookID      int64     `gorm:"not null;index"`
	URL         string    `gorm:"column:url;type:text;not null"`
	Type        ImageType `gorm:"type:varchar(20);not null;default:'cover'"`
	IsMainCover bool      `gorm:"not null;default:false"`
	Position    int       `gorm:"not null;default:0"`
	AltText     string    `gorm:"type:varchar(200)"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (BookImage) TableName() string { return "book_images" }

// OrderUsage counts the orders referencing a book, grouped by fulfillment status.
type OrderUsage struct {
	Pending   int64
	Delivered int64
}
