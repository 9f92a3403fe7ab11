package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// View returns an active book and counts the visit.
	View(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, id string, quantity int) (*Response, error)
	ToggleFeatured(ctx context.Context, id string) (*Response, error)
	ToggleActive(ctx context.Context, id string) (*Response, error)
	OrderStatus(ctx context.Context, id string) (*OrderStatusResponse, error)

	ListImages(ctx context.Context, bookID string) ([]ImageResponse, error)
	AddImage(ctx context.Context, req AddImageRequest) (*ImageResponse, error)
	DeleteImage(ctx context.Context, bookID, imageID string) error
	SetMainCover(ctx context.Context, bookID, imageID string) (*ImageResponse, error)
}

type ListRequest struct {
	Search          string
	MinPrice        *int64
	MaxPrice        *int64
	InStock         *bool
	Featured        *bool
	IncludeInactive bool
	SortBy          string
	OrderBy         string
}

type CreateRequest struct {
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	Description    string   `json:"description"`
	Caption        string   `json:"caption"`
	Price          int64    `json:"price"`
	ISBN           *string  `json:"isbn"`
	PageCount      *int     `json:"page_count"`
	WidthCM        *string  `json:"width_cm"`
	HeightCM       *string  `json:"height_cm"`
	ThicknessCM    *string  `json:"thickness_cm"`
	WeightGrams    *int     `json:"weight_grams"`
	PublishedOn    *string  `json:"published_on"`
	Publisher      string   `json:"publisher"`
	Language       string   `json:"language"`
	Quantity       int      `json:"quantity"`
	Slug           string   `json:"slug"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	IsActive       *bool    `json:"is_active"`
	IsFeatured     *bool    `json:"is_featured"`
	Images         []string `json:"images"`
}

type UpdateRequest struct {
	ID             string  `json:"-"`
	Title          *string `json:"title"`
	Author         *string `json:"author"`
	Description    *string `json:"description"`
	Caption        *string `json:"caption"`
	Price          *int64  `json:"price"`
	ISBN           *string `json:"isbn"`
	PageCount      *int    `json:"page_count"`
	WidthCM        *string `json:"width_cm"`
	HeightCM       *string `json:"height_cm"`
	ThicknessCM    *string `json:"thickness_cm"`
	WeightGrams    *int    `json:"weight_grams"`
	PublishedOn    *string `json:"published_on"`
	Publisher      *string `json:"publisher"`
	Language       *string `json:"language"`
	Quantity       *int    `json:"quantity"`
	Slug           *string `json:"slug"`
	SEOTitle       *string `json:"seo_title"`
	SEODescription *string `json:"seo_description"`
	IsActive       *bool   `json:"is_active"`
	IsFeatured     *bool   `json:"is_featured"`
}

type AddImageRequest struct {
	BookID      string    `json:"-"`
	URL         string    `json:"url"`
	Type        ImageType `json:"type"`
	IsMainCover bool      `json:"is_main_cover"`
	Position    int       `json:"position"`
	AltText     string    `json:"alt_text"`
}

type Response struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Author         string          `json:"author"`
	Description    string          `json:"description"`
	Caption        string          `json:"caption"`
	Price          int64           `json:"price"`
	ISBN           *string         `json:"isbn,omitempty"`
	PageCount      *int            `json:"page_count,omitempty"`
	WidthCM        *string         `json:"width_cm,omitempty"`
	HeightCM       *string         `json:"height_cm,omitempty"`
	ThicknessCM    *string         `json:"thickness_cm,omitempty"`
	WeightGrams    *int            `json:"weight_grams,omitempty"`
	PublishedOn    *string         `json:"published_on,omitempty"`
	Publisher      string          `json:"publisher"`
	Language       string          `json:"language"`
	Quantity       int             `json:"quantity"`
	InStock        bool            `json:"in_stock"`
	Slug           string          `json:"slug"`
	SEOTitle       string          `json:"seo_title"`
	SEODescription string          `json:"seo_description"`
	ViewsCount     int64           `json:"views_count"`
	SalesCount     int64           `json:"sales_count"`
	IsActive       bool            `json:"is_active"`
	IsFeatured     bool            `json:"is_featured"`
	MainCover      *ImageResponse  `json:"main_cover,omitempty"`
	Images         []ImageResponse `json:"images"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ImageResponse struct {
	ID          string    `json:"id"`
	BookID      string    `json:"book_id"`
	URL         string    `json:"url"`
	Type        ImageType `json:"type"`
	IsMainCover bool      `json:"is_main_cover"`
	Position    int       `json:"position"`
	AltText     string    `json:"alt_text"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderStatusResponse struct {
	BookID          string `json:"book_id"`
	PendingOrders   int64  `json:"pending_orders"`
	DeliveredOrders int64  `json:"delivered_orders"`
	TotalOrders     int64  `json:"total_orders"`
	CanDelete       bool   `json:"can_delete"`
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidTitle         = errors.New("invalid_title")
	ErrInvalidAuthor        = errors.New("invalid_author")
	ErrInvalidPrice         = errors.New("invalid_price")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidDimension     = errors.New("invalid_dimension")
	ErrInvalidPublishedOn   = errors.New("invalid_published_on")
	ErrInvalidImageURL      = errors.New("invalid_image_url")
	ErrInvalidImageType     = errors.New("invalid_image_type")
	ErrDuplicateBook        = errors.New("duplicate_book")
	ErrBookHasPendingOrders = errors.New("book_has_pending_orders")
	ErrNotFound             = errors.New("book_not_found")
	ErrImageNotFound        = errors.New("image_not_found")
)
