package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/zoonova/internal/book/domain"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLanguage = "Français"
	dateLayout      = "2006-01-02"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("book.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Search:          strings.TrimSpace(req.Search),
		MinPrice:        req.MinPrice,
		MaxPrice:        req.MaxPrice,
		InStock:         req.InStock,
		Featured:        req.Featured,
		IncludeInactive: req.IncludeInactive,
		SortBy:          strings.TrimSpace(req.SortBy),
		OrderBy:         strings.TrimSpace(req.OrderBy),
	})
	if err != nil {
		return nil, err
	}

	ids := lo.Map(items, func(b domain.Book, _ int) int64 { return b.ID })
	images, err := s.repo.ListImagesForBooks(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byBook := lo.GroupBy(images, func(img domain.BookImage) int64 { return img.BookID })

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], byBook[items[i].ID]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, book)
}

func (s *Service) View(ctx context.Context, id string) (*domain.Response, error) {
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if !book.IsActive {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.IncrementViews(ctx, s.db, book.ID); err != nil {
		s.log.Warn("failed to count book view", zap.Int64("book_id", book.ID), zap.Error(err))
	} else {
		book.ViewsCount++
	}
	return s.respond(ctx, book)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	author := strings.TrimSpace(req.Author)
	if author == "" {
		return nil, domain.ErrInvalidAuthor
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	book := &domain.Book{
		ID:             s.genID.Generate().Int64(),
		Title:          title,
		Author:         author,
		Description:    strings.TrimSpace(req.Description),
		Caption:        strings.TrimSpace(req.Caption),
		Price:          req.Price,
		ISBN:           normalizeOptional(req.ISBN),
		PageCount:      req.PageCount,
		WeightGrams:    req.WeightGrams,
		Publisher:      strings.TrimSpace(req.Publisher),
		Language:       strings.TrimSpace(req.Language),
		Quantity:       req.Quantity,
		SEOTitle:       strings.TrimSpace(req.SEOTitle),
		SEODescription: strings.TrimSpace(req.SEODescription),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if book.Language == "" {
		book.Language = defaultLanguage
	}
	if req.IsActive != nil {
		book.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		book.IsFeatured = *req.IsFeatured
	}

	var err error
	if book.WidthCM, err = parseDimension(req.WidthCM); err != nil {
		return nil, err
	}
	if book.HeightCM, err = parseDimension(req.HeightCM); err != nil {
		return nil, err
	}
	if book.ThicknessCM, err = parseDimension(req.ThicknessCM); err != nil {
		return nil, err
	}
	if book.PublishedOn, err = parseDate(req.PublishedOn); err != nil {
		return nil, err
	}

	imageURLs := make([]string, 0, len(req.Images))
	for _, raw := range req.Images {
		u, err := validateImageURL(raw)
		if err != nil {
			return nil, err
		}
		imageURLs = append(imageURLs, u)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book.Slug, err = s.uniqueSlug(ctx, tx, req.Slug, title, 0)
		if err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, book); err != nil {
			return err
		}
		for i, u := range imageURLs {
			img := &domain.BookImage{
				ID:          s.genID.Generate().Int64(),
				BookID:      book.ID,
				URL:         u,
				Type:        domain.ImageCover,
				IsMainCover: i == 0,
				Position:    i,
				AltText:     title,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if i > 0 {
				img.Type = domain.ImageOther
			}
			if err := s.repo.InsertImage(ctx, tx, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateBook
		}
		return nil, err
	}

	s.log.Info("book created", zap.Int64("book_id", book.ID), zap.String("slug", book.Slug))
	return s.respond(ctx, book)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	book, err := s.find(ctx, s.db, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.ErrInvalidTitle
		}
		book.Title = title
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		if author == "" {
			return nil, domain.ErrInvalidAuthor
		}
		book.Author = author
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		book.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		book.Quantity = *req.Quantity
	}
	if req.Description != nil {
		book.Description = strings.TrimSpace(*req.Description)
	}
	if req.Caption != nil {
		book.Caption = strings.TrimSpace(*req.Caption)
	}
	if req.ISBN != nil {
		book.ISBN = normalizeOptional(req.ISBN)
	}
	if req.PageCount != nil {
		book.PageCount = req.PageCount
	}
	if req.WeightGrams != nil {
		book.WeightGrams = req.WeightGrams
	}
	if req.WidthCM != nil {
		if book.WidthCM, err = parseDimension(req.WidthCM); err != nil {
			return nil, err
		}
	}
	if req.HeightCM != nil {
		if book.HeightCM, err = parseDimension(req.HeightCM); err != nil {
			return nil, err
		}
	}
	if req.ThicknessCM != nil {
		if book.ThicknessCM, err = parseDimension(req.ThicknessCM); err != nil {
			return nil, err
		}
	}
	if req.PublishedOn != nil {
		if book.PublishedOn, err = parseDate(req.PublishedOn); err != nil {
			return nil, err
		}
	}
	if req.Publisher != nil {
		book.Publisher = strings.TrimSpace(*req.Publisher)
	}
	if req.Language != nil {
		book.Language = strings.TrimSpace(*req.Language)
		if book.Language == "" {
			book.Language = defaultLanguage
		}
	}
	if req.SEOTitle != nil {
		book.SEOTitle = strings.TrimSpace(*req.SEOTitle)
	}
	if req.SEODescription != nil {
		book.SEODescription = strings.TrimSpace(*req.SEODescription)
	}
	if req.IsActive != nil {
		book.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		book.IsFeatured = *req.IsFeatured
	}
	book.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Slug != nil {
			book.Slug, err = s.uniqueSlug(ctx, tx, *req.Slug, book.Title, book.ID)
			if err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, book)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateBook
		}
		return nil, err
	}
	return s.respond(ctx, book)
}

// Delete refuses while any pending order still references the book. Delivered
// order lines are removed with it.
func (s *Service) Delete(ctx context.Context, id string) error {
	bookID, err := parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		book, err := s.repo.FindByID(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if book == nil {
			return domain.ErrNotFound
		}

		usage, err := s.repo.OrderUsage(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if usage.Pending > 0 {
			return domain.ErrBookHasPendingOrders
		}

		if err := s.repo.DeleteOrderItems(ctx, tx, bookID); err != nil {
			return err
		}
		images, err := s.repo.ListImages(ctx, tx, bookID)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := s.repo.DeleteImage(ctx, tx, bookID, img.ID); err != nil {
				return err
			}
		}
		if err := s.repo.Delete(ctx, tx, bookID); err != nil {
			return err
		}

		s.log.Info("book deleted",
			zap.Int64("book_id", bookID),
			zap.Int64("delivered_orders", usage.Delivered),
		)
		return nil
	})
}

func (s *Service) UpdateStock(ctx context.Context, id string, quantity int) (*domain.Response, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetQuantity(ctx, s.db, book.ID, quantity, s.clock.Now()); err != nil {
		return nil, err
	}
	book.Quantity = quantity
	book.UpdatedAt = s.clock.Now()
	return s.respond(ctx, book)
}

func (s *Service) ToggleFeatured(ctx context.Context, id string) (*domain.Response, error) {
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	book.IsFeatured = !book.IsFeatured
	book.UpdatedAt = s.clock.Now()
	if err := s.repo.SetFlag(ctx, s.db, book.ID, domain.FlagFeatured, book.IsFeatured, book.UpdatedAt); err != nil {
		return nil, err
	}
	return s.respond(ctx, book)
}

func (s *Service) ToggleActive(ctx context.Context, id string) (*domain.Response, error) {
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	book.IsActive = !book.IsActive
	book.UpdatedAt = s.clock.Now()
	if err := s.repo.SetFlag(ctx, s.db, book.ID, domain.FlagActive, book.IsActive, book.UpdatedAt); err != nil {
		return nil, err
	}
	return s.respond(ctx, book)
}

func (s *Service) OrderStatus(ctx context.Context, id string) (*domain.OrderStatusResponse, error) {
	book, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	usage, err := s.repo.OrderUsage(ctx, s.db, book.ID)
	if err != nil {
		return nil, err
	}
	return &domain.OrderStatusResponse{
		BookID:          snowflake.ID(book.ID).String(),
		PendingOrders:   usage.Pending,
		DeliveredOrders: usage.Delivered,
		TotalOrders:     usage.Pending + usage.Delivered,
		CanDelete:       usage.Pending == 0,
	}, nil
}

func (s *Service) find(ctx context.Context, conn *gorm.DB, id string) (*domain.Book, error) {
	bookID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	book, err := s.repo.FindByID(ctx, conn, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}
	return book, nil
}

func (s *Service) respond(ctx context.Context, book *domain.Book) (*domain.Response, error) {
	images, err := s.repo.ListImages(ctx, s.db, book.ID)
	if err != nil {
		return nil, err
	}
	resp := toResponse(book, images)
	return &resp, nil
}

// uniqueSlug derives a slug from the requested value (or the title) and
// suffixes -2, -3, ... until no other book uses it.
func (s *Service) uniqueSlug(ctx context.Context, tx *gorm.DB, requested, title string, selfID int64) (string, error) {
	base := slug.Make(strings.TrimSpace(requested))
	if base == "" {
		base = slug.Make(title)
	}
	if base == "" {
		base = "livre"
	}

	candidate := base
	for i := 2; ; i++ {
		var owner int64
		err := tx.WithContext(ctx).Raw(`SELECT id FROM books WHERE slug = ? LIMIT 1`, candidate).Scan(&owner).Error
		if err != nil {
			return "", err
		}
		if owner == 0 || owner == selfID {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func parseDimension(raw *string) (decimal.NullDecimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil || value.IsNegative() {
		return decimal.NullDecimal{}, domain.ErrInvalidDimension
	}
	return decimal.NewNullDecimal(value.Round(2)), nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil, domain.ErrInvalidPublishedOn
	}
	return &parsed, nil
}

func validateImageURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ErrInvalidImageURL
	}
	return raw, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dimensionString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.StringFixed(2)
	return &v
}

func toResponse(b *domain.Book, images []domain.BookImage) domain.Response {
	resp := domain.Response{
		ID:             snowflake.ID(b.ID).String(),
		Title:          b.Title,
		Author:         b.Author,
		Description:    b.Description,
		Caption:        b.Caption,
		Price:          b.Price,
		ISBN:           b.ISBN,
		PageCount:      b.PageCount,
		WidthCM:        dimensionString(b.WidthCM),
		HeightCM:       dimensionString(b.HeightCM),
		ThicknessCM:    dimensionString(b.ThicknessCM),
		WeightGrams:    b.WeightGrams,
		Publisher:      b.Publisher,
		Language:       b.Language,
		Quantity:       b.Quantity,
		InStock:        b.InStock(),
		Slug:           b.Slug,
		SEOTitle:       b.SEOTitle,
		SEODescription: b.SEODescription,
		ViewsCount:     b.ViewsCount,
		SalesCount:     b.SalesCount,
		IsActive:       b.IsActive,
		IsFeatured:     b.IsFeatured,
		Images:         make([]domain.ImageResponse, 0, len(images)),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if b.PublishedOn != nil {
		published := b.PublishedOn.Format(dateLayout)
		resp.PublishedOn = &published
	}
	for i := range images {
		img := toImageResponse(&images[i])
		resp.Images = append(resp.Images, img)
		if img.IsMainCover {
			cover := img
			resp.MainCover = &cover
		}
	}
	return resp
}

func toImageResponse(img *domain.BookImage) domain.ImageResponse {
	return domain.ImageResponse{
		ID:          snowflake.ID(img.ID).String(),
		BookID:      snowflake.ID(img.BookID).String(),
		URL:         img.URL,
		Type:        img.Type,
		IsMainCover: img.IsMainCover,
		Position:    img.Position,
		AltText:     img.AltText,
		CreatedAt:   img.CreatedAt,
	}
}
