package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/zoonova/internal/book/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) ListImages(ctx context.Context, bookID string) ([]domain.ImageResponse, error) {
	book, err := s.find(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}
	images, err := s.repo.ListImages(ctx, s.db, book.ID)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.ImageResponse, 0, len(images))
	for i := range images {
		resp = append(resp, toImageResponse(&images[i]))
	}
	return resp, nil
}

// AddImage stores an image URL. The first image of a book, or one flagged as
// main cover, becomes the main cover; the previous one is cleared in the same
// transaction.
func (s *Service) AddImage(ctx context.Context, req domain.AddImageRequest) (*domain.ImageResponse, error) {
	imageURL, err := validateImageURL(req.URL)
	if err != nil {
		return nil, err
	}
	imageType := req.Type
	if imageType == "" {
		imageType = domain.ImageCover
	}
	if !imageType.Valid() {
		return nil, domain.ErrInvalidImageType
	}

	book, err := s.find(ctx, s.db, req.BookID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	img := &domain.BookImage{
		ID:          s.genID.Generate().Int64(),
		BookID:      book.ID,
		URL:         imageURL,
		Type:        imageType,
		IsMainCover: req.IsMainCover,
		Position:    req.Position,
		AltText:     strings.TrimSpace(req.AltText),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if img.AltText == "" {
		img.AltText = book.Title
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.ListImages(ctx, tx, book.ID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			img.IsMainCover = true
		}
		if img.IsMainCover {
			if err := s.repo.ClearMainCover(ctx, tx, book.ID, now); err != nil {
				return err
			}
		}
		return s.repo.InsertImage(ctx, tx, img)
	})
	if err != nil {
		return nil, err
	}

	resp := toImageResponse(img)
	return &resp, nil
}

// DeleteImage removes an image; when it was the main cover the next image by
// position takes over.
func (s *Service) DeleteImage(ctx context.Context, bookID, imageID string) error {
	bID, err := parseID(bookID)
	if err != nil {
		return err
	}
	iID, err := parseID(imageID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		img, err := s.repo.FindImage(ctx, tx, bID, iID)
		if err != nil {
			return err
		}
		if img == nil {
			return domain.ErrImageNotFound
		}
		if err := s.repo.DeleteImage(ctx, tx, bID, iID); err != nil {
			return err
		}
		if !img.IsMainCover {
			return nil
		}
		remaining, err := s.repo.ListImages(ctx, tx, bID)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			return nil
		}
		return s.repo.MarkMainCover(ctx, tx, bID, remaining[0].ID, s.clock.Now())
	})
}

func (s *Service) SetMainCover(ctx context.Context, bookID, imageID string) (*domain.ImageResponse, error) {
	bID, err := parseID(bookID)
	if err != nil {
		return nil, err
	}
	iID, err := parseID(imageID)
	if err != nil {
		return nil, err
	}

	var img *domain.BookImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		img, err = s.repo.FindImage(ctx, tx, bID, iID)
		if err != nil {
			return err
		}
		if img == nil {
			return domain.ErrImageNotFound
		}
		now := s.clock.Now()
		if err := s.repo.ClearMainCover(ctx, tx, bID, now); err != nil {
			return err
		}
		return s.repo.MarkMainCover(ctx, tx, bID, iID, now)
	})
	if err != nil {
		return nil, err
	}

	img.IsMainCover = true
	s.log.Info("main cover changed",
		zap.String("book_id", snowflake.ID(bID).String()),
		zap.String("image_id", snowflake.ID(iID).String()),
	)
	resp := toImageResponse(img)
	return &resp, nil
}
