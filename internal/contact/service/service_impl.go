package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/smallbiznis/zoonova/internal/clock"
	"github.com/smallbiznis/zoonova/internal/contact/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minMessageLength = 10

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Notifier domain.Notifier
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	notifier domain.Notifier
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("contact.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		notifier: p.Notifier,
		validate: validator.New(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	body := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(body) < minMessageLength {
		return nil, domain.ErrMessageTooShort
	}

	now := s.clock.Now()
	msg := &domain.Message{
		ID:        s.genID.Generate().Int64(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Subject:   strings.TrimSpace(req.Subject),
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, msg); err != nil {
		return nil, err
	}

	s.log.Info("contact message received", zap.Int64("message_id", msg.ID))
	s.notifier.MessageReceived(ctx, *msg)

	resp := toResponse(msg)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{IsRead: req.IsRead, Search: req.Search})
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(m domain.Message, _ int) domain.Response { return toResponse(&m) }), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	msg, err := s.find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(msg)
	return &resp, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) (*domain.Response, error) {
	return s.update(ctx, id, func(m *domain.Message, _ time.Time) { m.IsRead = true })
}

func (s *Service) MarkUnread(ctx context.Context, id string) (*domain.Response, error) {
	return s.update(ctx, id, func(m *domain.Message, _ time.Time) { m.IsRead = false })
}

// MarkReplied marks the message read and replied. Empty notes keep the
// existing admin notes.
func (s *Service) MarkReplied(ctx context.Context, id string, adminNotes string) (*domain.Response, error) {
	return s.update(ctx, id, func(m *domain.Message, now time.Time) {
		m.IsRead = true
		m.RepliedAt = &now
		if notes := strings.TrimSpace(adminNotes); notes != "" {
			m.AdminNotes = notes
		}
	})
}

func (s *Service) update(ctx context.Context, id string, mutate func(*domain.Message, time.Time)) (*domain.Response, error) {
	var out *domain.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		mutate(msg, now)
		msg.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, msg); err != nil {
			return err
		}
		out = msg
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toResponse(out)
	return &resp, nil
}

func (s *Service) BulkMarkRead(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.ErrEmptySelection
	}
	parsed := make([]int64, 0, len(ids))
	for _, raw := range ids {
		id, err := parseID(raw)
		if err != nil {
			return 0, err
		}
		parsed = append(parsed, id)
	}
	return s.repo.MarkRead(ctx, s.db, lo.Uniq(parsed), s.clock.Now())
}

func (s *Service) Statistics(ctx context.Context) (*domain.Statistics, error) {
	counts, err := s.repo.Counts(ctx, s.db, s.clock.Now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	return &domain.Statistics{
		TotalMessages:   counts.Total,
		UnreadMessages:  counts.Unread,
		RepliedMessages: counts.Replied,
		PendingMessages: counts.Total - counts.Replied,
		LastSevenDays:   counts.LastWeek,
	}, nil
}

func (s *Service) find(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	msgID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	msg, err := s.repo.FindByID(ctx, db, msgID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, domain.ErrNotFound
	}
	return msg, nil
}

func parseID(id string) (int64, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed.Int64() <= 0 {
		return 0, domain.ErrInvalidID
	}
	return parsed.Int64(), nil
}

func toResponse(m *domain.Message) domain.Response {
	return domain.Response{
		ID:         snowflake.ID(m.ID).String(),
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		FullName:   m.FullName(),
		Email:      m.Email,
		Subject:    m.Subject,
		Message:    m.Body,
		IsRead:     m.IsRead,
		RepliedAt:  m.RepliedAt,
		AdminNotes: m.AdminNotes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
