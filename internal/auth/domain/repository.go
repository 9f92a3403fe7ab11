package domain

import (
	"context"
	"time"
)

type AdminFilter struct {
	IsActive    *bool
	IsSuperuser *bool
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, admin *Admin) error
	FindByEmail(ctx context.Context, email string) (*Admin, error)
	FindByID(ctx context.Context, id int64) (*Admin, error)
	List(ctx context.Context, filter AdminFilter) ([]Admin, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type SessionRepository interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	ListActive(ctx context.Context, adminID int64, now time.Time) ([]Session, error)
	UpdateLastSeen(ctx context.Context, sessionID int64, lastSeen time.Time) error
	RevokeSession(ctx context.Context, adminID, sessionID int64, revokedAt time.Time) error
	RevokeAll(ctx context.Context, adminID int64, revokedAt time.Time) (int64, error)
}
