package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Identity, error)
	Me(ctx context.Context, adminID int64) (*AdminResponse, error)
	List(ctx context.Context, req ListRequest) ([]AdminResponse, error)
	Create(ctx context.Context, req CreateRequest) (*AdminResponse, error)
	ToggleActive(ctx context.Context, actorID int64, targetID string) (*AdminResponse, error)
	ChangePassword(ctx context.Context, adminID int64, req ChangePasswordRequest) error
	Sessions(ctx context.Context, adminID int64) ([]SessionResponse, error)
	RevokeSession(ctx context.Context, adminID int64, sessionID string) error
	LogoutAll(ctx context.Context, adminID int64) (int64, error)
	Bootstrap(ctx context.Context, email, password string) (bool, error)
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     AdminResponse `json:"admin"`
}

type ListRequest struct {
	IsActive    *bool
	IsSuperuser *bool
}

type CreateRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
	IsSuperuser bool   `json:"is_superuser"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type AdminResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SessionResponse struct {
	ID         string    `json:"id"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
