package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	MarkRead(ctx context.Context, id string) (*Response, error)
	MarkUnread(ctx context.Context, id string) (*Response, error)
	MarkReplied(ctx context.Context, id string, adminNotes string) (*Response, error)
	BulkMarkRead(ctx context.Context, ids []string) (int64, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

// Notifier is told about every stored message after commit.
type Notifier interface {
	MessageReceived(ctx context.Context, msg Message)
}

type CreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

type ListRequest struct {
	IsRead *bool
	Search string
}

type Response struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message"`
	IsRead     bool       `json:"is_read"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
	AdminNotes string     `json:"admin_notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Statistics struct {
	TotalMessages   int64 `json:"total_messages"`
	UnreadMessages  int64 `json:"unread_messages"`
	RepliedMessages int64 `json:"replied_messages"`
	PendingMessages int64 `json:"pending_messages"`
	LastSevenDays   int64 `json:"last_7_days"`
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidEmail    = errors.New("invalid_email")
	ErrMessageTooShort = errors.New("message_too_short")
	ErrEmptySelection  = errors.New("empty_selection")
	ErrNotFound        = errors.New("contact_message_not_found")
)
