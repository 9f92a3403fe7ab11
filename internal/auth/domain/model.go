// Package domain contains core types for admin accounts and their sessions.
package domain

import (
	"strings"
	"time"
)

const (
	RoleStaff     = "staff"
	RoleSuperuser = "superuser"
)

// Admin is a back-office account.
type Admin struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName    string     `gorm:"type:varchar(150)"`
	LastName     string     `gorm:"type:varchar(150)"`
	PasswordHash string     `gorm:"type:text;not null"`
	IsActive     bool       `gorm:"not null;default:true"`
	IsSuperuser  bool       `gorm:"not null;default:false"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (Admin) TableName() string { return "admins" }

func (a Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

func (a Admin) Role() string {
	if a.IsSuperuser {
		return RoleSuperuser
	}
	return RoleStaff
}

// Session is a persisted login. Only the sha256 of the bearer token is stored.
type Session struct {
	ID         int64      `gorm:"primaryKey"`
	AdminID    int64      `gorm:"column:admin_id;not null;index"`
	TokenHash  string     `gorm:"column:token_hash;type:varchar(64);not null;uniqueIndex"`
	IPAddress  string     `gorm:"column:ip_address;type:varchar(64)"`
	UserAgent  string     `gorm:"column:user_agent;type:varchar(500)"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null;index"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	LastSeenAt time.Time  `gorm:"column:last_seen_at;not null"`
}

func (Session) TableName() string { return "admin_sessions" }

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	AdminID     int64
	SessionID   int64
	Email       string
	IsSuperuser bool
}

func (i Identity) Role() string {
	if i.IsSuperuser {
		return RoleSuperuser
	}
	return RoleStaff
}
