package domain

import (
	"strings"
	"time"
)

type Message struct {
	ID         int64      `gorm:"primaryKey"`
	FirstName  string     `gorm:"type:varchar(255);not null"`
	LastName   string     `gorm:"type:varchar(255);not null"`
	Email      string     `gorm:"type:varchar(254);not null"`
	Subject    string     `gorm:"type:varchar(255)"`
	Body       string     `gorm:"column:message;type:text;not null"`
	IsRead     bool       `gorm:"not null;default:false;index"`
	RepliedAt  *time.Time `gorm:"column:replied_at"`
	AdminNotes string     `gorm:"type:text"`
	CreatedAt  time.Time  `gorm:"not null;index"`
	UpdatedAt  time.Time  `gorm:"not null"`
}

func (Message) TableName() string { return "contact_messages" }

func (m Message) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}
