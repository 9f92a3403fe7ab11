package domain

import "time"

// Country is a shipping destination. Name doubles as the shipping rate label.
type Country struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Code         string    `gorm:"type:varchar(2);not null;uniqueIndex"`
	ShippingCost int64     `gorm:"not null;default:0"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Country) TableName() string { return "countries" }
