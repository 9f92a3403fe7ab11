package domain

import (
	"strings"
	"time"

	countrydomain "github.com/smallbiznis/zoonova/internal/country/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDelivered
}

// Order is a customer purchase. Fulfillment (Status) and payment progress
// (the Stripe references and stripe_payments rows) are independent axes.
type Order struct {
	ID                      int64      `gorm:"primaryKey"`
	Email                   string     `gorm:"type:varchar(254);not null;index"`
	FirstName               string     `gorm:"type:varchar(100);not null"`
	LastName                string     `gorm:"type:varchar(100);not null"`
	Phone                   string     `gorm:"type:varchar(30)"`
	Street                  string     `gorm:"type:varchar(200);not null"`
	StreetNumber            string     `gorm:"type:varchar(20)"`
	AddressComplement       string     `gorm:"type:varchar(200)"`
	PostalCode              string     `gorm:"type:varchar(20);not null"`
	City                    string     `gorm:"type:varchar(100);not null"`
	CountryID               int64      `gorm:"not null;index"`
	Subtotal                int64      `gorm:"not null"`
	ShippingCost            int64      `gorm:"not null"`
	Total                   int64      `gorm:"not null"`
	Status                  Status     `gorm:"type:varchar(20);not null;default:'pending';index"`
	StripePaymentIntentID   *string    `gorm:"type:varchar(255);uniqueIndex"`
	StripeCheckoutSessionID *string    `gorm:"type:varchar(255)"`
	TrackingNumber          *string    `gorm:"type:varchar(100)"`
	DeliveredAt             *time.Time `gorm:"column:delivered_at"`
	Notes                   string     `gorm:"type:text"`
	CreatedAt               time.Time  `gorm:"not null;index"`
	UpdatedAt               time.Time  `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

func (o Order) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

type OrderItem struct {
	ID        int64  `gorm:"primaryKey"`
	OrderID   int64  `gorm:"not null;index"`
	BookID    int64  `gorm:"not null;index"`
	BookTitle string `gorm:"type:varchar(200);not null"`
	UnitPrice int64  `gorm:"not null"`
	Quantity  int    `gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i OrderItem) Subtotal() int64 { return i.UnitPrice * int64(i.Quantity) }

func (i OrderItem) BookQuantity() int { return i.Quantity }

// Detail is an order loaded with its lines and destination.
type Detail struct {
	Order   Order
	Items   []OrderItem
	Country countrydomain.Country
}

// FullAddress renders "number street[, complement], postal city, country".
func (d Detail) FullAddress() string {
	o := d.Order
	line := strings.TrimSpace(o.StreetNumber + " " + o.Street)
	if c := strings.TrimSpace(o.AddressComplement); c != "" {
		line += ", " + c
	}
	return line + ", " + strings.TrimSpace(o.PostalCode+" "+o.City) + ", " + d.Country.Name
}

// StatusEmail is the customer email a fulfillment update triggers.
type StatusEmail string

const (
	StatusEmailNone      StatusEmail = ""
	StatusEmailDelivered StatusEmail = "delivered"
	StatusEmailShipped   StatusEmail = "shipped"
)

type StatusChange struct {
	Previous Status
	Current  Status
	Email    StatusEmail
}
