package models

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/shopspring/decimal"
)

type TicketCategoryModel struct {
	ID             string          `gorm:"primaryKey;type:uuid"`
	EventID        string          `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"not null"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalSeats     int             `gorm:"not null;check:chk_ticket_categories_total,total_seats >= 0"`
	AvailableSeats int             `gorm:"not null;check:chk_ticket_categories_available,available_seats >= 0 AND available_seats <= total_seats"`
	SortOrder      int             `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TicketCategoryModel) TableName() string {
	return "ticket_categories"
}

type TicketModel struct {
	ID               string                     `gorm:"primaryKey;type:uuid"`
	UserID           string                     `gorm:"type:uuid;not null;index"`
	EventID          string                     `gorm:"type:uuid;not null"`
	CategoryID       string                     `gorm:"type:uuid;not null"`
	TicketNumber     string                     `gorm:"not null;uniqueIndex"`
	Quantity         int                        `gorm:"not null"`
	UnitPrice        decimal.Decimal            `gorm:"type:numeric(12,2);not null"`
	TotalPrice       decimal.Decimal            `gorm:"type:numeric(12,2);not null"`
	Status           domain.TicketStatus        `gorm:"type:varchar(16);not null"`
	PaymentStatus    domain.TicketPaymentStatus `gorm:"type:varchar(16);not null"`
	OrderID          string                     `gorm:"type:uuid;not null;uniqueIndex"`
	GatewayPaymentID string                     `gorm:"column:razorpay_payment_id;index"`
	PurchasedAt      time.Time                  `gorm:"not null"`
}

func (TicketModel) TableName() string {
	return "tickets"
}
