package models

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

type RefundModel struct {
	ID              string              `gorm:"primaryKey;type:uuid"`
	OrderID         string              `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentID       string              `gorm:"type:uuid;not null"`
	GatewayRefundID *string             `gorm:"column:razorpay_refund_id;uniqueIndex"`
	Reason          domain.RefundReason `gorm:"type:varchar(32);not null"`
	Amount          int64               `gorm:"not null"`
	Status          domain.RefundStatus `gorm:"type:varchar(16);not null"`
	RequestedBy     string              `gorm:"type:uuid;not null;index"`
	Notes           *string
	ProcessedAt     *time.Time
	Order           *OrderModel `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RefundModel) TableName() string {
	return "refunds"
}
