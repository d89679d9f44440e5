package models

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

type OrderModel struct {
	ID             string             `gorm:"primaryKey;type:uuid"`
	UserID         string             `gorm:"type:uuid;not null;index"`
	EventID        string             `gorm:"type:uuid;not null"`
	GatewayOrderID string             `gorm:"column:razorpay_order_id;not null;uniqueIndex"`
	Amount         int64              `gorm:"not null"`
	Currency       string             `gorm:"size:3;not null"`
	Status         domain.OrderStatus `gorm:"type:varchar(16);not null;index:idx_orders_status_updated"`
	PaymentMethod  *string
	Notes          string         `gorm:"type:jsonb;not null"`
	Payments       []PaymentModel `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index:idx_orders_status_updated"`
}

func (OrderModel) TableName() string {
	return "orders"
}

type PaymentModel struct {
	ID               string               `gorm:"primaryKey;type:uuid"`
	OrderID          string               `gorm:"type:uuid;not null;index"`
	GatewayPaymentID string               `gorm:"column:razorpay_payment_id;not null;uniqueIndex"`
	GatewaySignature string               `gorm:"column:razorpay_signature"`
	Status           domain.PaymentStatus `gorm:"type:varchar(16);not null"`
	Amount           int64                `gorm:"not null"`
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}
