package models

import (
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

// OrderStatusHistoryModel is written in the same transaction as the status change.
type OrderStatusHistoryModel struct {
	ID         uint               `gorm:"primaryKey"`
	OrderID    string             `gorm:"type:uuid;index;not null"`
	FromStatus domain.OrderStatus `gorm:"type:varchar(16);not null"`
	ToStatus   domain.OrderStatus `gorm:"type:varchar(16);not null"`
	Source     string             `gorm:"type:varchar(16);not null"`
	Reason     string
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// WebhookEventModel records each gateway delivery for redelivery checks.
type WebhookEventModel struct {
	EventID     string `gorm:"primaryKey"`
	Kind        string `gorm:"not null;index"`
	Payload     string `gorm:"type:text;not null"`
	Processed   bool   `gorm:"not null;default:false"`
	Error       string
	ReceivedAt  time.Time  `gorm:"not null"`
	ProcessedAt *time.Time `gorm:"default:null"`
}

func (WebhookEventModel) TableName() string {
	return "webhook_events"
}
