package domain

import "time"

type PaymentStatus string

const (
	PaymentCaptured PaymentStatus = "captured"
	PaymentFailed   PaymentStatus = "failed"
)

type Payment struct {
	ID               string
	OrderID          string
	GatewayPaymentID string
	GatewaySignature string
	Status           PaymentStatus
	Amount           int64
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
