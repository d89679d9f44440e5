package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultPaymentRepository struct {
	DB *gorm.DB
}

func NewDefaultPaymentRepository(db *gorm.DB) *DefaultPaymentRepository {
	return &DefaultPaymentRepository{DB: db}
}

// UpsertPayment inserts the payment or updates the row with the same gateway
// payment id. A captured row is never downgraded to failed and an empty
// signature never overwrites a stored one.
func (r *DefaultPaymentRepository) UpsertPayment(ctx context.Context, payment *domain.Payment) error {
	now := time.Now().UTC()
	paymentModel := mappers.ToGORMPayment(payment)
	if paymentModel.ID == "" {
		paymentModel.ID = uuid.NewString()
	}
	if paymentModel.CreatedAt.IsZero() {
		paymentModel.CreatedAt = now
	}
	paymentModel.UpdatedAt = now

	assignments := map[string]interface{}{
		"status":        payment.Status,
		"amount":        payment.Amount,
		"error_message": payment.ErrorMessage,
		"updated_at":    now,
	}
	if payment.GatewaySignature != "" {
		assignments["razorpay_signature"] = payment.GatewaySignature
	}

	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "razorpay_payment_id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{
				SQL:  "payments.status <> ? OR excluded.status = ?",
				Vars: []interface{}{domain.PaymentCaptured, domain.PaymentCaptured},
			},
		}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(paymentModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	var stored models.PaymentModel
	if err := db.First(&stored, "razorpay_payment_id = ?", payment.GatewayPaymentID).Error; err != nil {
		return fmt.Errorf("failed to reload payment: %w", err)
	}
	*payment = *mappers.ToDomainPayment(&stored)
	return nil
}

func (r *DefaultPaymentRepository) GetCapturedPayment(ctx context.Context, orderID string) (*domain.Payment, error) {
	var payment models.PaymentModel
	err := r.DB.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, domain.PaymentCaptured).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, paymentLookupError(err)
	}
	return mappers.ToDomainPayment(&payment), nil
}

func (r *DefaultPaymentRepository) GetPaymentByGatewayID(ctx context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	var payment models.PaymentModel
	if err := r.DB.WithContext(ctx).First(&payment, "razorpay_payment_id = ?", gatewayPaymentID).Error; err != nil {
		return nil, paymentLookupError(err)
	}
	return mappers.ToDomainPayment(&payment), nil
}

func paymentLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrPaymentNotFound
	}
	return fmt.Errorf("failed to load payment: %w", err)
}
