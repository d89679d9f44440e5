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
)

type DefaultRefundRepository struct {
	DB *gorm.DB
}

func NewDefaultRefundRepository(db *gorm.DB) *DefaultRefundRepository {
	return &DefaultRefundRepository{DB: db}
}

// CreateRefund inserts the refund. The unique order id turns a second
// request for the same order into ErrRefundAlreadyExists.
func (r *DefaultRefundRepository) CreateRefund(ctx context.Context, refund *domain.Refund) error {
	if refund.ID == "" {
		refund.ID = uuid.NewString()
	}
	refundModel := mappers.ToGORMRefund(refund)
	if err := r.DB.WithContext(ctx).Create(refundModel).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrRefundAlreadyExists
		}
		return fmt.Errorf("failed to create refund: %w", err)
	}
	refund.CreatedAt = refundModel.CreatedAt
	refund.UpdatedAt = refundModel.UpdatedAt
	return nil
}

func (r *DefaultRefundRepository) GetRefundByOrderID(ctx context.Context, orderID string) (*domain.Refund, error) {
	var refund models.RefundModel
	if err := r.DB.WithContext(ctx).First(&refund, "order_id = ?", orderID).Error; err != nil {
		return nil, refundLookupError(err)
	}
	return mappers.ToDomainRefund(&refund), nil
}

func (r *DefaultRefundRepository) GetRefundByGatewayID(ctx context.Context, gatewayRefundID string) (*domain.Refund, error) {
	var refund models.RefundModel
	if err := r.DB.WithContext(ctx).First(&refund, "razorpay_refund_id = ?", gatewayRefundID).Error; err != nil {
		return nil, refundLookupError(err)
	}
	return mappers.ToDomainRefund(&refund), nil
}

func (r *DefaultRefundRepository) GetRefundForRequester(ctx context.Context, refundID, requesterID string) (*domain.Refund, error) {
	var refund models.RefundModel
	err := r.DB.WithContext(ctx).
		Preload("Order").
		Where("id = ? AND requested_by = ?", refundID, requesterID).
		First(&refund).Error
	if err != nil {
		return nil, refundLookupError(err)
	}
	return mappers.ToDomainRefund(&refund), nil
}

// SetGatewayRefundID stores the gateway id only. The status may already have
// been advanced by the refund webhook and is left alone.
func (r *DefaultRefundRepository) SetGatewayRefundID(ctx context.Context, refundID, gatewayRefundID string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.RefundModel{}).
		Where("id = ?", refundID).
		Updates(map[string]interface{}{
			"razorpay_refund_id": gatewayRefundID,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to store gateway refund id: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRefundNotFound
	}
	return nil
}

func (r *DefaultRefundRepository) MarkProcessed(ctx context.Context, refundID, gatewayRefundID string, at time.Time) error {
	updates := map[string]interface{}{
		"status":       domain.RefundProcessed,
		"processed_at": at,
		"updated_at":   time.Now().UTC(),
	}
	if gatewayRefundID != "" {
		updates["razorpay_refund_id"] = gatewayRefundID
	}

	res := r.DB.WithContext(ctx).
		Model(&models.RefundModel{}).
		Where("id = ?", refundID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to mark refund processed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrRefundNotFound
	}
	return nil
}

// DeleteRefund drops a pending reservation. Processed refunds are kept.
func (r *DefaultRefundRepository) DeleteRefund(ctx context.Context, refundID string) error {
	err := r.DB.WithContext(ctx).
		Where("id = ? AND status = ?", refundID, domain.RefundPending).
		Delete(&models.RefundModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete refund: %w", err)
	}
	return nil
}

func refundLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRefundNotFound
	}
	return fmt.Errorf("failed to load refund: %w", err)
}
