package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTicketRepository struct {
	DB *gorm.DB
}

func NewDefaultTicketRepository(db *gorm.DB) *DefaultTicketRepository {
	return &DefaultTicketRepository{DB: db}
}

func (r *DefaultTicketRepository) GetTicketByOrderID(ctx context.Context, orderID string) (*domain.Ticket, error) {
	var ticket models.TicketModel
	if err := r.DB.WithContext(ctx).First(&ticket, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	return mappers.ToDomainTicket(&ticket), nil
}

// SetPaymentStatusByOrder leaves refunded tickets untouched.
func (r *DefaultTicketRepository) SetPaymentStatusByOrder(ctx context.Context, orderID string, status domain.TicketPaymentStatus) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("order_id = ? AND payment_status <> ?", orderID, domain.TicketPaymentRefunded).
		Update("payment_status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update ticket payment status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CancelByOrder marks the order's tickets refunded and cancelled.
func (r *DefaultTicketRepository) CancelByOrder(ctx context.Context, orderID string) (int64, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.TicketModel{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         domain.TicketCancelled,
			"payment_status": domain.TicketPaymentRefunded,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to cancel tickets: %w", res.Error)
	}
	return res.RowsAffected, nil
}
