package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel, err := mappers.ToGORMOrder(order)
	if err != nil {
		return fmt.Errorf("failed to encode order notes: %w", err)
	}
	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.CreatedAt = orderModel.CreatedAt
	order.UpdatedAt = orderModel.UpdatedAt
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, orderLookupError(err)
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).First(&order, "razorpay_order_id = ?", gatewayOrderID).Error; err != nil {
		return nil, orderLookupError(err)
	}
	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderWithPayments(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	err := r.DB.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return nil, orderLookupError(err)
	}
	return mappers.ToDomainOrder(&order), nil
}

// CompareAndSetStatus moves the order from change.From to change.To and appends
// a history row in the same transaction. It reports false when the order was
// no longer in change.From.
func (r *DefaultOrderRepository) CompareAndSetStatus(ctx context.Context, change domain.OrderStatusChange) (bool, error) {
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	applied := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.OrderModel{}).
			Where("id = ? AND status = ?", change.OrderID, change.From).
			Updates(map[string]interface{}{
				"status":     change.To,
				"updated_at": change.CreatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Create(mappers.ToGORMStatusChange(change)).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return applied, nil
}

func (r *DefaultOrderRepository) GetStatusHistory(ctx context.Context, orderID string) ([]domain.OrderStatusChange, error) {
	var rows []models.OrderStatusHistoryModel
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}

	history := make([]domain.OrderStatusChange, 0, len(rows))
	for _, row := range rows {
		history = append(history, domain.OrderStatusChange{
			OrderID:   row.OrderID,
			From:      row.FromStatus,
			To:        row.ToStatus,
			Source:    domain.TransitionSource(row.Source),
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return history, nil
}

func (r *DefaultOrderRepository) FindPaidOrdersWithoutTicket(ctx context.Context, olderThan time.Time, limit int) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Joins("LEFT JOIN tickets ON tickets.order_id = orders.id").
		Where("orders.status = ? AND tickets.id IS NULL AND orders.updated_at < ?", domain.StatusPaid, olderThan).
		Order("orders.updated_at ASC").
		Limit(limit).
		Find(&orderModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find paid orders without ticket: %w", err)
	}

	orders := make([]*domain.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, mappers.ToDomainOrder(&orderModels[i]))
	}
	return orders, nil
}

func orderLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrOrderNotFound
	}
	return fmt.Errorf("failed to load order: %w", err)
}
