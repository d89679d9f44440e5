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
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ticketNumberPrefix   = "TKT-"
	ticketNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ticketNumberLength   = 10
)

type DefaultInventoryLedger struct {
	DB           *gorm.DB
	ticketNumber func() string
}

func NewDefaultInventoryLedger(db *gorm.DB) (*DefaultInventoryLedger, error) {
	generator, err := nanoid.CustomASCII(ticketNumberAlphabet, ticketNumberLength)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket number generator: %w", err)
	}
	return &DefaultInventoryLedger{DB: db, ticketNumber: generator}, nil
}

func (l *DefaultInventoryLedger) GetCategory(ctx context.Context, categoryID string) (*domain.TicketCategory, error) {
	var category models.TicketCategoryModel
	if err := l.DB.WithContext(ctx).First(&category, "id = ?", categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return mappers.ToDomainCategory(&category), nil
}

func (l *DefaultInventoryLedger) CreateCategory(ctx context.Context, category *domain.TicketCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := l.DB.WithContext(ctx).Create(mappers.ToGORMCategory(category)).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Allocate decrements the category's available seats and inserts the ticket
// for the order in one transaction. The decrement is conditional on enough
// seats being left, so concurrent callers can never oversell.
func (l *DefaultInventoryLedger) Allocate(ctx context.Context, req domain.AllocationRequest) (*domain.Allocation, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = domain.TicketPaymentCaptured
	}

	var allocation *domain.Allocation
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.TicketModel{}).Where("order_id = ?", req.OrderID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return domain.ErrTicketAlreadyIssued
		}

		now := time.Now().UTC()
		res := tx.Model(&models.TicketCategoryModel{}).
			Where("id = ? AND event_id = ? AND available_seats >= ?", req.CategoryID, req.EventID, req.Quantity).
			Updates(map[string]interface{}{
				"available_seats": gorm.Expr("available_seats - ?", req.Quantity),
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var categories int64
			if err := tx.Model(&models.TicketCategoryModel{}).
				Where("id = ? AND event_id = ?", req.CategoryID, req.EventID).
				Count(&categories).Error; err != nil {
				return err
			}
			if categories == 0 {
				return domain.ErrCategoryNotFound
			}
			return domain.ErrInsufficientInventory
		}

		ticket := &models.TicketModel{
			ID:               uuid.NewString(),
			UserID:           req.UserID,
			EventID:          req.EventID,
			CategoryID:       req.CategoryID,
			TicketNumber:     ticketNumberPrefix + l.ticketNumber(),
			Quantity:         req.Quantity,
			UnitPrice:        req.UnitPrice,
			TotalPrice:       req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
			Status:           domain.TicketConfirmed,
			PaymentStatus:    req.PaymentStatus,
			OrderID:          req.OrderID,
			GatewayPaymentID: req.GatewayPaymentID,
			PurchasedAt:      now,
		}
		if err := tx.Create(ticket).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrTicketAlreadyIssued
			}
			return err
		}

		var category models.TicketCategoryModel
		if err := tx.Select("available_seats").First(&category, "id = ?", req.CategoryID).Error; err != nil {
			return err
		}

		allocation = &domain.Allocation{
			Ticket:         mappers.ToDomainTicket(ticket),
			RemainingSeats: category.AvailableSeats,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTicketAlreadyIssued),
			errors.Is(err, domain.ErrInsufficientInventory),
			errors.Is(err, domain.ErrCategoryNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to allocate seats: %w", err)
	}
	return allocation, nil
}
