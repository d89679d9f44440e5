package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes transactions
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// newFileTestDB opens a WAL database on disk so that several connections
// run transactions against the same data.
func newFileTestDB(t *testing.T, conns int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "tickets.db") +
		"?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status domain.OrderStatus) *domain.Order {
	t.Helper()

	order := &domain.Order{
		ID:             uuid.NewString(),
		UserID:         uuid.NewString(),
		EventID:        uuid.NewString(),
		GatewayOrderID: "order_" + uuid.NewString()[:8],
		Amount:         30100,
		Currency:       "INR",
		Status:         status,
		Notes: domain.OrderNotes{
			CategoryID: uuid.NewString(),
			Quantity:   2,
			UnitPrice:  decimal.RequireFromString("150.50"),
		},
	}
	require.NoError(t, NewDefaultOrderRepository(db).CreateOrder(context.Background(), order))
	return order
}

func seedCategory(t *testing.T, db *gorm.DB, eventID string, seats int) *domain.TicketCategory {
	t.Helper()

	ledger, err := NewDefaultInventoryLedger(db)
	require.NoError(t, err)

	category := &domain.TicketCategory{
		EventID:        eventID,
		Name:           "Balcony",
		Price:          decimal.RequireFromString("150.50"),
		TotalSeats:     seats,
		AvailableSeats: seats,
	}
	require.NoError(t, ledger.CreateCategory(context.Background(), category))
	return category
}

func newLedger(t *testing.T, db *gorm.DB) *DefaultInventoryLedger {
	t.Helper()
	ledger, err := NewDefaultInventoryLedger(db)
	require.NoError(t, err)
	return ledger
}

func allocationFor(order *domain.Order, category *domain.TicketCategory, quantity int) domain.AllocationRequest {
	return domain.AllocationRequest{
		OrderID:          order.ID,
		UserID:           order.UserID,
		EventID:          category.EventID,
		CategoryID:       category.ID,
		Quantity:         quantity,
		UnitPrice:        category.Price,
		GatewayPaymentID: "pay_" + order.ID[:8],
		PaymentStatus:    domain.TicketPaymentCaptured,
	}
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
