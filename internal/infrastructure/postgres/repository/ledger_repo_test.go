package repository

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInventoryLedger_Allocate(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 10)

	allocation, err := ledger.Allocate(ctx, allocationFor(order, category, 3))
	require.NoError(t, err)
	assert.Equal(t, 7, allocation.RemainingSeats)

	ticket := allocation.Ticket
	assert.True(t, strings.HasPrefix(ticket.TicketNumber, "TKT-"))
	assert.Len(t, ticket.TicketNumber, len("TKT-")+10)
	assert.Equal(t, 3, ticket.Quantity)
	assert.True(t, ticket.TotalPrice.Equal(decimal.RequireFromString("451.50")))
	assert.Equal(t, domain.TicketConfirmed, ticket.Status)
	assert.Equal(t, domain.TicketPaymentCaptured, ticket.PaymentStatus)

	stored, err := ledger.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.AvailableSeats)
}

func TestInventoryLedger_InsufficientInventoryLeavesNoTrace(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	tickets := NewDefaultTicketRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 2)

	_, err := ledger.Allocate(ctx, allocationFor(order, category, 3))
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	stored, err := ledger.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.AvailableSeats)

	_, err = tickets.GetTicketByOrderID(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestInventoryLedger_UnknownCategory(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 2)

	req := allocationFor(order, category, 1)
	req.EventID = "another-event"
	_, err := ledger.Allocate(ctx, req)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = ledger.GetCategory(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestInventoryLedger_OneTicketPerOrder(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	ctx := context.Background()

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 10)

	_, err := ledger.Allocate(ctx, allocationFor(order, category, 2))
	require.NoError(t, err)

	_, err = ledger.Allocate(ctx, allocationFor(order, category, 2))
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyIssued)

	stored, err := ledger.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.AvailableSeats)
}

func TestInventoryLedger_RejectsNonPositiveQuantity(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 10)

	_, err := ledger.Allocate(context.Background(), allocationFor(order, category, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestInventoryLedger_ConcurrentAllocationsNeverOversell(t *testing.T) {
	db := newFileTestDB(t, 8)
	ledger := newLedger(t, db)
	ctx := context.Background()

	const seats, buyers = 5, 20
	first := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, first.EventID, seats)

	orders := []*domain.Order{first}
	for len(orders) < buyers {
		orders = append(orders, seedOrder(t, db, domain.StatusPaid))
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		succeeded    int
		insufficient int
	)
	for _, o := range orders {
		wg.Add(1)
		go func(o *domain.Order) {
			defer wg.Done()
			_, err := ledger.Allocate(ctx, allocationFor(o, category, 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, domain.ErrInsufficientInventory):
				insufficient++
			}
		}(o)
	}
	wg.Wait()

	assert.Equal(t, seats, succeeded)
	assert.Equal(t, buyers-seats, insufficient)

	stored, err := ledger.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableSeats)

	var tickets int64
	require.NoError(t, db.Table("tickets").Count(&tickets).Error)
	assert.Equal(t, int64(seats), tickets)
}

func TestInventoryLedger_LastSeatGoesToExactlyOneBuyer(t *testing.T) {
	db := newFileTestDB(t, 2)
	ledger := newLedger(t, db)
	ctx := context.Background()

	a := seedOrder(t, db, domain.StatusPaid)
	b := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, a.EventID, 1)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, o := range []*domain.Order{a, b} {
		wg.Add(1)
		go func(i int, o *domain.Order) {
			defer wg.Done()
			_, errs[i] = ledger.Allocate(ctx, allocationFor(o, category, 1))
		}(i, o)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	stored, err := ledger.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableSeats)
}

func TestInventoryLedger_DecrementRechecksSeats(t *testing.T) {
	db := newTestDB(t)
	ledger := newLedger(t, db)
	tickets := NewDefaultTicketRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, domain.StatusPaid)
	category := seedCategory(t, db, order.EventID, 1)

	// a competing buyer takes the last seat after the transaction began
	var (
		taken     bool
		seatsSeen = -1
	)
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:take_last_seat", func(tx *gorm.DB) {
		if taken || tx.Statement.Table != "ticket_categories" {
			return
		}
		taken = true
		session := tx.Session(&gorm.Session{NewDB: true})
		require.NoError(t, session.Exec("UPDATE ticket_categories SET available_seats = 0 WHERE id = ?", category.ID).Error)
	}))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:observe_seats", func(tx *gorm.DB) {
		if tx.Statement.Table != "ticket_categories" {
			return
		}
		var seats int
		session := tx.Session(&gorm.Session{NewDB: true})
		require.NoError(t, session.Raw("SELECT available_seats FROM ticket_categories WHERE id = ?", category.ID).Scan(&seats).Error)
		seatsSeen = seats
	}))

	_, err := ledger.Allocate(ctx, allocationFor(order, category, 1))
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.True(t, taken)
	assert.Equal(t, 0, seatsSeen)

	_, err = tickets.GetTicketByOrderID(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}
