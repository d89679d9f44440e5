package repository

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRefund(order *domain.Order) *domain.Refund {
	return &domain.Refund{
		OrderID:     order.ID,
		PaymentID:   "pay-row",
		Reason:      domain.ReasonCustomerRequest,
		Amount:      order.Amount,
		Status:      domain.RefundPending,
		RequestedBy: order.UserID,
	}
}

func TestRefundRepository_OnePerOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewDefaultRefundRepository(db)
	ctx := context.Background()
	order := seedOrder(t, db, domain.StatusPaid)

	require.NoError(t, repo.CreateRefund(ctx, newPendingRefund(order)))
	err := repo.CreateRefund(ctx, newPendingRefund(order))
	assert.ErrorIs(t, err, domain.ErrRefundAlreadyExists)
}

func TestRefundRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewDefaultRefundRepository(db)
	ctx := context.Background()
	order := seedOrder(t, db, domain.StatusPaid)

	refund := newPendingRefund(order)
	require.NoError(t, repo.CreateRefund(ctx, refund))
	require.NotEmpty(t, refund.ID)

	require.NoError(t, repo.SetGatewayRefundID(ctx, refund.ID, "rfnd_1"))
	byGateway, err := repo.GetRefundByGatewayID(ctx, "rfnd_1")
	require.NoError(t, err)
	assert.Equal(t, refund.ID, byGateway.ID)
	assert.Equal(t, domain.RefundPending, byGateway.Status)

	require.NoError(t, repo.MarkProcessed(ctx, refund.ID, "", testNow))
	byOrder, err := repo.GetRefundByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundProcessed, byOrder.Status)
	assert.Equal(t, "rfnd_1", byOrder.GatewayRefundID)
	require.NotNil(t, byOrder.ProcessedAt)

	// a processed refund survives a late cleanup
	require.NoError(t, repo.DeleteRefund(ctx, refund.ID))
	_, err = repo.GetRefundByOrderID(ctx, order.ID)
	assert.NoError(t, err)
}

func TestRefundRepository_DeletePendingReservation(t *testing.T) {
	db := newTestDB(t)
	repo := NewDefaultRefundRepository(db)
	ctx := context.Background()
	order := seedOrder(t, db, domain.StatusPaid)

	refund := newPendingRefund(order)
	require.NoError(t, repo.CreateRefund(ctx, refund))
	require.NoError(t, repo.DeleteRefund(ctx, refund.ID))

	_, err := repo.GetRefundByOrderID(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrRefundNotFound)
	assert.NoError(t, repo.CreateRefund(ctx, newPendingRefund(order)))
}

func TestRefundRepository_ScopedToRequester(t *testing.T) {
	db := newTestDB(t)
	repo := NewDefaultRefundRepository(db)
	ctx := context.Background()
	order := seedOrder(t, db, domain.StatusPaid)

	refund := newPendingRefund(order)
	require.NoError(t, repo.CreateRefund(ctx, refund))

	owned, err := repo.GetRefundForRequester(ctx, refund.ID, order.UserID)
	require.NoError(t, err)
	require.NotNil(t, owned.Order)
	assert.Equal(t, order.GatewayOrderID, owned.Order.GatewayOrderID)

	_, err = repo.GetRefundForRequester(ctx, refund.ID, "someone-else")
	assert.ErrorIs(t, err, domain.ErrRefundNotFound)

	assert.ErrorIs(t, repo.SetGatewayRefundID(ctx, "missing", "rfnd_x"), domain.ErrRefundNotFound)
}
