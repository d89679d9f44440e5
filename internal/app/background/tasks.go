package background

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/sirupsen/logrus"
)

const auditBatchSize = 100

type BackgroundTasks struct {
	Orders        domain.OrderRepository
	Metrics       *metrics.TicketMetrics
	AuditInterval time.Duration
	AuditGrace    time.Duration
	now           func() time.Time
}

func NewBackgroundTasks(orders domain.OrderRepository, ticketMetrics *metrics.TicketMetrics, auditInterval, auditGrace time.Duration) *BackgroundTasks {
	if auditInterval <= 0 {
		auditInterval = time.Minute
	}
	return &BackgroundTasks{
		Orders:        orders,
		Metrics:       ticketMetrics,
		AuditInterval: auditInterval,
		AuditGrace:    auditGrace,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startTicketAudit(ctx)
}

func (bt *BackgroundTasks) startTicketAudit(ctx context.Context) {
	ticker := time.NewTicker(bt.AuditInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.AuditPaidOrdersWithoutTicket(ctx); err != nil {
				logrus.WithError(err).Error("ticket audit failed")
			}
		}
	}
}

// AuditPaidOrdersWithoutTicket reports paid orders older than the grace period
// that never got a ticket. Those need manual follow-up; nothing is re-issued.
func (bt *BackgroundTasks) AuditPaidOrdersWithoutTicket(ctx context.Context) (int, error) {
	orders, err := bt.Orders.FindPaidOrdersWithoutTicket(ctx, bt.now().Add(-bt.AuditGrace), auditBatchSize)
	if err != nil {
		return 0, err
	}

	for _, o := range orders {
		logrus.WithFields(logrus.Fields{
			"order_id":         o.ID,
			"user_id":          o.UserID,
			"gateway_order_id": o.GatewayOrderID,
			"paid_since":       o.UpdatedAt,
		}).Warn("paid order has no ticket")
	}
	if bt.Metrics != nil {
		bt.Metrics.SetPaidOrdersWithoutTicket(len(orders))
	}
	return len(orders), nil
}
