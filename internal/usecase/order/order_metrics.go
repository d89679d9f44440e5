package order

import (
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

func (uc *DefaultOrderUsecase) recordOrderCreatedMetrics(order *domain.Order) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordOrderCreated(order.Currency, order.Amount)
}

func (uc *DefaultOrderUsecase) recordTransitionMetrics(from, to domain.OrderStatus, source domain.TransitionSource) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransition(string(from), string(to), string(source))
}

func (uc *DefaultOrderUsecase) recordTransitionRejected(from, to domain.OrderStatus, source domain.TransitionSource) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordTransitionRejected(string(from), string(to), string(source))
}
