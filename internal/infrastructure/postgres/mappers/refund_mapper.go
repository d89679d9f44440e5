package mappers

import (
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
)

func ToDomainRefund(model *models.RefundModel) *domain.Refund {
	if model == nil {
		return nil
	}
	refund := &domain.Refund{
		ID:          model.ID,
		OrderID:     model.OrderID,
		PaymentID:   model.PaymentID,
		Reason:      model.Reason,
		Amount:      model.Amount,
		Status:      model.Status,
		RequestedBy: model.RequestedBy,
		Notes:       model.Notes,
		ProcessedAt: model.ProcessedAt,
		Order:       ToDomainOrder(model.Order),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
	if model.GatewayRefundID != nil {
		refund.GatewayRefundID = *model.GatewayRefundID
	}
	return refund
}

func ToGORMRefund(refund *domain.Refund) *models.RefundModel {
	model := &models.RefundModel{
		ID:          refund.ID,
		OrderID:     refund.OrderID,
		PaymentID:   refund.PaymentID,
		Reason:      refund.Reason,
		Amount:      refund.Amount,
		Status:      refund.Status,
		RequestedBy: refund.RequestedBy,
		Notes:       refund.Notes,
		ProcessedAt: refund.ProcessedAt,
		CreatedAt:   refund.CreatedAt,
		UpdatedAt:   refund.UpdatedAt,
	}
	// a NULL gateway id keeps the unique index free for pending reservations
	if refund.GatewayRefundID != "" {
		id := refund.GatewayRefundID
		model.GatewayRefundID = &id
	}
	return model
}

func ToDomainWebhookEvent(model *models.WebhookEventModel) *domain.WebhookEvent {
	if model == nil {
		return nil
	}
	return &domain.WebhookEvent{
		EventID:     model.EventID,
		Kind:        model.Kind,
		Payload:     model.Payload,
		Processed:   model.Processed,
		Error:       model.Error,
		ReceivedAt:  model.ReceivedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func ToGORMWebhookEvent(event *domain.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		EventID:     event.EventID,
		Kind:        event.Kind,
		Payload:     event.Payload,
		Processed:   event.Processed,
		Error:       event.Error,
		ReceivedAt:  event.ReceivedAt,
		ProcessedAt: event.ProcessedAt,
	}
}
