package mappers

import (
	"encoding/json"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	if model == nil {
		return nil
	}

	var notes domain.OrderNotes
	// notes are written by ToGORMOrder, a decode failure leaves them zeroed
	_ = json.Unmarshal([]byte(model.Notes), &notes)

	order := &domain.Order{
		ID:             model.ID,
		UserID:         model.UserID,
		EventID:        model.EventID,
		GatewayOrderID: model.GatewayOrderID,
		Amount:         model.Amount,
		Currency:       model.Currency,
		Status:         model.Status,
		PaymentMethod:  model.PaymentMethod,
		Notes:          notes,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
	for i := range model.Payments {
		order.Payments = append(order.Payments, ToDomainPayment(&model.Payments[i]))
	}
	return order
}

func ToGORMOrder(order *domain.Order) (*models.OrderModel, error) {
	notes, err := json.Marshal(order.Notes)
	if err != nil {
		return nil, err
	}
	return &models.OrderModel{
		ID:             order.ID,
		UserID:         order.UserID,
		EventID:        order.EventID,
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Status:         order.Status,
		PaymentMethod:  order.PaymentMethod,
		Notes:          string(notes),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}, nil
}

func ToDomainPayment(model *models.PaymentModel) *domain.Payment {
	if model == nil {
		return nil
	}
	return &domain.Payment{
		ID:               model.ID,
		OrderID:          model.OrderID,
		GatewayPaymentID: model.GatewayPaymentID,
		GatewaySignature: model.GatewaySignature,
		Status:           model.Status,
		Amount:           model.Amount,
		ErrorMessage:     model.ErrorMessage,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

func ToGORMPayment(payment *domain.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		GatewaySignature: payment.GatewaySignature,
		Status:           payment.Status,
		Amount:           payment.Amount,
		ErrorMessage:     payment.ErrorMessage,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}

func ToGORMStatusChange(change domain.OrderStatusChange) *models.OrderStatusHistoryModel {
	return &models.OrderStatusHistoryModel{
		OrderID:    change.OrderID,
		FromStatus: change.From,
		ToStatus:   change.To,
		Source:     string(change.Source),
		Reason:     change.Reason,
		CreatedAt:  change.CreatedAt,
	}
}
