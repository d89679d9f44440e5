package mappers

import (
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
)

func ToDomainTicket(model *models.TicketModel) *domain.Ticket {
	if model == nil {
		return nil
	}
	return &domain.Ticket{
		ID:               model.ID,
		UserID:           model.UserID,
		EventID:          model.EventID,
		CategoryID:       model.CategoryID,
		TicketNumber:     model.TicketNumber,
		Quantity:         model.Quantity,
		UnitPrice:        model.UnitPrice,
		TotalPrice:       model.TotalPrice,
		Status:           model.Status,
		PaymentStatus:    model.PaymentStatus,
		OrderID:          model.OrderID,
		GatewayPaymentID: model.GatewayPaymentID,
		PurchasedAt:      model.PurchasedAt,
	}
}

func ToGORMTicket(ticket *domain.Ticket) *models.TicketModel {
	return &models.TicketModel{
		ID:               ticket.ID,
		UserID:           ticket.UserID,
		EventID:          ticket.EventID,
		CategoryID:       ticket.CategoryID,
		TicketNumber:     ticket.TicketNumber,
		Quantity:         ticket.Quantity,
		UnitPrice:        ticket.UnitPrice,
		TotalPrice:       ticket.TotalPrice,
		Status:           ticket.Status,
		PaymentStatus:    ticket.PaymentStatus,
		OrderID:          ticket.OrderID,
		GatewayPaymentID: ticket.GatewayPaymentID,
		PurchasedAt:      ticket.PurchasedAt,
	}
}

func ToDomainCategory(model *models.TicketCategoryModel) *domain.TicketCategory {
	if model == nil {
		return nil
	}
	return &domain.TicketCategory{
		ID:             model.ID,
		EventID:        model.EventID,
		Name:           model.Name,
		Price:          model.Price,
		TotalSeats:     model.TotalSeats,
		AvailableSeats: model.AvailableSeats,
		SortOrder:      model.SortOrder,
	}
}

func ToGORMCategory(category *domain.TicketCategory) *models.TicketCategoryModel {
	return &models.TicketCategoryModel{
		ID:             category.ID,
		EventID:        category.EventID,
		Name:           category.Name,
		Price:          category.Price,
		TotalSeats:     category.TotalSeats,
		AvailableSeats: category.AvailableSeats,
		SortOrder:      category.SortOrder,
	}
}
