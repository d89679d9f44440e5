package models

// All lists the tables owned by the service in dependency order.
func All() []interface{} {
	return []interface{}{
		&OrderModel{},
		&PaymentModel{},
		&OrderStatusHistoryModel{},
		&TicketCategoryModel{},
		&TicketModel{},
		&RefundModel{},
		&WebhookEventModel{},
	}
}
