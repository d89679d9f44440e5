// Package usecasetest provides in-memory collaborators for usecase tests.
package usecasetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps every aggregate in maps behind one mutex. The typed views
// returned by Orders, Payments and friends implement the domain repositories.
type Store struct {
	mu         sync.Mutex
	orders     map[string]domain.Order
	payments   map[string]domain.Payment
	categories map[string]domain.TicketCategory
	tickets    map[string]domain.Ticket
	refunds    map[string]domain.Refund
	events     map[string]domain.WebhookEvent
	history    []domain.OrderStatusChange
	ticketSeq  int
}

func NewStore() *Store {
	return &Store{
		orders:     map[string]domain.Order{},
		payments:   map[string]domain.Payment{},
		categories: map[string]domain.TicketCategory{},
		tickets:    map[string]domain.Ticket{},
		refunds:    map[string]domain.Refund{},
		events:     map[string]domain.WebhookEvent{},
	}
}

func (s *Store) Orders() domain.OrderRepository { return orderRepo{s} }
func (s *Store) Payments() domain.PaymentRepository { return paymentRepo{s} }
func (s *Store) Ledger() domain.InventoryLedger { return ledger{s} }
func (s *Store) Tickets() domain.TicketRepository { return ticketRepo{s} }
func (s *Store) Refunds() domain.RefundRepository { return refundRepo{s} }
func (s *Store) WebhookEvents() domain.WebhookEventRepository { return webhookRepo{s} }

func (s *Store) AddCategory(eventID string, seats int, price string) domain.TicketCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := domain.TicketCategory{
		ID:             uuid.NewString(),
		EventID:        eventID,
		Name:           "General",
		Price:          decimal.RequireFromString(price),
		TotalSeats:     seats,
		AvailableSeats: seats,
	}
	s.categories[c.ID] = c
	return c
}

func (s *Store) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *Store) Order(id string) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *Store) Category(id string) domain.TicketCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories[id]
}

func (s *Store) Ticket(orderID string) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[orderID]
	return t, ok
}

func (s *Store) Refund(orderID string) (domain.Refund, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.refunds {
		if r.OrderID == orderID {
			return r, true
		}
	}
	return domain.Refund{}, false
}

func (s *Store) CountOrders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) CountTickets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func (s *Store) PaymentsFor(orderID string) []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Payment
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) History(orderID string) []domain.OrderStatusChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.OrderStatusChange
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

type orderRepo struct{ s *Store }

func (r orderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.GatewayOrderID == order.GatewayOrderID {
			return fmt.Errorf("duplicate gateway order id %s", order.GatewayOrderID)
		}
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	stored := *order
	stored.Payments = nil
	r.s.orders[order.ID] = stored
	return nil
}

func (r orderRepo) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (r orderRepo) GetOrderByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.GatewayOrderID == gatewayOrderID {
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r orderRepo) GetOrderWithPayments(_ context.Context, orderID string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			p := p
			o.Payments = append(o.Payments, &p)
		}
	}
	sort.Slice(o.Payments, func(i, j int) bool {
		return o.Payments[i].CreatedAt.Before(o.Payments[j].CreatedAt)
	})
	return &o, nil
}

func (r orderRepo) CompareAndSetStatus(_ context.Context, change domain.OrderStatusChange) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[change.OrderID]
	if !ok || o.Status != change.From {
		return false, nil
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	o.Status = change.To
	o.UpdatedAt = change.CreatedAt
	r.s.orders[o.ID] = o
	r.s.history = append(r.s.history, change)
	return true, nil
}

func (r orderRepo) FindPaidOrdersWithoutTicket(_ context.Context, olderThan time.Time, limit int) ([]*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.s.orders {
		if _, issued := r.s.tickets[o.ID]; issued || o.Status != domain.StatusPaid || !o.UpdatedAt.Before(olderThan) {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) UpsertPayment(_ context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.s.payments[payment.GatewayPaymentID]
	if !ok {
		if payment.ID == "" {
			payment.ID = uuid.NewString()
		}
		payment.CreatedAt, payment.UpdatedAt = now, now
		r.s.payments[payment.GatewayPaymentID] = *payment
		return nil
	}
	if existing.Status != domain.PaymentCaptured || payment.Status == domain.PaymentCaptured {
		existing.Status = payment.Status
		existing.Amount = payment.Amount
		existing.ErrorMessage = payment.ErrorMessage
		if payment.GatewaySignature != "" {
			existing.GatewaySignature = payment.GatewaySignature
		}
		existing.UpdatedAt = now
		r.s.payments[payment.GatewayPaymentID] = existing
	}
	*payment = existing
	return nil
}

func (r paymentRepo) GetCapturedPayment(_ context.Context, orderID string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.OrderID == orderID && p.Status == domain.PaymentCaptured {
			return &p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (r paymentRepo) GetPaymentByGatewayID(_ context.Context, gatewayPaymentID string) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[gatewayPaymentID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &p, nil
}

type ledger struct{ s *Store }

func (l ledger) GetCategory(_ context.Context, categoryID string) (*domain.TicketCategory, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	c, ok := l.s.categories[categoryID]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &c, nil
}

func (l ledger) Allocate(_ context.Context, req domain.AllocationRequest) (*domain.Allocation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if _, ok := l.s.tickets[req.OrderID]; ok {
		return nil, domain.ErrTicketAlreadyIssued
	}
	c, ok := l.s.categories[req.CategoryID]
	if !ok || c.EventID != req.EventID {
		return nil, domain.ErrCategoryNotFound
	}
	if c.AvailableSeats < req.Quantity {
		return nil, domain.ErrInsufficientInventory
	}
	c.AvailableSeats -= req.Quantity
	l.s.categories[c.ID] = c

	l.s.ticketSeq++
	ticket := domain.Ticket{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		EventID:          req.EventID,
		CategoryID:       req.CategoryID,
		TicketNumber:     fmt.Sprintf("TKT-%010d", l.s.ticketSeq),
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		TotalPrice:       req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))),
		Status:           domain.TicketConfirmed,
		PaymentStatus:    req.PaymentStatus,
		OrderID:          req.OrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		PurchasedAt:      time.Now().UTC(),
	}
	l.s.tickets[req.OrderID] = ticket
	return &domain.Allocation{Ticket: &ticket, RemainingSeats: c.AvailableSeats}, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) GetTicketByOrderID(_ context.Context, orderID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[orderID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &t, nil
}

func (r ticketRepo) SetPaymentStatusByOrder(_ context.Context, orderID string, status domain.TicketPaymentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[orderID]
	if !ok || t.PaymentStatus == domain.TicketPaymentRefunded {
		return 0, nil
	}
	t.PaymentStatus = status
	r.s.tickets[orderID] = t
	return 1, nil
}

func (r ticketRepo) CancelByOrder(_ context.Context, orderID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[orderID]
	if !ok {
		return 0, nil
	}
	t.Status = domain.TicketCancelled
	t.PaymentStatus = domain.TicketPaymentRefunded
	r.s.tickets[orderID] = t
	return 1, nil
}

type refundRepo struct{ s *Store }

func (r refundRepo) CreateRefund(_ context.Context, refund *domain.Refund) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.refunds {
		if existing.OrderID == refund.OrderID {
			return domain.ErrRefundAlreadyExists
		}
	}
	if refund.ID == "" {
		refund.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	refund.CreatedAt, refund.UpdatedAt = now, now
	stored := *refund
	stored.Order = nil
	r.s.refunds[refund.ID] = stored
	return nil
}

func (r refundRepo) GetRefundByOrderID(_ context.Context, orderID string) (*domain.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.refunds {
		if existing.OrderID == orderID {
			return &existing, nil
		}
	}
	return nil, domain.ErrRefundNotFound
}

func (r refundRepo) GetRefundByGatewayID(_ context.Context, gatewayRefundID string) (*domain.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.refunds {
		if existing.GatewayRefundID != "" && existing.GatewayRefundID == gatewayRefundID {
			return &existing, nil
		}
	}
	return nil, domain.ErrRefundNotFound
}

func (r refundRepo) GetRefundForRequester(_ context.Context, refundID, requesterID string) (*domain.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.refunds[refundID]
	if !ok || existing.RequestedBy != requesterID {
		return nil, domain.ErrRefundNotFound
	}
	if o, ok := r.s.orders[existing.OrderID]; ok {
		existing.Order = &o
	}
	return &existing, nil
}

func (r refundRepo) SetGatewayRefundID(_ context.Context, refundID, gatewayRefundID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.refunds[refundID]
	if !ok {
		return domain.ErrRefundNotFound
	}
	existing.GatewayRefundID = gatewayRefundID
	r.s.refunds[refundID] = existing
	return nil
}

func (r refundRepo) MarkProcessed(_ context.Context, refundID, gatewayRefundID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.refunds[refundID]
	if !ok {
		return domain.ErrRefundNotFound
	}
	existing.Status = domain.RefundProcessed
	existing.ProcessedAt = &at
	if gatewayRefundID != "" {
		existing.GatewayRefundID = gatewayRefundID
	}
	r.s.refunds[refundID] = existing
	return nil
}

func (r refundRepo) DeleteRefund(_ context.Context, refundID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.refunds[refundID]; ok && existing.Status == domain.RefundPending {
		delete(r.s.refunds, refundID)
	}
	return nil
}

type webhookRepo struct{ s *Store }

func (r webhookRepo) RecordEvent(_ context.Context, event *domain.WebhookEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.events[event.EventID]; ok {
		return existing.Processed, nil
	}
	r.s.events[event.EventID] = *event
	return false, nil
}

func (r webhookRepo) MarkProcessed(_ context.Context, eventID string, processErr error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing := r.s.events[eventID]
	if processErr != nil {
		existing.Processed = false
		existing.Error = processErr.Error()
	} else {
		now := time.Now().UTC()
		existing.Processed = true
		existing.Error = ""
		existing.ProcessedAt = &now
	}
	r.s.events[eventID] = existing
	return nil
}
