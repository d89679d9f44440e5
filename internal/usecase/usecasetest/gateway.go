package usecasetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
)

// Gateway records the calls it receives and answers with sequential ids.
type Gateway struct {
	mu             sync.Mutex
	CreateOrderErr error
	IssueRefundErr error
	// BeforeRefundReply runs inside IssueRefund before it returns, which lets
	// tests interleave a webhook with an in-flight refund request.
	BeforeRefundReply func(gatewayRefundID string)
	OrderRequests     []domain.GatewayOrderRequest
	RefundRequests    []domain.GatewayRefundRequest
	seq               int
}

func (g *Gateway) CreateOrder(_ context.Context, req domain.GatewayOrderRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.OrderRequests = append(g.OrderRequests, req)
	if g.CreateOrderErr != nil {
		return "", g.CreateOrderErr
	}
	g.seq++
	return fmt.Sprintf("order_gw_%d", g.seq), nil
}

func (g *Gateway) IssueRefund(_ context.Context, req domain.GatewayRefundRequest) (string, error) {
	g.mu.Lock()
	g.RefundRequests = append(g.RefundRequests, req)
	if g.IssueRefundErr != nil {
		err := g.IssueRefundErr
		g.mu.Unlock()
		return "", err
	}
	g.seq++
	id := fmt.Sprintf("rfnd_gw_%d", g.seq)
	hook := g.BeforeRefundReply
	g.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return id, nil
}

func (g *Gateway) RefundCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.RefundRequests)
}

func (g *Gateway) OrderCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.OrderRequests)
}
