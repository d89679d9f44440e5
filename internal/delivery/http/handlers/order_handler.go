package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/order"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	uc order.OrderUsecase
}

func NewOrderHandler(uc order.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}

	created, err := h.uc.CreateOrder(c.Request.Context(), middleware.CallerID(c), order.CreateOrderInput{
		EventID:       req.EventID,
		CategoryID:    req.CategoryID,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		TotalPrice:    req.TotalPrice,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.CreateOrderResponse{
		Success: true,
		Order:   response.FromOrder(created),
	})
}

func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	var req request.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}

	result, err := h.uc.VerifyPayment(c.Request.Context(), middleware.CallerID(c), order.VerifyInput{
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if errors.Is(err, domain.ErrTicketIssuance) {
		body := response.ErrorResponse{Success: false, Error: ticketIssuanceMessage}
		if result != nil && result.Order != nil {
			body.OrderID = result.Order.ID
		}
		logrus.WithError(err).WithField("order_id", body.OrderID).Error("ticket issuance failed after payment")
		c.JSON(http.StatusInternalServerError, body)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified successfully",
		Order:   response.FromOrder(result.Order),
		Ticket:  response.FromTicket(result.Ticket),
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	found, err := h.uc.GetOrder(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.GetOrderResponse{
		Success: true,
		Order:   response.FromOrder(found),
	})
}
