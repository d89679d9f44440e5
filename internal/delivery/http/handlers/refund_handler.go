package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/refund"
	"github.com/gin-gonic/gin"
)

type RefundHandler struct {
	uc refund.RefundUsecase
}

func NewRefundHandler(uc refund.RefundUsecase) *RefundHandler {
	return &RefundHandler{uc: uc}
}

func (h *RefundHandler) CreateRefund(c *gin.Context) {
	var req request.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.ErrMissingFields)
		return
	}

	created, err := h.uc.RequestRefund(c.Request.Context(), middleware.CallerID(c), refund.RefundInput{
		OrderID: req.OrderID,
		Reason:  domain.RefundReason(req.Reason),
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.RefundEnvelope{
		Success: true,
		Refund:  response.FromRefund(created),
	})
}

func (h *RefundHandler) GetRefund(c *gin.Context) {
	found, err := h.uc.GetRefund(c.Request.Context(), middleware.CallerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.RefundEnvelope{
		Success: true,
		Refund:  response.FromRefund(found),
	})
}
