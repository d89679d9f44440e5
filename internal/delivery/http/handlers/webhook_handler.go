package handlers

import (
	"io"
	"net/http"

	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/razorpay"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/reconcile"
	"github.com/gin-gonic/gin"
)

// MaxWebhookBody caps how much of a delivery is read before verification.
const MaxWebhookBody = 64 << 10

type WebhookHandler struct {
	dispatcher reconcile.Dispatcher
}

func NewWebhookHandler(dispatcher reconcile.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	signature := c.GetHeader(razorpay.SignatureHeader)
	if signature == "" {
		writeError(c, domain.ErrSignatureMissing)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxWebhookBody+1))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(body) > MaxWebhookBody {
		c.JSON(http.StatusRequestEntityTooLarge, response.ErrorResponse{Success: false, Error: "webhook body too large"})
		return
	}

	err = h.dispatcher.HandleWebhook(c.Request.Context(), body, signature, c.GetHeader(razorpay.EventIDHeader))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, response.AckResponse{Success: true})
	case domain.KindOf(err) == domain.KindAuth || domain.KindOf(err) == domain.KindValidation:
		writeError(c, err)
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{Success: false, Error: "Webhook processing failed"})
	}
}
