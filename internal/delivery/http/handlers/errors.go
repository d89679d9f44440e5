package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const ticketIssuanceMessage = "Payment successful but ticket creation failed. Please contact support."

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimit:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError renders err with the status of its kind. Internal causes are
// logged, never echoed.
func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	body := response.ErrorResponse{Success: false}

	switch kind {
	case domain.KindUpstream:
		body.Error = "Payment gateway request failed"
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			body.Details = gwErr.Detail()
		}
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("gateway call failed")
	case domain.KindInternal:
		body.Error = "Server error"
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	default:
		body.Error = err.Error()
	}

	c.JSON(statusFor(kind), body)
}

// AbortWithError is the error writer handed to middleware.
func AbortWithError(c *gin.Context, err error) {
	writeError(c, err)
	c.Abort()
}
