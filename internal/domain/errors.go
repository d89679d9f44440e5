package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingFields       = errors.New("missing required fields")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrInvalidRefundReason = errors.New("invalid refund reason")
	ErrRefundNotEligible   = errors.New("order not eligible for refund")
	ErrRefundAlreadyExists = errors.New("refund already requested for this order")

	ErrUnauthorized     = errors.New("unauthorized")
	ErrSignatureMissing = errors.New("missing signature")
	ErrSignatureInvalid = errors.New("invalid signature")
	ErrForbidden        = errors.New("order not owned by caller")

	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrRefundNotFound   = errors.New("refund not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrCategoryNotFound = errors.New("ticket category not found")

	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrTicketAlreadyIssued   = errors.New("ticket already issued for order")
	ErrRateLimited           = errors.New("too many requests")

	ErrTicketIssuance = errors.New("payment successful but ticket creation failed")
)

// TransitionError is returned when the state machine refuses a move.
type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: order %s %s -> %s", ErrInvalidTransition, e.OrderID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// GatewayError carries the payment processor's answer so operators can see it.
type GatewayError struct {
	Operation   string
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("gateway %s failed with status %d: %s %s", e.Operation, e.StatusCode, e.Code, e.Description)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Detail is the message surfaced to callers.
func (e *GatewayError) Detail() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "Unknown error"
}

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimit:
		return "rate_limit"
	case KindUpstream:
		return "upstream"
	}
	return "internal"
}

var errorKinds = []struct {
	err  error
	kind Kind
}{
	{ErrMissingFields, KindValidation},
	{ErrInvalidQuantity, KindValidation},
	{ErrInvalidPrice, KindValidation},
	{ErrInvalidRefundReason, KindValidation},
	{ErrRefundNotEligible, KindValidation},
	{ErrRefundAlreadyExists, KindValidation},
	{ErrUnauthorized, KindAuth},
	{ErrSignatureMissing, KindAuth},
	{ErrSignatureInvalid, KindAuth},
	{ErrForbidden, KindAuthorization},
	{ErrOrderNotFound, KindNotFound},
	{ErrPaymentNotFound, KindNotFound},
	{ErrRefundNotFound, KindNotFound},
	{ErrTicketNotFound, KindNotFound},
	{ErrCategoryNotFound, KindNotFound},
	{ErrInvalidTransition, KindConflict},
	{ErrInsufficientInventory, KindConflict},
	{ErrTicketAlreadyIssued, KindConflict},
	{ErrRateLimited, KindRateLimit},
}

// KindOf classifies an error for the transport layer. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	// issuance failures wrap their cause but must stay a 500
	if errors.Is(err, ErrTicketIssuance) {
		return KindInternal
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return KindUpstream
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}
