// Package razorpay talks to the payment gateway's REST API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/sony/gobreaker"
)

const (
	opCreateOrder = "create_order"
	opRefund      = "refund"

	maxResponseBytes = 1 << 20
)

// Observer receives timings of outbound calls. Metrics implement it.
type Observer interface {
	ObserveGatewayCall(operation, outcome string, duration time.Duration)
}

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	observer   Observer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithObserver(o Observer) Option {
	return func(cl *Client) { cl.observer = o }
}

func WithBreakerSettings(st gobreaker.Settings) Option {
	return func(cl *Client) {
		if st.IsSuccessful == nil {
			st.IsSuccessful = isBreakerSuccess
		}
		cl.breaker = gobreaker.NewCircuitBreaker(st)
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "razorpay",
			MaxRequests: 5,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.Requests >= 10 &&
					float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
			},
			IsSuccessful: isBreakerSuccess,
		}),
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// isBreakerSuccess keeps client errors (4xx) from tripping the breaker.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) && gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
		return true
	}
	return false
}

type createOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type refundRequest struct {
	Amount int64             `json:"amount"`
	Notes  map[string]string `json:"notes,omitempty"`
}

type entityResponse struct {
	ID     string `json:"id"`
	Entity string `json:"entity"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder mints a gateway order and returns its id.
func (c *Client) CreateOrder(ctx context.Context, req domain.GatewayOrderRequest) (string, error) {
	body := createOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	return c.call(ctx, opCreateOrder, "/v1/orders", body)
}

// IssueRefund asks the gateway to refund amount minor units of a captured payment.
func (c *Client) IssueRefund(ctx context.Context, req domain.GatewayRefundRequest) (string, error) {
	if req.PaymentID == "" {
		return "", &domain.GatewayError{Operation: opRefund, Err: errors.New("payment id is empty")}
	}
	path := fmt.Sprintf("/v1/payments/%s/refund", url.PathEscape(req.PaymentID))
	return c.call(ctx, opRefund, path, refundRequest{Amount: req.Amount, Notes: req.Notes})
}

func (c *Client) call(ctx context.Context, op, path string, payload any) (string, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, op, path, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = &domain.GatewayError{Operation: op, Err: err}
	}

	c.observe(op, start, err)
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (string, error) {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return "", &domain.GatewayError{Operation: op, Err: err}
	}
	httpReq.SetBasicAuth(c.keyID, c.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &domain.GatewayError{Operation: op, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", &domain.GatewayError{Operation: op, StatusCode: response.StatusCode, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		gwErr := &domain.GatewayError{Operation: op, StatusCode: response.StatusCode}
		var errResp errorResponse
		if err := json.Unmarshal(responseBody, &errResp); err == nil {
			gwErr.Code = errResp.Error.Code
			gwErr.Description = errResp.Error.Description
		}
		return "", gwErr
	}

	var entity entityResponse
	if err := json.Unmarshal(responseBody, &entity); err != nil {
		return "", &domain.GatewayError{Operation: op, StatusCode: response.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if entity.ID == "" {
		return "", &domain.GatewayError{Operation: op, StatusCode: response.StatusCode, Err: errors.New("response has no id")}
	}
	return entity.ID, nil
}

func (c *Client) observe(op string, start time.Time, err error) {
	if c.observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.observer.ObserveGatewayCall(op, outcome, time.Since(start))
}
