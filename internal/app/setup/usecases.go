package setup

import (
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-ticket-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/auth"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/ratelimit"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/razorpay"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/signature"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/order"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/reconcile"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/refund"
	"github.com/LavaJover/shvark-ticket-service/internal/usecase/ticket"
	"github.com/gin-gonic/gin"
)

type UseCases struct {
	Emitter       *usecase.EventEmitter
	OrderUsecase  order.OrderUsecase
	RefundUsecase refund.RefundUsecase
	Dispatcher    reconcile.Dispatcher
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	cfg := deps.Config
	repos := deps.Repositories

	gateway := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		Timeout:   cfg.Razorpay.Timeout,
	}, razorpay.WithObserver(deps.Metrics))
	verifier := signature.NewVerifier(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)
	emitter := usecase.NewEventEmitter(deps.EventPublisher, 0)

	issuer := ticket.NewDefaultTicketIssuer(repos.Ledger, repos.TicketRepo, emitter, deps.Metrics)
	orderUsecase := order.NewDefaultOrderUsecase(
		repos.OrderRepo,
		repos.PaymentRepo,
		repos.Ledger,
		gateway,
		verifier,
		issuer,
		emitter,
		deps.Metrics,
		cfg.Razorpay.Currency,
	)
	refundUsecase := refund.NewDefaultRefundUsecase(
		repos.OrderRepo,
		repos.PaymentRepo,
		repos.RefundRepo,
		gateway,
		emitter,
		deps.Metrics,
	)
	dispatcher := reconcile.NewDefaultDispatcher(reconcile.Deps{
		Verifier: verifier,
		Events:   repos.WebhookEventsRepo,
		Machine:  orderUsecase,
		Orders:   repos.OrderRepo,
		Payments: repos.PaymentRepo,
		Tickets:  repos.TicketRepo,
		Refunds:  repos.RefundRepo,
		Issuer:   issuer,
		Metrics:  deps.Metrics,
	})

	return &UseCases{
		Emitter:       emitter,
		OrderUsecase:  orderUsecase,
		RefundUsecase: refundUsecase,
		Dispatcher:    dispatcher,
	}
}

func InitializeRouter(deps *Dependencies, ucs *UseCases) *gin.Engine {
	var limiter middleware.Limiter
	if deps.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(deps.Redis, deps.Config.RateLimit.Requests, deps.Config.RateLimit.Window)
	}

	return handlers.InitRoutes(handlers.RouterDeps{
		Orders:         handlers.NewOrderHandler(ucs.OrderUsecase),
		Refunds:        handlers.NewRefundHandler(ucs.RefundUsecase),
		Webhooks:       handlers.NewWebhookHandler(ucs.Dispatcher),
		Identity:       auth.NewJWTResolver(deps.Config.Auth.JWTSecret),
		Limiter:        limiter,
		Metrics:        deps.Metrics,
		Gatherer:       deps.Registry,
		RequestTimeout: deps.Config.HTTPServer.RequestTimeout,
	})
}
