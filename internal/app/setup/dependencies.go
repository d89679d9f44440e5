package setup

import (
	"context"

	"github.com/LavaJover/shvark-ticket-service/internal/config"
	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config         *config.TicketConfig
	DB             *gorm.DB
	Redis          *redis.Client
	Kafka          *kafka.DefaultKafkaPublisher
	EventPublisher domain.EventPublisher
	Registry       *prometheus.Registry
	Metrics        *metrics.TicketMetrics
	Repositories   *Repositories
}

type Repositories struct {
	OrderRepo         domain.OrderRepository
	PaymentRepo       domain.PaymentRepository
	Ledger            domain.InventoryLedger
	TicketRepo        domain.TicketRepository
	RefundRepo        domain.RefundRepository
	WebhookEventsRepo domain.WebhookEventRepository
}

func InitializeDependencies(cfg *config.TicketConfig) (*Dependencies, error) {
	db := postgres.MustInitDB(cfg)

	ledger, err := repository.NewDefaultInventoryLedger(db)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		DB:       db,
		Redis:    initRedis(cfg),
		Registry: registry,
		Metrics:  metrics.NewTicketMetrics(registry),
		Repositories: &Repositories{
			OrderRepo:         repository.NewDefaultOrderRepository(db),
			PaymentRepo:       repository.NewDefaultPaymentRepository(db),
			Ledger:            ledger,
			TicketRepo:        repository.NewDefaultTicketRepository(db),
			RefundRepo:        repository.NewDefaultRefundRepository(db),
			WebhookEventsRepo: repository.NewDefaultWebhookEventRepository(db),
		},
	}

	if cfg.KafkaService.Enabled() {
		deps.Kafka = kafka.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers())
		deps.EventPublisher = kafka.NewEventPublisher(deps.Kafka, cfg.KafkaService.Topic)
	} else {
		logrus.Warn("kafka is not configured, domain events are disabled")
	}

	return deps, nil
}

func initRedis(cfg *config.TicketConfig) *redis.Client {
	if cfg.Redis.Addr == "" {
		logrus.Warn("redis is not configured, rate limiting is disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis ping failed, rate limiter will fail open until it recovers")
	}
	return client
}

// Close releases connections opened by InitializeDependencies.
func (d *Dependencies) Close() {
	if d.Kafka != nil {
		if err := d.Kafka.Close(); err != nil {
			logrus.WithError(err).Error("failed to close kafka writer")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			logrus.WithError(err).Error("failed to close redis client")
		}
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.WithError(err).Error("failed to close database")
		}
	}
}
