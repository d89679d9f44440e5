package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-ticket-service/internal/domain"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-ticket-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultWebhookEventRepository struct {
	DB *gorm.DB
}

func NewDefaultWebhookEventRepository(db *gorm.DB) *DefaultWebhookEventRepository {
	return &DefaultWebhookEventRepository{DB: db}
}

// RecordEvent stores the delivery and reports whether an earlier delivery
// with the same id was already processed successfully.
func (r *DefaultWebhookEventRepository) RecordEvent(ctx context.Context, event *domain.WebhookEvent) (bool, error) {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}

	db := r.DB.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(mappers.ToGORMWebhookEvent(event))
	if res.Error != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	var stored models.WebhookEventModel
	if err := db.First(&stored, "event_id = ?", event.EventID).Error; err != nil {
		return false, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return stored.Processed, nil
}

func (r *DefaultWebhookEventRepository) MarkProcessed(ctx context.Context, eventID string, processErr error) error {
	updates := map[string]interface{}{}
	if processErr != nil {
		updates["processed"] = false
		updates["error"] = processErr.Error()
	} else {
		updates["processed"] = true
		updates["error"] = ""
		updates["processed_at"] = time.Now().UTC()
	}

	err := r.DB.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("event_id = ?", eventID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update webhook event: %w", err)
	}
	return nil
}

func (r *DefaultWebhookEventRepository) GetEvent(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	var stored models.WebhookEventModel
	if err := r.DB.WithContext(ctx).First(&stored, "event_id = ?", eventID).Error; err != nil {
		return nil, fmt.Errorf("failed to load webhook event: %w", err)
	}
	return mappers.ToDomainWebhookEvent(&stored), nil
}
