package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"userauth/internal/model"
)

// UserEventRepository stores the audit trail of user writes.
type UserEventRepository interface {
	Create(ctx context.Context, event *model.UserEvent) error
	ListByUser(ctx context.Context, userID string) ([]model.UserEvent, error)
}

type userEventRepository struct {
	db *gorm.DB
}

// NewUserEventRepository builds a GORM-backed event repository.
func NewUserEventRepository(db *gorm.DB) UserEventRepository {
	return &userEventRepository{db: db}
}

func (r *userEventRepository) Create(ctx context.Context, event *model.UserEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create user event: %w", err)
	}
	return nil
}

func (r *userEventRepository) ListByUser(ctx context.Context, userID string) ([]model.UserEvent, error) {
	var events []model.UserEvent
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at ASC").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	return events, nil
}
