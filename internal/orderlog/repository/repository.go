package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/orderlog/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).
		Raw(`SELECT id, order_id, action, old_value, new_value, actor, created_at
		FROM order_logs
		WHERE order_id = ?
		ORDER BY created_at DESC, id DESC`, orderID).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
