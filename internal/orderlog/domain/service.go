package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository writes and reads the order audit trail. Append takes the
// caller's handle so it can join the transaction that performed the
// change being recorded.
type Repository interface {
	Append(ctx context.Context, db *gorm.DB, entry *Entry) error
	ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]Entry, error)
}

type Service interface {
	ListByOrder(ctx context.Context, orderID snowflake.ID) ([]Entry, error)
}
