package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	orderdomain "github.com/floorops/floorops/internal/order/domain"
)

var (
	ErrItemNotFound      = errors.New("order_item_not_found")
	ErrUnknownItemStatus = errors.New("unknown_item_status")
)

type Repository interface {
	PendingItems(ctx context.Context, db *gorm.DB) ([]QueueItem, error)
	LockItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*LockedItem, error)
	UpdateItemStatus(ctx context.Context, db *gorm.DB, itemID snowflake.ID, status orderdomain.ItemStatus) error
}

type Service interface {
	PendingOrders(ctx context.Context) ([]QueueOrder, error)
	SetItemStatus(ctx context.Context, itemID snowflake.ID, status orderdomain.ItemStatus) error
}
