package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/kitchen/domain"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// PendingItems lists every unserved line of every open order, oldest
// order first, then preparation status, then product name.
func (r *repo) PendingItems(ctx context.Context, db *gorm.DB) ([]domain.QueueItem, error) {
	var items []domain.QueueItem
	err := db.WithContext(ctx).
		Raw(`SELECT oi.id AS item_id, o.id AS order_id, t.number AS table_number,
			p.name AS product_name, oi.quantity, oi.status, o.opened_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN tables t ON t.id = o.table_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = ? AND oi.status IN (?, ?, ?)
		ORDER BY o.opened_at ASC, o.id ASC, oi.status ASC, p.name ASC`,
			orderdomain.StatusOpen,
			orderdomain.ItemPending, orderdomain.ItemPreparing, orderdomain.ItemReady).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// LockItem locks the line together with its parent order so a racing
// close cannot slip between the status check and the update.
func (r *repo) LockItem(ctx context.Context, db *gorm.DB, itemID snowflake.ID) (*domain.LockedItem, error) {
	var item domain.LockedItem
	err := db.WithContext(ctx).
		Raw(`SELECT oi.id AS item_id, oi.order_id, oi.status, o.status AS order_status
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.id = ?
		FOR UPDATE`, itemID).
		Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ItemID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) UpdateItemStatus(ctx context.Context, db *gorm.DB, itemID snowflake.ID, status orderdomain.ItemStatus) error {
	return db.WithContext(ctx).
		Exec(`UPDATE order_items SET status = ? WHERE id = ?`, status, itemID).Error
}
