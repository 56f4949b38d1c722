package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	orderdomain "github.com/floorops/floorops/internal/order/domain"
)

// QueueItem is one line still moving through preparation, flattened
// with its table and product for the kitchen screen.
type QueueItem struct {
	ItemID      snowflake.ID           `gorm:"column:item_id" json:"item_id"`
	OrderID     snowflake.ID           `gorm:"column:order_id" json:"order_id"`
	TableNumber int                    `gorm:"column:table_number" json:"table_number"`
	ProductName string                 `gorm:"column:product_name" json:"product_name"`
	Quantity    int                    `json:"quantity"`
	Status      orderdomain.ItemStatus `json:"status"`
	OpenedAt    time.Time              `gorm:"column:opened_at" json:"opened_at"`
}

type QueueOrder struct {
	OrderID     snowflake.ID `json:"order_id"`
	TableNumber int          `json:"table_number"`
	OpenedAt    time.Time    `json:"opened_at"`
	Items       []QueueItem  `json:"items"`
}

// LockedItem is an item row locked together with its parent order's
// status.
type LockedItem struct {
	ItemID      snowflake.ID           `gorm:"column:item_id"`
	OrderID     snowflake.ID           `gorm:"column:order_id"`
	Status      orderdomain.ItemStatus `gorm:"column:status"`
	OrderStatus orderdomain.Status     `gorm:"column:order_status"`
}

type SetStatusRequest struct {
	Status orderdomain.ItemStatus `json:"status"`
}
