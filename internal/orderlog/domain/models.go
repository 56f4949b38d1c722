package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Action tags recorded on the audit trail.
const (
	ActionDiscount   = "DISCOUNT"
	ActionPayment    = "PAYMENT"
	ActionClose      = "CLOSE"
	ActionItemStatus = "ITEM_STATUS"
)

// Entry is an append-only audit row for a material order state transition.
// The engine never updates or deletes these.
type Entry struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"column:order_id;not null;index" json:"order_id"`
	Action    string       `gorm:"not null" json:"action"`
	OldValue  *string      `gorm:"column:old_value" json:"old_value,omitempty"`
	NewValue  *string      `gorm:"column:new_value" json:"new_value,omitempty"`
	Actor     *string      `gorm:"column:actor" json:"actor,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Entry) TableName() string { return "order_logs" }
