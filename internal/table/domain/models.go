package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// State is the persisted table state. Reserved is never stored: the
// board derives it from active reservations at read time.
type State int16

const (
	StateEmpty    State = 0
	StateOccupied State = 1
)

type Table struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Number    int          `gorm:"not null;uniqueIndex" json:"number"`
	Capacity  int          `gorm:"not null" json:"capacity"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	State     State        `gorm:"not null;default:0" json:"state"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Table) TableName() string { return "tables" }

type CreateTableRequest struct {
	Number   int `json:"number" binding:"required,gt=0"`
	Capacity int `json:"capacity" binding:"required,gt=0"`
}

type UpdateTableRequest struct {
	Number   *int `json:"number" binding:"omitempty,gt=0"`
	Capacity *int `json:"capacity" binding:"omitempty,gt=0"`
}
