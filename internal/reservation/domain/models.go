package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status int16

const (
	StatusActive    Status = 0
	StatusCancelled Status = 1
	StatusUsed      Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCancelled:
		return "cancelled"
	case StatusUsed:
		return "used"
	}
	return "unknown"
}

// Reservation is immutable after leaving Active: Used and Cancelled are
// terminal.
type Reservation struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	TableID      snowflake.ID      `gorm:"column:table_id;not null" json:"table_id"`
	CustomerName string            `gorm:"column:customer_name;not null" json:"customer_name"`
	Phone        string            `gorm:"not null" json:"phone"`
	ReservedAt   time.Time         `gorm:"column:reserved_at;not null" json:"reserved_at"`
	PartySize    *int              `gorm:"column:party_size" json:"party_size,omitempty"`
	Notes        *string           `gorm:"column:notes" json:"notes,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`
	Status       Status            `gorm:"not null;default:0" json:"status"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Reservation) TableName() string { return "reservations" }

type CreateReservationRequest struct {
	TableID      snowflake.ID      `json:"table_id" binding:"required"`
	CustomerName string            `json:"customer_name" binding:"required"`
	Phone        string            `json:"phone"`
	ReservedAt   time.Time         `json:"reserved_at" binding:"required"`
	PartySize    *int              `json:"party_size" binding:"omitempty,gt=0"`
	Notes        *string           `json:"notes"`
	Metadata     datatypes.JSONMap `json:"metadata"`
}

type ListFilter struct {
	From        *time.Time
	To          *time.Time
	TableNumber *int
	Status      *Status
	Search      string
	Limit       int
}

type ListRow struct {
	Reservation
	TableNumber int `gorm:"column:table_number" json:"table_number"`
}
