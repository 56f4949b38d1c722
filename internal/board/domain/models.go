package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"

	tabledomain "github.com/floorops/floorops/internal/table/domain"
)

// EffectiveState is the board-level view of a table. Reserved is a
// derived overlay computed at read time, never persisted.
type EffectiveState string

const (
	StateEmpty    EffectiveState = "empty"
	StateOccupied EffectiveState = "occupied"
	StateReserved EffectiveState = "reserved"
)

type ReservationInfo struct {
	ID           snowflake.ID `json:"id"`
	CustomerName string       `json:"customer_name"`
	ReservedAt   time.Time    `json:"reserved_at"`
	PartySize    *int         `json:"party_size,omitempty"`
}

type Tile struct {
	Table       tabledomain.Table `json:"table"`
	State       EffectiveState    `json:"state"`
	Blocked     bool              `json:"blocked"`
	Reservation *ReservationInfo  `json:"reservation,omitempty"`
}

// KPIs describe the floor at a glance. Percentages are integers;
// effective occupancy counts reservation-blocked empty tables as taken.
type KPIs struct {
	ActiveTables          int `json:"active_tables"`
	Occupied              int `json:"occupied"`
	ReservedBlockedEmpty  int `json:"reserved_blocked_empty"`
	WalkInAvailable       int `json:"walk_in_available"`
	PhysicalOccupancyPct  int `json:"physical_occupancy_pct"`
	EffectiveOccupancyPct int `json:"effective_occupancy_pct"`
}

type Board struct {
	Tiles       []Tile    `json:"tiles"`
	KPIs        KPIs      `json:"kpis"`
	GeneratedAt time.Time `json:"generated_at"`
}
