package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists reservations. The tx-taking methods are shared
// with the board, which runs conflict checks and promotions inside its
// own transaction scopes.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reservation *Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reservation, error)
	UpdateStatusIf(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status) (bool, error)
	FindConflict(ctx context.Context, db *gorm.DB, tableID snowflake.ID, at time.Time, window time.Duration) (*Reservation, error)
	DueActive(ctx context.Context, db *gorm.DB, now time.Time, grace time.Duration) ([]Reservation, error)
	ActiveInWindow(ctx context.Context, db *gorm.DB, now time.Time, window time.Duration) ([]Reservation, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]ListRow, error)
}

type Service interface {
	Create(ctx context.Context, req CreateReservationRequest) (*Reservation, error)
	Cancel(ctx context.Context, id snowflake.ID) error
	List(ctx context.Context, filter ListFilter) ([]ListRow, error)
}
