package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists tables. LockByID and SetState take the caller's
// handle so the order engine and board can use them inside their own
// transactions.
type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Table, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Table, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Table, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number int) (*Table, error)
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Table, error)
	Create(ctx context.Context, db *gorm.DB, table *Table) error
	Update(ctx context.Context, db *gorm.DB, table *Table) error
	SetState(ctx context.Context, db *gorm.DB, id snowflake.ID, state State) (bool, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
	HasOpenOrder(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	HasOrders(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	HasReservations(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}

type Service interface {
	List(ctx context.Context) ([]Table, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Table, error)
	Create(ctx context.Context, req CreateTableRequest) (*Table, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateTableRequest) (*Table, error)
	ToggleActive(ctx context.Context, id snowflake.ID) (*Table, error)
	Delete(ctx context.Context, id snowflake.ID) error
}
