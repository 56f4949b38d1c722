package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository reads the catalog and owns the stock primitives. LockByIDs
// and DecrementStock take the caller's handle: the order engine runs
// them inside its submit transaction.
type Repository interface {
	ListActiveCategories(ctx context.Context, db *gorm.DB) ([]Category, error)
	ListActiveProducts(ctx context.Context, db *gorm.DB, categoryID *snowflake.ID) ([]Product, error)
	LockByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Product, error)
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int) (bool, error)
}

type Service interface {
	Menu(ctx context.Context, categoryID *snowflake.ID) (*Menu, error)
}
