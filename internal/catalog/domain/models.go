package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Category struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	SortOrder int          `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Category) TableName() string { return "product_categories" }

// Product prices are minor units (cents). Stock is the on-hand count
// the order engine decrements at submit time.
type Product struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CategoryID snowflake.ID `gorm:"column:category_id;not null" json:"category_id"`
	Name       string       `gorm:"not null" json:"name"`
	Price      int64        `gorm:"not null" json:"price"`
	Stock      int          `gorm:"not null;default:0" json:"stock"`
	Active     bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// Menu is the active catalog grouped for the floor UI.
type Menu struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}
