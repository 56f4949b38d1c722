package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/catalog/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListActiveCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var categories []domain.Category
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM product_categories WHERE active = ? ORDER BY sort_order ASC, name ASC`, true).
		Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repo) ListActiveProducts(ctx context.Context, db *gorm.DB, categoryID *snowflake.ID) ([]domain.Product, error) {
	query := `SELECT * FROM products WHERE active = ?`
	args := []interface{}{true}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name ASC`

	var products []domain.Product
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// LockByIDs locks the product rows in one statement so concurrent cart
// submissions serialize on the shared products.
func (r *repo) LockByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Product, error) {
	var products []domain.Product
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM products WHERE id IN (?) FOR UPDATE`, ids).
		Scan(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// DecrementStock is guarded: it refuses to go below zero and reports
// whether the decrement actually happened.
func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, qty int) (bool, error) {
	res := db.WithContext(ctx).
		Exec(`UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND stock >= ?`,
			qty, id, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
