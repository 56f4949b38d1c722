package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/table/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Table, error) {
	var tables []domain.Table
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM tables ORDER BY number ASC`).
		Scan(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.Table, error) {
	var tables []domain.Table
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM tables WHERE active = ? ORDER BY number ASC`, true).
		Scan(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Table, error) {
	var table domain.Table
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM tables WHERE id = ?`, id).
		Scan(&table).Error
	if err != nil {
		return nil, err
	}
	if table.ID == 0 {
		return nil, nil
	}
	return &table, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number int) (*domain.Table, error) {
	var table domain.Table
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM tables WHERE number = ?`, number).
		Scan(&table).Error
	if err != nil {
		return nil, err
	}
	if table.ID == 0 {
		return nil, nil
	}
	return &table, nil
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Table, error) {
	var table domain.Table
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM tables WHERE id = ? FOR UPDATE`, id).
		Scan(&table).Error
	if err != nil {
		return nil, err
	}
	if table.ID == 0 {
		return nil, nil
	}
	return &table, nil
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, table *domain.Table) error {
	return db.WithContext(ctx).Create(table).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, table *domain.Table) error {
	return db.WithContext(ctx).
		Exec(`UPDATE tables SET number = ?, capacity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			table.Number, table.Capacity, table.ID).Error
}

// SetState only writes when the state actually changes, so concurrent
// transitions report false instead of double-applying.
func (r *repo) SetState(ctx context.Context, db *gorm.DB, id snowflake.ID, state domain.State) (bool, error) {
	res := db.WithContext(ctx).
		Exec(`UPDATE tables SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND state <> ?`,
			state, id, state)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).
		Exec(`UPDATE tables SET active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, active, id).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM tables WHERE id = ?`, id).Error
}

func (r *repo) HasOpenOrder(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ? AND status = ?`, id, 0).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) HasOrders(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ?`, id).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) HasReservations(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(1) FROM reservations WHERE table_id = ? AND status = ?`, id, 0).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
