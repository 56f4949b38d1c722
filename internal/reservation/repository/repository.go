package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/reservation/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reservation *domain.Reservation) error {
	return db.WithContext(ctx).Create(reservation).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reservations WHERE id = ?`, id).
		Scan(&reservation).Error
	if err != nil {
		return nil, err
	}
	if reservation.ID == 0 {
		return nil, nil
	}
	return &reservation, nil
}

// UpdateStatusIf is the conditional transition guard for the terminal
// states: zero rows means the reservation already left `from`.
func (r *repo) UpdateStatusIf(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.Status) (bool, error) {
	res := db.WithContext(ctx).
		Exec(`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindConflict returns the nearest active reservation for the table
// whose requested time lies within the window around `at`.
func (r *repo) FindConflict(ctx context.Context, db *gorm.DB, tableID snowflake.ID, at time.Time, window time.Duration) (*domain.Reservation, error) {
	var reservation domain.Reservation
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reservations
		WHERE table_id = ? AND status = ? AND reserved_at >= ? AND reserved_at <= ?
		ORDER BY reserved_at ASC
		LIMIT 1`, tableID, domain.StatusActive, at.Add(-window), at.Add(window)).
		Scan(&reservation).Error
	if err != nil {
		return nil, err
	}
	if reservation.ID == 0 {
		return nil, nil
	}
	return &reservation, nil
}

// DueActive lists active reservations whose time has arrived but is
// still inside the grace window, oldest first.
func (r *repo) DueActive(ctx context.Context, db *gorm.DB, now time.Time, grace time.Duration) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reservations
		WHERE status = ? AND reserved_at <= ? AND reserved_at >= ?
		ORDER BY reserved_at ASC`, domain.StatusActive, now, now.Add(-grace)).
		Scan(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ActiveInWindow lists, across all tables, the active reservations whose
// requested time is within the block window of now. Ordered so the
// board can take the first row per table as the nearest one.
func (r *repo) ActiveInWindow(ctx context.Context, db *gorm.DB, now time.Time, window time.Duration) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM reservations
		WHERE status = ? AND reserved_at >= ? AND reserved_at <= ?
		ORDER BY table_id ASC, reserved_at ASC`, domain.StatusActive, now.Add(-window), now.Add(window)).
		Scan(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.ListRow, error) {
	query := `SELECT r.*, t.number AS table_number
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		WHERE 1=1`
	var args []interface{}
	if filter.From != nil {
		query += ` AND r.reserved_at >= ?`
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += ` AND r.reserved_at < ?`
		args = append(args, *filter.To)
	}
	if filter.TableNumber != nil {
		query += ` AND t.number = ?`
		args = append(args, *filter.TableNumber)
	}
	if filter.Status != nil {
		query += ` AND r.status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		query += ` AND (r.customer_name LIKE ? OR r.phone LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY r.reserved_at DESC LIMIT ?`
	args = append(args, filter.Limit)

	var rows []domain.ListRow
	err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
