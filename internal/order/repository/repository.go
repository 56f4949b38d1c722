package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/order/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM orders WHERE id = ? FOR UPDATE`, id).
		Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM orders WHERE id = ?`, id).
		Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindOpenByTable(ctx context.Context, db *gorm.DB, tableID snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM orders WHERE table_id = ? AND status = ?`, tableID, domain.StatusOpen).
		Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM order_items WHERE order_id = ?`, orderID).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpsertItem accumulates quantity on the (order_id, product_id) pair.
// Unit price is last-write-wins and the line total is recomputed from
// the accumulated quantity.
func (r *repo) UpsertItem(ctx context.Context, db *gorm.DB, item *domain.OrderItem) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_total, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (order_id, product_id) DO UPDATE SET
			quantity = order_items.quantity + excluded.quantity,
			unit_price = excluded.unit_price,
			line_total = (order_items.quantity + excluded.quantity) * excluded.unit_price`,
		item.ID, item.OrderID, item.ProductID, item.Quantity,
		item.UnitPrice, item.LineTotal, item.Status).Error
}

func (r *repo) SumLineTotals(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error) {
	var subtotal int64
	err := db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(line_total), 0) FROM order_items WHERE order_id = ?`, orderID).
		Scan(&subtotal).Error
	if err != nil {
		return 0, err
	}
	return subtotal, nil
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, subtotal, discountAmount, total int64) error {
	return db.WithContext(ctx).
		Exec(`UPDATE orders SET subtotal = ?, discount_amount = ?, total = ? WHERE id = ?`,
			subtotal, discountAmount, total, id).Error
}

func (r *repo) UpdateDiscountRate(ctx context.Context, db *gorm.DB, id snowflake.ID, rate float64) error {
	return db.WithContext(ctx).
		Exec(`UPDATE orders SET discount_rate = ? WHERE id = ?`, rate, id).Error
}

func (r *repo) InsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

// CloseIfOpen is the conditional close guard: zero rows affected means
// another request already closed the order.
func (r *repo) CloseIfOpen(ctx context.Context, db *gorm.DB, id snowflake.ID, closedBy *snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Exec(`UPDATE orders SET status = ?, closed_at = CURRENT_TIMESTAMP, closed_by = ? WHERE id = ? AND status = ?`,
			domain.StatusClosed, closedBy, id, domain.StatusOpen)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindPaymentByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).
		Raw(`SELECT * FROM payments WHERE order_id = ?`, orderID).
		Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) TicketLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.TicketLine, error) {
	var lines []domain.TicketLine
	err := db.WithContext(ctx).
		Raw(`SELECT oi.product_id, p.name AS product_name, oi.quantity, oi.unit_price, oi.line_total, oi.status
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY p.name ASC`, orderID).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) Ticket(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).
		Raw(`SELECT o.id AS order_id, t.number AS table_number, o.status, o.opened_at,
			o.subtotal, o.discount_rate, o.discount_amount, o.total
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		WHERE o.id = ?`, orderID).
		Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.OrderID == 0 {
		return nil, nil
	}
	lines, err := r.TicketLines(ctx, db, orderID)
	if err != nil {
		return nil, err
	}
	ticket.Lines = lines
	return &ticket, nil
}

func (r *repo) History(ctx context.Context, db *gorm.DB, filter domain.HistoryFilter) ([]domain.HistoryRow, error) {
	query := `SELECT o.id AS order_id, t.number AS table_number, o.status, o.opened_at, o.closed_at, o.total,
			p.method AS payment_method, p.amount AS payment_amount
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.opened_at >= ? AND o.opened_at < ?`
	args := []interface{}{filter.From, filter.To}
	if filter.TableNumber != nil {
		query += ` AND t.number = ?`
		args = append(args, *filter.TableNumber)
	}
	query += ` ORDER BY o.opened_at DESC, o.id DESC`

	var rows []domain.HistoryRow
	err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
