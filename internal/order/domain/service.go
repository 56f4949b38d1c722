package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	LockByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindOpenByTable(ctx context.Context, db *gorm.DB, tableID snowflake.ID) (*Order, error)
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	ListItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItem, error)
	UpsertItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	SumLineTotals(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (int64, error)
	UpdateTotals(ctx context.Context, db *gorm.DB, id snowflake.ID, subtotal, discountAmount, total int64) error
	UpdateDiscountRate(ctx context.Context, db *gorm.DB, id snowflake.ID, rate float64) error
	InsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) error
	CloseIfOpen(ctx context.Context, db *gorm.DB, id snowflake.ID, closedBy *snowflake.ID) (bool, error)
	Ticket(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Ticket, error)
	History(ctx context.Context, db *gorm.DB, filter HistoryFilter) ([]HistoryRow, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindPaymentByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Payment, error)
	TicketLines(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]TicketLine, error)
}

// Service is the order lifecycle engine. EnsureOpenOrderInTx joins a
// caller-owned transaction so the board can promote reservations and
// open tables in one scope.
type Service interface {
	EnsureOpenOrder(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error)
	EnsureOpenOrderInTx(ctx context.Context, tx *gorm.DB, tableID snowflake.ID) (snowflake.ID, error)
	OpenOrderID(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error)
	SubmitCart(ctx context.Context, orderID snowflake.ID, items []CartItem) (*Order, error)
	UpdateDiscountRate(ctx context.Context, orderID snowflake.ID, rate float64) (*Order, error)
	CloseWithPayment(ctx context.Context, orderID snowflake.ID, method PaymentMethod) (*CloseResult, error)
	Ticket(ctx context.Context, orderID snowflake.ID) (*Ticket, error)
	History(ctx context.Context, filter HistoryFilter) ([]HistoryRow, error)
	Detail(ctx context.Context, orderID snowflake.ID) (*Detail, error)
}
