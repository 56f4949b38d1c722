package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status int16

const (
	StatusOpen   Status = 0
	StatusClosed Status = 1
)

type PaymentMethod int16

const (
	PaymentCash        PaymentMethod = 0
	PaymentCard        PaymentMethod = 1
	PaymentMealVoucher PaymentMethod = 2
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMealVoucher:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	switch m {
	case PaymentCash:
		return "cash"
	case PaymentCard:
		return "card"
	case PaymentMealVoucher:
		return "meal_voucher"
	}
	return "unknown"
}

// ItemStatus is the kitchen preparation state of a line item.
type ItemStatus int16

const (
	ItemPending   ItemStatus = 0
	ItemPreparing ItemStatus = 1
	ItemReady     ItemStatus = 2
	ItemServed    ItemStatus = 3
)

func (s ItemStatus) Valid() bool {
	return s >= ItemPending && s <= ItemServed
}

func (s ItemStatus) String() string {
	switch s {
	case ItemPending:
		return "pending"
	case ItemPreparing:
		return "preparing"
	case ItemReady:
		return "ready"
	case ItemServed:
		return "served"
	}
	return "unknown"
}

// Order money fields are minor units. recalcTotals is the only writer
// of Subtotal, DiscountAmount and Total.
type Order struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	TableID        snowflake.ID  `gorm:"column:table_id;not null" json:"table_id"`
	Status         Status        `gorm:"not null;default:0" json:"status"`
	OpenedAt       time.Time     `gorm:"column:opened_at;not null" json:"opened_at"`
	ClosedAt       *time.Time    `gorm:"column:closed_at" json:"closed_at,omitempty"`
	Subtotal       int64         `gorm:"not null;default:0" json:"subtotal"`
	DiscountRate   float64       `gorm:"column:discount_rate;not null;default:0" json:"discount_rate"`
	DiscountAmount int64         `gorm:"column:discount_amount;not null;default:0" json:"discount_amount"`
	Total          int64         `gorm:"not null;default:0" json:"total"`
	ClosedBy       *snowflake.ID `gorm:"column:closed_by" json:"closed_by,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID   snowflake.ID `gorm:"column:order_id;not null" json:"order_id"`
	ProductID snowflake.ID `gorm:"column:product_id;not null" json:"product_id"`
	Quantity  int          `gorm:"not null" json:"quantity"`
	UnitPrice int64        `gorm:"column:unit_price;not null" json:"unit_price"`
	LineTotal int64        `gorm:"column:line_total;not null" json:"line_total"`
	Status    ItemStatus   `gorm:"not null;default:0" json:"status"`
}

func (OrderItem) TableName() string { return "order_items" }

type Payment struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrderID    snowflake.ID  `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	Amount     int64         `gorm:"not null" json:"amount"`
	Method     PaymentMethod `gorm:"not null" json:"method"`
	ReceivedAt time.Time     `gorm:"column:received_at;not null" json:"received_at"`
}

func (Payment) TableName() string { return "payments" }

type CartItem struct {
	ProductID snowflake.ID `json:"product_id" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required"`
}

type SubmitCartRequest struct {
	Items []CartItem `json:"items" binding:"required"`
}

type UpdateDiscountRequest struct {
	Rate float64 `json:"rate"`
}

type CloseRequest struct {
	Method PaymentMethod `json:"method"`
}

// CloseResult reports whether this call performed the close or found
// it already done by an earlier or racing request.
type CloseResult struct {
	OrderID       snowflake.ID `json:"order_id"`
	AlreadyClosed bool         `json:"already_closed"`
	Amount        int64        `json:"amount"`
	Message       string       `json:"message"`
}

type TicketLine struct {
	ProductID   snowflake.ID `json:"product_id"`
	ProductName string       `gorm:"column:product_name" json:"product_name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   int64        `gorm:"column:unit_price" json:"unit_price"`
	LineTotal   int64        `gorm:"column:line_total" json:"line_total"`
	Status      ItemStatus   `json:"status"`
}

type Ticket struct {
	OrderID        snowflake.ID `json:"order_id"`
	TableNumber    int          `json:"table_number"`
	Status         Status       `json:"status"`
	OpenedAt       time.Time    `json:"opened_at"`
	Subtotal       int64        `json:"subtotal"`
	DiscountRate   float64      `json:"discount_rate"`
	DiscountAmount int64        `json:"discount_amount"`
	Total          int64        `json:"total"`
	Lines          []TicketLine `json:"lines"`
}

type HistoryFilter struct {
	From        time.Time
	To          time.Time
	TableNumber *int
}

type HistoryRow struct {
	OrderID       snowflake.ID   `gorm:"column:order_id" json:"order_id"`
	TableNumber   int            `gorm:"column:table_number" json:"table_number"`
	Status        Status         `json:"status"`
	OpenedAt      time.Time      `gorm:"column:opened_at" json:"opened_at"`
	ClosedAt      *time.Time     `gorm:"column:closed_at" json:"closed_at,omitempty"`
	Total         int64          `json:"total"`
	PaymentMethod *PaymentMethod `gorm:"column:payment_method" json:"payment_method,omitempty"`
	PaymentAmount *int64         `gorm:"column:payment_amount" json:"payment_amount,omitempty"`
}

type Detail struct {
	Order   Order        `json:"order"`
	Lines   []TicketLine `json:"lines"`
	Payment *Payment     `json:"payment,omitempty"`
}
