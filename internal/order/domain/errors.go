package domain

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrNoOpenOrder          = errors.New("no_open_order")
	ErrOrderClosed          = errors.New("order_closed")
	ErrEmptyCart            = errors.New("empty_cart")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrProductNotFound      = errors.New("product_not_found")
	ErrInvalidDiscountRate  = errors.New("invalid_discount_rate")
	ErrUnknownPaymentMethod = errors.New("unknown_payment_method")
)

// InsufficientStockError carries the conflicting numbers so the
// terminal can tell the staff exactly which line fell short.
type InsufficientStockError struct {
	ProductID   snowflake.ID
	ProductName string
	Stock       int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %d, requested %d",
		e.ProductName, e.Stock, e.Requested)
}
