package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogrepository "github.com/floorops/floorops/internal/catalog/repository"
	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/order/domain"
	"github.com/floorops/floorops/internal/order/repository"
	logdomain "github.com/floorops/floorops/internal/orderlog/domain"
	orderlogrepository "github.com/floorops/floorops/internal/orderlog/repository"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
	tablerepository "github.com/floorops/floorops/internal/table/repository"
	"github.com/floorops/floorops/internal/testdb"
)

type orderFixture struct {
	db    *gorm.DB
	clk   *clock.FakeClock
	genID *snowflake.Node
	svc   domain.Service
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := testdb.Open(t)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		TableRepo:   tablerepository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
		LogRepo:     orderlogrepository.Provide(),
	})
	return &orderFixture{db: db, clk: clk, genID: node, svc: svc}
}

func (f *orderFixture) seedTable(t *testing.T, number int) snowflake.ID {
	t.Helper()
	id := f.genID.Generate()
	err := f.db.Exec(`INSERT INTO tables (id, number, capacity, active, state) VALUES (?, ?, 4, 1, 0)`,
		id, number).Error
	if err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return id
}

func (f *orderFixture) seedProduct(t *testing.T, name string, price int64, stock int) snowflake.ID {
	t.Helper()
	id := f.genID.Generate()
	err := f.db.Exec(`INSERT INTO products (id, category_id, name, price, stock, active) VALUES (?, 1, ?, ?, ?, 1)`,
		id, name, price, stock).Error
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

func (f *orderFixture) tableState(t *testing.T, id snowflake.ID) tabledomain.State {
	t.Helper()
	var state tabledomain.State
	if err := f.db.Raw(`SELECT state FROM tables WHERE id = ?`, id).Scan(&state).Error; err != nil {
		t.Fatalf("failed to read table state: %v", err)
	}
	return state
}

func (f *orderFixture) productStock(t *testing.T, id snowflake.ID) int {
	t.Helper()
	var stock int
	if err := f.db.Raw(`SELECT stock FROM products WHERE id = ?`, id).Scan(&stock).Error; err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

func (f *orderFixture) order(t *testing.T, id snowflake.ID) domain.Order {
	t.Helper()
	var order domain.Order
	if err := f.db.Raw(`SELECT * FROM orders WHERE id = ?`, id).Scan(&order).Error; err != nil {
		t.Fatalf("failed to read order: %v", err)
	}
	return order
}

func TestEnsureOpenOrderIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 5)

	first, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}
	if f.tableState(t, tableID) != tabledomain.StateOccupied {
		t.Fatalf("expected table occupied after open")
	}

	second, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder again: %v", err)
	}
	if first != second {
		t.Fatalf("expected same order id, got %v and %v", first, second)
	}

	var count int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ? AND status = 0`, tableID).Scan(&count).Error; err != nil {
		t.Fatalf("count open orders: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one open order, got %d", count)
	}
}

func TestEnsureOpenOrderRejectsInactiveTable(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 9)
	if err := f.db.Exec(`UPDATE tables SET active = 0 WHERE id = ?`, tableID).Error; err != nil {
		t.Fatalf("deactivate table: %v", err)
	}

	if _, err := f.svc.EnsureOpenOrder(ctx, tableID); !errors.Is(err, tabledomain.ErrTableInactive) {
		t.Fatalf("expected ErrTableInactive, got %v", err)
	}
	if _, err := f.svc.EnsureOpenOrder(ctx, f.genID.Generate()); !errors.Is(err, tabledomain.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestSubmitCartTotalsAndStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 5)
	productID := f.seedProduct(t, "Moussaka", 5000, 10)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}

	order, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{
		{ProductID: productID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}

	if order.Subtotal != 10000 || order.DiscountAmount != 0 || order.Total != 10000 {
		t.Fatalf("unexpected totals: subtotal=%d discount=%d total=%d",
			order.Subtotal, order.DiscountAmount, order.Total)
	}
	if got := f.productStock(t, productID); got != 8 {
		t.Fatalf("expected stock 8, got %d", got)
	}
}

func TestSubmitCartMergesDuplicateLines(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 3)
	productID := f.seedProduct(t, "Ayran", 800, 10)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}

	order, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{
		{ProductID: productID, Quantity: 1},
		{ProductID: productID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}
	if order.Subtotal != 2400 {
		t.Fatalf("expected subtotal 2400, got %d", order.Subtotal)
	}

	var quantity int
	if err := f.db.Raw(`SELECT quantity FROM order_items WHERE order_id = ? AND product_id = ?`,
		orderID, productID).Scan(&quantity).Error; err != nil {
		t.Fatalf("read quantity: %v", err)
	}
	if quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", quantity)
	}
	if got := f.productStock(t, productID); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}
}

func TestSubmitCartAccumulatesAcrossSubmissions(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 4)
	productID := f.seedProduct(t, "Pide", 3000, 10)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}

	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 1}}); err != nil {
		t.Fatalf("first SubmitCart: %v", err)
	}

	// Price changes between submissions: quantity accumulates,
	// unit price is last-write-wins, line total follows the new price.
	if err := f.db.Exec(`UPDATE products SET price = 3500 WHERE id = ?`, productID).Error; err != nil {
		t.Fatalf("reprice: %v", err)
	}
	order, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 2}})
	if err != nil {
		t.Fatalf("second SubmitCart: %v", err)
	}

	var item domain.OrderItem
	if err := f.db.Raw(`SELECT * FROM order_items WHERE order_id = ? AND product_id = ?`,
		orderID, productID).Scan(&item).Error; err != nil {
		t.Fatalf("read item: %v", err)
	}
	if item.Quantity != 3 || item.UnitPrice != 3500 || item.LineTotal != 10500 {
		t.Fatalf("unexpected line: qty=%d unit=%d total=%d", item.Quantity, item.UnitPrice, item.LineTotal)
	}
	if order.Subtotal != 10500 {
		t.Fatalf("expected subtotal 10500, got %d", order.Subtotal)
	}
}

func TestSubmitCartInsufficientStockNoPartialEffect(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 6)
	plenty := f.seedProduct(t, "Kebap", 4000, 10)
	scarce := f.seedProduct(t, "Baklava", 1500, 1)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}

	_, err = f.svc.SubmitCart(ctx, orderID, []domain.CartItem{
		{ProductID: plenty, Quantity: 2},
		{ProductID: scarce, Quantity: 3},
	})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Stock != 1 || stockErr.Requested != 3 {
		t.Fatalf("unexpected conflict detail: %+v", stockErr)
	}

	// Whole submission rolled back: no lines, no decrement, totals zero.
	var itemCount int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM order_items WHERE order_id = ?`, orderID).Scan(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 0 {
		t.Fatalf("expected no items after failed submit, got %d", itemCount)
	}
	if got := f.productStock(t, plenty); got != 10 {
		t.Fatalf("expected stock 10 untouched, got %d", got)
	}
	if order := f.order(t, orderID); order.Subtotal != 0 || order.Total != 0 {
		t.Fatalf("expected totals untouched, got subtotal=%d total=%d", order.Subtotal, order.Total)
	}
}

func TestSubmitCartLastUnitContention(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableA := f.seedTable(t, 1)
	tableB := f.seedTable(t, 2)
	productID := f.seedProduct(t, "Künefe", 2000, 1)

	orderA, err := f.svc.EnsureOpenOrder(ctx, tableA)
	if err != nil {
		t.Fatalf("open order A: %v", err)
	}
	orderB, err := f.svc.EnsureOpenOrder(ctx, tableB)
	if err != nil {
		t.Fatalf("open order B: %v", err)
	}

	if _, err := f.svc.SubmitCart(ctx, orderA, []domain.CartItem{{ProductID: productID, Quantity: 1}}); err != nil {
		t.Fatalf("first submission should win: %v", err)
	}

	_, err = f.svc.SubmitCart(ctx, orderB, []domain.CartItem{{ProductID: productID, Quantity: 1}})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError for loser, got %v", err)
	}
	if got := f.productStock(t, productID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
	if order := f.order(t, orderB); order.Subtotal != 0 {
		t.Fatalf("loser order must stay untouched, subtotal=%d", order.Subtotal)
	}
}

func TestSubmitCartValidation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 7)
	productID := f.seedProduct(t, "Çay", 300, 5)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}

	if _, err := f.svc.SubmitCart(ctx, orderID, nil); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 0}}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: f.genID.Generate(), Quantity: 1}}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateDiscountRate(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 5)
	productID := f.seedProduct(t, "Moussaka", 5000, 10)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}
	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 2}}); err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}

	order, err := f.svc.UpdateDiscountRate(ctx, orderID, 10)
	if err != nil {
		t.Fatalf("UpdateDiscountRate: %v", err)
	}
	if order.DiscountAmount != 1000 || order.Total != 9000 {
		t.Fatalf("unexpected totals after discount: discount=%d total=%d", order.DiscountAmount, order.Total)
	}

	var entry logdomain.Entry
	if err := f.db.Raw(`SELECT * FROM order_logs WHERE order_id = ? AND action = ?`,
		orderID, logdomain.ActionDiscount).Scan(&entry).Error; err != nil {
		t.Fatalf("read audit: %v", err)
	}
	if entry.OldValue == nil || *entry.OldValue != "0" || entry.NewValue == nil || *entry.NewValue != "10" {
		t.Fatalf("unexpected audit values: %+v", entry)
	}

	if _, err := f.svc.UpdateDiscountRate(ctx, orderID, 101); !errors.Is(err, domain.ErrInvalidDiscountRate) {
		t.Fatalf("expected ErrInvalidDiscountRate, got %v", err)
	}
	if _, err := f.svc.UpdateDiscountRate(ctx, orderID, -1); !errors.Is(err, domain.ErrInvalidDiscountRate) {
		t.Fatalf("expected ErrInvalidDiscountRate, got %v", err)
	}
}

func TestCloseWithPaymentIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 5)
	productID := f.seedProduct(t, "Moussaka", 5000, 10)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}
	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 2}}); err != nil {
		t.Fatalf("SubmitCart: %v", err)
	}
	if _, err := f.svc.UpdateDiscountRate(ctx, orderID, 10); err != nil {
		t.Fatalf("UpdateDiscountRate: %v", err)
	}

	first, err := f.svc.CloseWithPayment(ctx, orderID, domain.PaymentCash)
	if err != nil {
		t.Fatalf("CloseWithPayment: %v", err)
	}
	if first.AlreadyClosed {
		t.Fatalf("first close must not report already closed")
	}
	if first.Amount != 9000 {
		t.Fatalf("expected amount 9000, got %d", first.Amount)
	}
	if f.tableState(t, tableID) != tabledomain.StateEmpty {
		t.Fatalf("expected table freed after close")
	}

	second, err := f.svc.CloseWithPayment(ctx, orderID, domain.PaymentCash)
	if err != nil {
		t.Fatalf("second CloseWithPayment: %v", err)
	}
	if !second.AlreadyClosed {
		t.Fatalf("second close must report already closed")
	}

	var paymentCount int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM payments WHERE order_id = ?`, orderID).Scan(&paymentCount).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if paymentCount != 1 {
		t.Fatalf("expected exactly one payment row, got %d", paymentCount)
	}

	var auditCount int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM order_logs WHERE order_id = ? AND action IN (?, ?)`,
		orderID, logdomain.ActionPayment, logdomain.ActionClose).Scan(&auditCount).Error; err != nil {
		t.Fatalf("count audits: %v", err)
	}
	if auditCount != 2 {
		t.Fatalf("expected one PAYMENT and one CLOSE audit, got %d", auditCount)
	}

	if _, err := f.svc.CloseWithPayment(ctx, orderID, domain.PaymentMethod(9)); !errors.Is(err, domain.ErrUnknownPaymentMethod) {
		t.Fatalf("expected ErrUnknownPaymentMethod, got %v", err)
	}
}

func TestSubmitCartOnClosedOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	tableID := f.seedTable(t, 8)
	productID := f.seedProduct(t, "Çorba", 1200, 5)

	orderID, err := f.svc.EnsureOpenOrder(ctx, tableID)
	if err != nil {
		t.Fatalf("EnsureOpenOrder: %v", err)
	}
	if _, err := f.svc.CloseWithPayment(ctx, orderID, domain.PaymentCard); err != nil {
		t.Fatalf("CloseWithPayment: %v", err)
	}

	if _, err := f.svc.SubmitCart(ctx, orderID, []domain.CartItem{{ProductID: productID, Quantity: 1}}); !errors.Is(err, domain.ErrOrderClosed) {
		t.Fatalf("expected ErrOrderClosed, got %v", err)
	}
}
