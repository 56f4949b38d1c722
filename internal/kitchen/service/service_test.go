package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/kitchen/domain"
	kitchenrepository "github.com/floorops/floorops/internal/kitchen/repository"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
	orderlogrepository "github.com/floorops/floorops/internal/orderlog/repository"
	"github.com/floorops/floorops/internal/testdb"
)

type kitchenFixture struct {
	db    *gorm.DB
	clk   *clock.FakeClock
	genID *snowflake.Node
	svc   domain.Service
}

func newKitchenFixture(t *testing.T) *kitchenFixture {
	t.Helper()

	db := testdb.Open(t)
	clk := clock.NewFakeClock(time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    kitchenrepository.Provide(),
		LogRepo: orderlogrepository.Provide(),
	})
	return &kitchenFixture{db: db, clk: clk, genID: node, svc: svc}
}

func (f *kitchenFixture) seedOrder(t *testing.T, tableNumber int, openedAt time.Time, status orderdomain.Status) snowflake.ID {
	t.Helper()
	tableID := f.genID.Generate()
	if err := f.db.Exec(`INSERT INTO tables (id, number, capacity, active, state) VALUES (?, ?, 4, 1, 1)`,
		tableID, tableNumber).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	orderID := f.genID.Generate()
	if err := f.db.Exec(`INSERT INTO orders (id, table_id, status, opened_at) VALUES (?, ?, ?, ?)`,
		orderID, tableID, status, openedAt).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return orderID
}

func (f *kitchenFixture) seedItem(t *testing.T, orderID snowflake.ID, name string, qty int, status orderdomain.ItemStatus) snowflake.ID {
	t.Helper()
	productID := f.genID.Generate()
	if err := f.db.Exec(`INSERT INTO products (id, category_id, name, price, stock, active) VALUES (?, 0, ?, 1000, 100, 1)`,
		productID, name).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	itemID := f.genID.Generate()
	if err := f.db.Exec(`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_total, status) VALUES (?, ?, ?, ?, 1000, ?, ?)`,
		itemID, orderID, productID, qty, int64(qty)*1000, status).Error; err != nil {
		t.Fatalf("failed to seed item: %v", err)
	}
	return itemID
}

func TestPendingOrdersGroupsAndOrders(t *testing.T) {
	f := newKitchenFixture(t)
	ctx := context.Background()
	base := f.clk.Now()

	late := f.seedOrder(t, 2, base.Add(10*time.Minute), orderdomain.StatusOpen)
	early := f.seedOrder(t, 1, base, orderdomain.StatusOpen)
	f.seedItem(t, late, "Ayran", 2, orderdomain.ItemPending)
	f.seedItem(t, early, "Kebap", 1, orderdomain.ItemPreparing)
	f.seedItem(t, early, "Pide", 3, orderdomain.ItemReady)
	f.seedItem(t, early, "Baklava", 1, orderdomain.ItemServed) // off the queue

	closed := f.seedOrder(t, 3, base, orderdomain.StatusClosed)
	f.seedItem(t, closed, "Çay", 1, orderdomain.ItemPending) // closed orders never surface

	orders, err := f.svc.PendingOrders(ctx)
	if err != nil {
		t.Fatalf("PendingOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 queue orders, got %d", len(orders))
	}
	if orders[0].OrderID != early || orders[1].OrderID != late {
		t.Fatalf("expected oldest order first, got %v then %v", orders[0].OrderID, orders[1].OrderID)
	}
	if orders[0].TableNumber != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("unexpected first group: table=%d items=%d", orders[0].TableNumber, len(orders[0].Items))
	}
	for _, item := range orders[0].Items {
		if item.Status == orderdomain.ItemServed {
			t.Fatalf("served items must not appear in the queue")
		}
	}
	if orders[1].Items[0].ProductName != "Ayran" || orders[1].Items[0].Quantity != 2 {
		t.Fatalf("unexpected second group item: %+v", orders[1].Items[0])
	}
}

func TestSetItemStatusWritesAudit(t *testing.T) {
	f := newKitchenFixture(t)
	ctx := context.Background()

	orderID := f.seedOrder(t, 1, f.clk.Now(), orderdomain.StatusOpen)
	itemID := f.seedItem(t, orderID, "Kebap", 1, orderdomain.ItemPending)

	if err := f.svc.SetItemStatus(ctx, itemID, orderdomain.ItemPreparing); err != nil {
		t.Fatalf("SetItemStatus: %v", err)
	}

	var status orderdomain.ItemStatus
	if err := f.db.Raw(`SELECT status FROM order_items WHERE id = ?`, itemID).Scan(&status).Error; err != nil {
		t.Fatalf("read item status: %v", err)
	}
	if status != orderdomain.ItemPreparing {
		t.Fatalf("expected preparing, got %v", status)
	}

	var log struct {
		Action   string
		OldValue string
		NewValue string
	}
	err := f.db.Raw(`SELECT action, old_value, new_value FROM order_logs WHERE order_id = ?`, orderID).Scan(&log).Error
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if log.Action != "ITEM_STATUS" || log.OldValue != "pending" || log.NewValue != "preparing" {
		t.Fatalf("unexpected audit entry: %+v", log)
	}
}

func TestSetItemStatusRejectsClosedOrder(t *testing.T) {
	f := newKitchenFixture(t)
	ctx := context.Background()

	orderID := f.seedOrder(t, 1, f.clk.Now(), orderdomain.StatusClosed)
	itemID := f.seedItem(t, orderID, "Kebap", 1, orderdomain.ItemReady)

	if err := f.svc.SetItemStatus(ctx, itemID, orderdomain.ItemServed); !errors.Is(err, orderdomain.ErrOrderClosed) {
		t.Fatalf("expected ErrOrderClosed, got %v", err)
	}

	var status orderdomain.ItemStatus
	if err := f.db.Raw(`SELECT status FROM order_items WHERE id = ?`, itemID).Scan(&status).Error; err != nil {
		t.Fatalf("read item status: %v", err)
	}
	if status != orderdomain.ItemReady {
		t.Fatalf("item status must be untouched, got %v", status)
	}
}

func TestSetItemStatusValidation(t *testing.T) {
	f := newKitchenFixture(t)
	ctx := context.Background()

	if err := f.svc.SetItemStatus(ctx, f.genID.Generate(), orderdomain.ItemStatus(9)); !errors.Is(err, domain.ErrUnknownItemStatus) {
		t.Fatalf("expected ErrUnknownItemStatus, got %v", err)
	}
	if err := f.svc.SetItemStatus(ctx, f.genID.Generate(), orderdomain.ItemReady); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}
