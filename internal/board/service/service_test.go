package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	boarddomain "github.com/floorops/floorops/internal/board/domain"
	catalogrepository "github.com/floorops/floorops/internal/catalog/repository"
	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/config"
	"github.com/floorops/floorops/internal/observability/metrics"
	orderrepository "github.com/floorops/floorops/internal/order/repository"
	orderservice "github.com/floorops/floorops/internal/order/service"
	orderlogrepository "github.com/floorops/floorops/internal/orderlog/repository"
	resdomain "github.com/floorops/floorops/internal/reservation/domain"
	resrepository "github.com/floorops/floorops/internal/reservation/repository"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
	tablerepository "github.com/floorops/floorops/internal/table/repository"
	"github.com/floorops/floorops/internal/testdb"
)

type boardFixture struct {
	db    *gorm.DB
	clk   *clock.FakeClock
	genID *snowflake.Node
	svc   boarddomain.Service
}

func newBoardFixture(t *testing.T, now time.Time) *boardFixture {
	t.Helper()

	db := testdb.Open(t)
	clk := clock.NewFakeClock(now)
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	orders := orderservice.New(orderservice.Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        orderrepository.Provide(),
		TableRepo:   tablerepository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
		LogRepo:     orderlogrepository.Provide(),
	})
	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clk,
		FloorCfg:  config.NewStaticFloorConfigHolder(config.DefaultFloorConfig()),
		Metrics:   metrics.NewWithRegisterer(prometheus.NewRegistry()),
		TableRepo: tablerepository.Provide(),
		ResRepo:   resrepository.Provide(),
		Orders:    orders,
	})
	return &boardFixture{db: db, clk: clk, genID: node, svc: svc}
}

func (f *boardFixture) seedTable(t *testing.T, number int, active bool, state tabledomain.State) snowflake.ID {
	t.Helper()
	id := f.genID.Generate()
	err := f.db.Exec(`INSERT INTO tables (id, number, capacity, active, state) VALUES (?, ?, 4, ?, ?)`,
		id, number, active, state).Error
	if err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return id
}

func (f *boardFixture) seedReservation(t *testing.T, tableID snowflake.ID, name string, reservedAt time.Time) snowflake.ID {
	t.Helper()
	id := f.genID.Generate()
	err := f.db.Exec(`INSERT INTO reservations (id, table_id, customer_name, phone, reserved_at, status) VALUES (?, ?, ?, '', ?, 0)`,
		id, tableID, name, reservedAt).Error
	if err != nil {
		t.Fatalf("failed to seed reservation: %v", err)
	}
	return id
}

func (f *boardFixture) seedOpenOrder(t *testing.T, tableID snowflake.ID) snowflake.ID {
	t.Helper()
	id := f.genID.Generate()
	err := f.db.Exec(`INSERT INTO orders (id, table_id, status, opened_at) VALUES (?, ?, 0, ?)`,
		id, tableID, f.clk.Now()).Error
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	if err := f.db.Exec(`UPDATE tables SET state = 1 WHERE id = ?`, tableID).Error; err != nil {
		t.Fatalf("failed to occupy table: %v", err)
	}
	return id
}

func (f *boardFixture) reservationStatus(t *testing.T, id snowflake.ID) resdomain.Status {
	t.Helper()
	var status resdomain.Status
	if err := f.db.Raw(`SELECT status FROM reservations WHERE id = ?`, id).Scan(&status).Error; err != nil {
		t.Fatalf("read reservation status: %v", err)
	}
	return status
}

func TestGetBoardOverlayAndKPIs(t *testing.T) {
	now := time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	occupied := f.seedTable(t, 1, true, tabledomain.StateEmpty)
	f.seedOpenOrder(t, occupied)
	reserved := f.seedTable(t, 2, true, tabledomain.StateEmpty)
	f.seedReservation(t, reserved, "Ayşe", now.Add(time.Hour))
	f.seedTable(t, 3, true, tabledomain.StateEmpty)
	f.seedTable(t, 4, false, tabledomain.StateEmpty)

	board, err := f.svc.GetBoard(ctx)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	kpis := board.KPIs
	if kpis.ActiveTables != 3 || kpis.Occupied != 1 || kpis.ReservedBlockedEmpty != 1 || kpis.WalkInAvailable != 1 {
		t.Fatalf("unexpected KPI counts: %+v", kpis)
	}
	if kpis.PhysicalOccupancyPct != 33 || kpis.EffectiveOccupancyPct != 67 {
		t.Fatalf("unexpected occupancy percentages: %+v", kpis)
	}

	var reservedTile *boarddomain.Tile
	for i := range board.Tiles {
		if board.Tiles[i].Table.ID == reserved {
			reservedTile = &board.Tiles[i]
		}
	}
	if reservedTile == nil {
		t.Fatalf("reserved table missing from board")
	}
	if reservedTile.State != boarddomain.StateReserved || !reservedTile.Blocked {
		t.Fatalf("expected reserved blocked overlay, got %+v", reservedTile)
	}
	if reservedTile.Reservation == nil || reservedTile.Reservation.CustomerName != "Ayşe" {
		t.Fatalf("overlay must carry the reservation, got %+v", reservedTile.Reservation)
	}

	// The overlay is derived: the stored state stays Empty.
	var state tabledomain.State
	if err := f.db.Raw(`SELECT state FROM tables WHERE id = ?`, reserved).Scan(&state).Error; err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state != tabledomain.StateEmpty {
		t.Fatalf("reserved overlay must not be persisted, state=%v", state)
	}
}

func TestGetBoardPromotesDueReservation(t *testing.T) {
	now := time.Date(2024, 5, 10, 20, 5, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	tableID := f.seedTable(t, 5, true, tabledomain.StateEmpty)
	rsvID := f.seedReservation(t, tableID, "Kemal", now.Add(-5*time.Minute))

	if _, err := f.svc.GetBoard(ctx); err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	if got := f.reservationStatus(t, rsvID); got != resdomain.StatusUsed {
		t.Fatalf("expected reservation used, got %v", got)
	}
	var openCount int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ? AND status = 0`, tableID).Scan(&openCount).Error; err != nil {
		t.Fatalf("count open orders: %v", err)
	}
	if openCount != 1 {
		t.Fatalf("expected promoted open order, got %d", openCount)
	}
	var state tabledomain.State
	if err := f.db.Raw(`SELECT state FROM tables WHERE id = ?`, tableID).Scan(&state).Error; err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state != tabledomain.StateOccupied {
		t.Fatalf("expected table occupied after promotion, got %v", state)
	}
}

func TestGetBoardPromotionMarksWalkedInReservationUsed(t *testing.T) {
	now := time.Date(2024, 5, 10, 20, 5, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	// Guests walked in before their reservation time: table already
	// occupied with an open order. The reservation is simply consumed.
	tableID := f.seedTable(t, 6, true, tabledomain.StateEmpty)
	orderID := f.seedOpenOrder(t, tableID)
	rsvID := f.seedReservation(t, tableID, "Leyla", now.Add(-2*time.Minute))

	if _, err := f.svc.GetBoard(ctx); err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	if got := f.reservationStatus(t, rsvID); got != resdomain.StatusUsed {
		t.Fatalf("expected reservation used, got %v", got)
	}
	var count int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ?`, tableID).Scan(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 1 {
		t.Fatalf("promotion must reuse the walk-in order %v, got %d orders", orderID, count)
	}
}

func TestGetBoardSkipsInactiveTablePromotion(t *testing.T) {
	now := time.Date(2024, 5, 10, 20, 5, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	tableID := f.seedTable(t, 7, false, tabledomain.StateEmpty)
	rsvID := f.seedReservation(t, tableID, "Murat", now.Add(-5*time.Minute))

	if _, err := f.svc.GetBoard(ctx); err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	// Skipped, not guessed: the reservation stays active and no order
	// appears.
	if got := f.reservationStatus(t, rsvID); got != resdomain.StatusActive {
		t.Fatalf("expected reservation left active, got %v", got)
	}
	var count int64
	if err := f.db.Raw(`SELECT COUNT(1) FROM orders WHERE table_id = ?`, tableID).Scan(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no order for inactive table, got %d", count)
	}
}

func TestGetBoardIgnoresExpiredReservations(t *testing.T) {
	now := time.Date(2024, 5, 10, 20, 30, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	// 25 minutes past with a 15 minute grace: no longer promotable,
	// and it no longer blocks the table either.
	tableID := f.seedTable(t, 8, true, tabledomain.StateEmpty)
	rsvID := f.seedReservation(t, tableID, "Ozan", now.Add(-25*time.Minute))

	board, err := f.svc.GetBoard(ctx)
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	if got := f.reservationStatus(t, rsvID); got != resdomain.StatusActive {
		t.Fatalf("expected expired reservation untouched, got %v", got)
	}
	for _, tile := range board.Tiles {
		if tile.Table.ID == tableID && tile.Blocked {
			t.Fatalf("expired reservation must not block the table")
		}
	}
}

func TestEnsureOpenTableBlockedByReservation(t *testing.T) {
	now := time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	tableID := f.seedTable(t, 9, true, tabledomain.StateEmpty)
	f.seedReservation(t, tableID, "Ayşe", now.Add(time.Hour))

	_, err := f.svc.EnsureOpenTable(ctx, tableID)
	var blocked *boarddomain.TableBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected TableBlockedError, got %v", err)
	}
	if blocked.CustomerName != "Ayşe" {
		t.Fatalf("block message must name the customer, got %q", blocked.CustomerName)
	}

	// Outside the block window the table opens normally.
	f.clk.Advance(-3 * time.Hour)
	free := f.seedTable(t, 10, true, tabledomain.StateEmpty)
	f.seedReservation(t, free, "Ayşe", now.Add(time.Hour))
	if _, err := f.svc.EnsureOpenTable(ctx, free); err != nil {
		t.Fatalf("open outside block window: %v", err)
	}
}

func TestEnsureOpenTableIdempotentOnOccupied(t *testing.T) {
	now := time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)
	f := newBoardFixture(t, now)
	ctx := context.Background()

	tableID := f.seedTable(t, 11, true, tabledomain.StateEmpty)

	first, err := f.svc.EnsureOpenTable(ctx, tableID)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	second, err := f.svc.EnsureOpenTable(ctx, tableID)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	if first != second {
		t.Fatalf("expected same order id, got %v and %v", first, second)
	}
}
