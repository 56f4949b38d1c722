package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/board/domain"
	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/config"
	"github.com/floorops/floorops/internal/observability/metrics"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
	resdomain "github.com/floorops/floorops/internal/reservation/domain"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
)

type Params struct {
	fx.In
	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	FloorCfg  *config.FloorConfigHolder
	Metrics   *metrics.Recorder
	TableRepo tabledomain.Repository
	ResRepo   resdomain.Repository
	Orders    orderdomain.Service
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	floorCfg  *config.FloorConfigHolder
	metrics   *metrics.Recorder
	tableRepo tabledomain.Repository
	resRepo   resdomain.Repository
	orders    orderdomain.Service
}

func New(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("board.service"),
		clock:     p.Clock,
		floorCfg:  p.FloorCfg,
		metrics:   p.Metrics,
		tableRepo: p.TableRepo,
		resRepo:   p.ResRepo,
		orders:    p.Orders,
	}
}

func (s *service) GetBoard(ctx context.Context) (*domain.Board, error) {
	started := time.Now()
	defer func() { s.metrics.BoardRefresh(time.Since(started)) }()

	now := s.clock.Now()
	if err := s.autoPromoteDue(ctx, now); err != nil {
		return nil, err
	}

	tables, err := s.tableRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	window := s.floorCfg.Get().BlockWindow()
	blocking, err := s.blockingByTable(ctx, s.db, now, window)
	if err != nil {
		return nil, err
	}

	board := &domain.Board{GeneratedAt: now}
	for _, table := range tables {
		tile := domain.Tile{Table: table, State: domain.StateEmpty}
		if !table.Active {
			tile.Blocked = true
			board.Tiles = append(board.Tiles, tile)
			continue
		}

		board.KPIs.ActiveTables++
		if table.State == tabledomain.StateOccupied {
			tile.State = domain.StateOccupied
			board.KPIs.Occupied++
		} else if rsv, ok := blocking[table.ID]; ok {
			tile.State = domain.StateReserved
			tile.Blocked = true
			tile.Reservation = &domain.ReservationInfo{
				ID:           rsv.ID,
				CustomerName: rsv.CustomerName,
				ReservedAt:   rsv.ReservedAt,
				PartySize:    rsv.PartySize,
			}
			board.KPIs.ReservedBlockedEmpty++
		}
		board.Tiles = append(board.Tiles, tile)
	}

	board.KPIs.WalkInAvailable = board.KPIs.ActiveTables - board.KPIs.Occupied - board.KPIs.ReservedBlockedEmpty
	board.KPIs.PhysicalOccupancyPct = pct(board.KPIs.Occupied, board.KPIs.ActiveTables)
	board.KPIs.EffectiveOccupancyPct = pct(board.KPIs.Occupied+board.KPIs.ReservedBlockedEmpty, board.KPIs.ActiveTables)
	return board, nil
}

// blockingByTable maps each table to its nearest upcoming active
// reservation whose block window has already started. Tables are only
// blocked before the requested time, never after it.
func (s *service) blockingByTable(ctx context.Context, db *gorm.DB, now time.Time, window time.Duration) (map[snowflake.ID]resdomain.Reservation, error) {
	reservations, err := s.resRepo.ActiveInWindow(ctx, db, now, window)
	if err != nil {
		return nil, err
	}
	blocking := make(map[snowflake.ID]resdomain.Reservation)
	for _, rsv := range reservations {
		if !rsv.ReservedAt.After(now) {
			continue
		}
		if _, ok := blocking[rsv.TableID]; ok {
			continue
		}
		blocking[rsv.TableID] = rsv
	}
	return blocking, nil
}

// EnsureOpenTable re-checks the reservation block before delegating to
// the order engine, so a walk-in cannot take a table held for a
// near-term reservation.
func (s *service) EnsureOpenTable(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error) {
	now := s.clock.Now()
	window := s.floorCfg.Get().BlockWindow()

	var orderID snowflake.ID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.tableRepo.LockByID(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if table == nil {
			return tabledomain.ErrTableNotFound
		}
		if !table.Active {
			return tabledomain.ErrTableInactive
		}
		if table.State == tabledomain.StateEmpty {
			rsv, err := s.resRepo.FindConflict(ctx, tx, tableID, now, window)
			if err != nil {
				return err
			}
			if rsv != nil && rsv.ReservedAt.After(now) {
				return &domain.TableBlockedError{
					CustomerName: rsv.CustomerName,
					ReservedAt:   rsv.ReservedAt,
				}
			}
		}

		id, err := s.orders.EnsureOpenOrderInTx(ctx, tx, tableID)
		if err != nil {
			return err
		}
		orderID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

// autoPromoteDue opens tables for reservations whose time has arrived,
// all inside one transaction. Per-reservation anomalies are skipped,
// each with a warn log and an outcome counter, so one bad row does not
// starve the rest.
func (s *service) autoPromoteDue(ctx context.Context, now time.Time) error {
	grace := s.floorCfg.Get().GraceWindow()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		due, err := s.resRepo.DueActive(ctx, tx, now, grace)
		if err != nil {
			return err
		}
		for _, rsv := range due {
			outcome, err := s.promoteOne(ctx, tx, rsv)
			if err != nil {
				return err
			}
			s.metrics.Promotion(outcome)
			if outcome != metrics.OutcomePromoted {
				s.log.Warn("reservation promotion skipped",
					zap.Int64("reservation_id", int64(rsv.ID)),
					zap.Int64("table_id", int64(rsv.TableID)),
					zap.Time("reserved_at", rsv.ReservedAt),
					zap.String("outcome", outcome))
			}
		}
		return nil
	})
}

func (s *service) promoteOne(ctx context.Context, tx *gorm.DB, rsv resdomain.Reservation) (string, error) {
	table, err := s.tableRepo.LockByID(ctx, tx, rsv.TableID)
	if err != nil {
		return "", err
	}
	if table == nil {
		return metrics.OutcomeTableMissing, nil
	}
	if !table.Active {
		return metrics.OutcomeTableInactive, nil
	}

	if _, err := s.orders.EnsureOpenOrderInTx(ctx, tx, rsv.TableID); err != nil {
		if errors.Is(err, tabledomain.ErrTableNotFound) || errors.Is(err, tabledomain.ErrTableInactive) {
			return metrics.OutcomeOpenFailed, nil
		}
		return "", err
	}
	if _, err := s.resRepo.UpdateStatusIf(ctx, tx, rsv.ID, resdomain.StatusActive, resdomain.StatusUsed); err != nil {
		return "", err
	}
	return metrics.OutcomePromoted, nil
}

func pct(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
