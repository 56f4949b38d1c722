package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/config"
	"github.com/floorops/floorops/internal/reservation/domain"
	tabledomain "github.com/floorops/floorops/internal/table/domain"
	pkgdb "github.com/floorops/floorops/pkg/db"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

type Params struct {
	fx.In
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	FloorCfg  *config.FloorConfigHolder
	Repo      domain.Repository
	TableRepo tabledomain.Repository
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	floorCfg  *config.FloorConfigHolder
	repo      domain.Repository
	tableRepo tabledomain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("reservation.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		floorCfg:  p.FloorCfg,
		repo:      p.Repo,
		tableRepo: p.TableRepo,
	}
}

// Create holds the table lock across the occupied check, the window
// conflict check and the insert, so a concurrent reservation for the
// same table cannot slip between check and act.
func (s *service) Create(ctx context.Context, req domain.CreateReservationRequest) (*domain.Reservation, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return nil, domain.ErrCustomerNameRequired
	}
	if req.ReservedAt.IsZero() {
		return nil, domain.ErrReservedAtRequired
	}
	now := s.clock.Now()
	if req.ReservedAt.Before(now) {
		return nil, domain.ErrReservedAtInPast
	}
	window := s.floorCfg.Get().BlockWindow()

	var created *domain.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.tableRepo.LockByID(ctx, tx, req.TableID)
		if err != nil {
			return err
		}
		if table == nil {
			return tabledomain.ErrTableNotFound
		}
		if !table.Active {
			return tabledomain.ErrTableInactive
		}
		if table.State == tabledomain.StateOccupied &&
			!now.Before(req.ReservedAt.Add(-window)) && !now.After(req.ReservedAt.Add(window)) {
			return &domain.TableOccupiedError{ReservedAt: req.ReservedAt}
		}

		conflict, err := s.repo.FindConflict(ctx, tx, req.TableID, req.ReservedAt, window)
		if err != nil {
			return err
		}
		if conflict != nil {
			return &domain.WindowConflictError{
				CustomerName: conflict.CustomerName,
				ReservedAt:   conflict.ReservedAt,
			}
		}

		reservation := &domain.Reservation{
			ID:           s.genID.Generate(),
			TableID:      req.TableID,
			CustomerName: req.CustomerName,
			Phone:        strings.TrimSpace(req.Phone),
			ReservedAt:   req.ReservedAt,
			PartySize:    req.PartySize,
			Notes:        req.Notes,
			Metadata:     req.Metadata,
			Status:       domain.StatusActive,
			CreatedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, reservation); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return &domain.WindowConflictError{
					CustomerName: req.CustomerName,
					ReservedAt:   req.ReservedAt,
				}
			}
			return err
		}
		created = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Cancel(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateStatusIf(ctx, tx, id, domain.StatusActive, domain.StatusCancelled)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrReservationNotFound
		}
		return domain.ErrReservationNotActive
	})
}

func (s *service) List(ctx context.Context, filter domain.ListFilter) ([]domain.ListRow, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.repo.List(ctx, s.db, filter)
}
