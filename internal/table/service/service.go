package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	pkgdb "github.com/floorops/floorops/pkg/db"

	"github.com/floorops/floorops/internal/table/domain"
)

type Params struct {
	fx.In
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("table.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) List(ctx context.Context) ([]domain.Table, error) {
	return s.repo.List(ctx, s.db)
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Table, error) {
	table, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrTableNotFound
	}
	return table, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateTableRequest) (*domain.Table, error) {
	table := &domain.Table{
		ID:       s.genID.Generate(),
		Number:   req.Number,
		Capacity: req.Capacity,
		Active:   true,
		State:    domain.StateEmpty,
	}
	if err := s.repo.Create(ctx, s.db, table); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrTableNumberTaken
		}
		return nil, err
	}
	return table, nil
}

func (s *service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateTableRequest) (*domain.Table, error) {
	var updated *domain.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.ErrTableNotFound
		}
		if req.Number != nil {
			table.Number = *req.Number
		}
		if req.Capacity != nil {
			table.Capacity = *req.Capacity
		}
		if err := s.repo.Update(ctx, tx, table); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.ErrTableNumberTaken
			}
			return err
		}
		updated = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ToggleActive flips the active flag. A table carrying an open order
// cannot be taken out of service.
func (s *service) ToggleActive(ctx context.Context, id snowflake.ID) (*domain.Table, error) {
	var updated *domain.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.ErrTableNotFound
		}
		if table.Active {
			open, err := s.repo.HasOpenOrder(ctx, tx, id)
			if err != nil {
				return err
			}
			if open {
				return domain.ErrTableHasOpenOrder
			}
		}
		table.Active = !table.Active
		if err := s.repo.SetActive(ctx, tx, id, table.Active); err != nil {
			return err
		}
		updated = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if table == nil {
			return domain.ErrTableNotFound
		}
		open, err := s.repo.HasOpenOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrTableHasOpenOrder
		}
		hasOrders, err := s.repo.HasOrders(ctx, tx, id)
		if err != nil {
			return err
		}
		hasReservations, err := s.repo.HasReservations(ctx, tx, id)
		if err != nil {
			return err
		}
		if hasOrders || hasReservations {
			return domain.ErrTableHasDependents
		}
		return s.repo.Delete(ctx, tx, id)
	})
}
