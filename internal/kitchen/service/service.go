package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/actorcontext"
	"github.com/floorops/floorops/internal/clock"
	"github.com/floorops/floorops/internal/kitchen/domain"
	orderdomain "github.com/floorops/floorops/internal/order/domain"
	logdomain "github.com/floorops/floorops/internal/orderlog/domain"
)

type Params struct {
	fx.In
	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	LogRepo logdomain.Repository
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	logRepo logdomain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("kitchen.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		logRepo: p.LogRepo,
	}
}

func (s *service) PendingOrders(ctx context.Context) ([]domain.QueueOrder, error) {
	items, err := s.repo.PendingItems(ctx, s.db)
	if err != nil {
		return nil, err
	}

	// Rows arrive ordered by order, so grouping is a single pass.
	var orders []domain.QueueOrder
	for _, item := range items {
		if len(orders) == 0 || orders[len(orders)-1].OrderID != item.OrderID {
			orders = append(orders, domain.QueueOrder{
				OrderID:     item.OrderID,
				TableNumber: item.TableNumber,
				OpenedAt:    item.OpenedAt,
			})
		}
		last := &orders[len(orders)-1]
		last.Items = append(last.Items, item)
	}
	return orders, nil
}

func (s *service) SetItemStatus(ctx context.Context, itemID snowflake.ID, status orderdomain.ItemStatus) error {
	if !status.Valid() {
		return domain.ErrUnknownItemStatus
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.LockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		if item.OrderStatus != orderdomain.StatusOpen {
			return orderdomain.ErrOrderClosed
		}
		if err := s.repo.UpdateItemStatus(ctx, tx, itemID, status); err != nil {
			return err
		}

		oldVal, newVal := item.Status.String(), status.String()
		var actor *string
		if name := actorcontext.Username(ctx); name != "" {
			actor = &name
		}
		return s.logRepo.Append(ctx, tx, &logdomain.Entry{
			ID:        s.genID.Generate(),
			OrderID:   item.OrderID,
			Action:    logdomain.ActionItemStatus,
			OldValue:  &oldVal,
			NewValue:  &newVal,
			Actor:     actor,
			CreatedAt: s.clock.Now(),
		})
	})
}
