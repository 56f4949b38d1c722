package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/orderlog/domain"
)

type Params struct {
	fx.In
	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:   p.DB,
		log:  p.Log.Named("orderlog.service"),
		repo: p.Repo,
	}
}

func (s *service) ListByOrder(ctx context.Context, orderID snowflake.ID) ([]domain.Entry, error) {
	return s.repo.ListByOrder(ctx, s.db, orderID)
}
