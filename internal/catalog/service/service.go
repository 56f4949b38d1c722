package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/floorops/floorops/internal/catalog/domain"
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
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *service) Menu(ctx context.Context, categoryID *snowflake.ID) (*domain.Menu, error) {
	categories, err := s.repo.ListActiveCategories(ctx, s.db)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListActiveProducts(ctx, s.db, categoryID)
	if err != nil {
		return nil, err
	}
	return &domain.Menu{Categories: categories, Products: products}, nil
}
