package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetBoard(ctx context.Context) (*Board, error)
	EnsureOpenTable(ctx context.Context, tableID snowflake.ID) (snowflake.ID, error)
}
