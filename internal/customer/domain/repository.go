package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	ActiveOnly  bool
	OrderByName bool
	Limit       int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Row, error)
	FindByMeterNumber(ctx context.Context, db *gorm.DB, meterNumber string) (*Customer, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Row, error)
	ListPage(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]Row, error)
	Search(ctx context.Context, db *gorm.DB, query string, limit int) ([]SearchRow, error)
	SectorExists(ctx context.Context, db *gorm.DB, sectorID snowflake.ID) (bool, error)
	UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
}
