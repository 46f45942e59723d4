package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sector *Sector) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sector, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Sector, error)
	ListSummaries(ctx context.Context, db *gorm.DB) ([]SummaryRow, error)
	ListCustomerDebts(ctx context.Context, db *gorm.DB, sectorID snowflake.ID) ([]CustomerDebtRow, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
