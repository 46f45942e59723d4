package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerState is what reading entry needs to know about a customer.
type CustomerState struct {
	ID     snowflake.ID `gorm:"column:id"`
	Active bool         `gorm:"column:active"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reading, error)
	FindRow(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Row, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*Reading, error)
	FindLatestForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Reading, error)
	// FindPrevious returns the reading immediately before r for the same
	// customer in (reading_date, id) order.
	FindPrevious(ctx context.Context, db *gorm.DB, r *Reading) (*Reading, error)
	FindCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*CustomerState, error)
	// UpdatePending rewrites the figures of a reading that is still pending
	// and reports how many rows changed.
	UpdatePending(ctx context.Context, db *gorm.DB, id snowflake.ID, date time.Time, current, consumption, amount decimal.Decimal, now time.Time) (int64, error)
	ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]Row, error)
	ListPending(ctx context.Context, db *gorm.DB) ([]Row, error)
}
