package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository returns row level data. Totals and averages are computed by
// the service on decimal values so every dialect reports the same figures.
type Repository interface {
	Dashboard(ctx context.Context, db *gorm.DB) (*DashboardRow, error)
	// ListPayments returns payments with from <= paid_at < until.
	ListPayments(ctx context.Context, db *gorm.DB, from, until time.Time) ([]PaymentRow, error)
	ListPendingReadings(ctx context.Context, db *gorm.DB) ([]ReadingRow, error)
	// ListReadings returns readings dated within [from, to].
	ListReadings(ctx context.Context, db *gorm.DB, from, to time.Time) ([]ReadingRow, error)
	FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CustomerRow, error)
	CustomerReadings(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]HistoryRow, error)
	CustomerPayments(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]PaymentHistoryRow, error)
}
