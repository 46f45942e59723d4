package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindReading(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*ReadingRow, error)
	// MarkPaid flips a pending reading to PAID. Zero rows affected means the
	// reading does not exist or was already paid.
	MarkPaid(ctx context.Context, db *gorm.DB, readingID snowflake.ID, at time.Time) (int64, error)
	FindLatestReceipt(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*ReceiptRow, error)
}
