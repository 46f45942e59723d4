package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID         snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	ReadingID  snowflake.ID    `gorm:"not null;index"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ReceiverID snowflake.ID    `gorm:"not null"`
	PaidAt     time.Time       `gorm:"not null;index"`
}

func (Payment) TableName() string { return "payments" }

// ReadingRow is a reading with the customer fields shown on a payment
// confirmation.
type ReadingRow struct {
	ID              snowflake.ID    `gorm:"column:id"`
	CustomerID      snowflake.ID    `gorm:"column:customer_id"`
	FirstName       string          `gorm:"column:first_name"`
	LastName        string          `gorm:"column:last_name"`
	MeterNumber     string          `gorm:"column:meter_number"`
	SectorName      string          `gorm:"column:sector_name"`
	ReadingDate     time.Time       `gorm:"column:reading_date"`
	PreviousReading decimal.Decimal `gorm:"column:previous_reading"`
	CurrentReading  decimal.Decimal `gorm:"column:current_reading"`
	ConsumptionM3   decimal.Decimal `gorm:"column:consumption_m3"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	PaymentStatus   string          `gorm:"column:payment_status"`
}

// ReceiptRow is a reading joined with its most recent payment.
type ReceiptRow struct {
	ReadingRow
	PaymentID  snowflake.ID    `gorm:"column:payment_id"`
	AmountPaid decimal.Decimal `gorm:"column:amount_paid"`
	PaidAt     time.Time       `gorm:"column:paid_at"`
}
