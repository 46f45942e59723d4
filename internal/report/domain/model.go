package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DashboardRow struct {
	ActiveCustomers int64           `gorm:"column:active_customers"`
	PendingInvoices int64           `gorm:"column:pending_invoices"`
	PendingAmount   decimal.Decimal `gorm:"column:pending_amount"`
	Sectors         int64           `gorm:"column:sectors"`
}

type PaymentRow struct {
	ID         snowflake.ID    `gorm:"column:id"`
	ReadingID  snowflake.ID    `gorm:"column:reading_id"`
	AmountPaid decimal.Decimal `gorm:"column:amount_paid"`
	PaidAt     time.Time       `gorm:"column:paid_at"`
}

// ReadingRow is a reading with the customer columns reports group by.
type ReadingRow struct {
	ID            snowflake.ID    `gorm:"column:id"`
	CustomerID    snowflake.ID    `gorm:"column:customer_id"`
	FirstName     string          `gorm:"column:first_name"`
	LastName      string          `gorm:"column:last_name"`
	MeterNumber   string          `gorm:"column:meter_number"`
	SectorName    string          `gorm:"column:sector_name"`
	ReadingDate   time.Time       `gorm:"column:reading_date"`
	ConsumptionM3 decimal.Decimal `gorm:"column:consumption_m3"`
	Amount        decimal.Decimal `gorm:"column:amount"`
}

type CustomerRow struct {
	ID          snowflake.ID `gorm:"column:id"`
	FirstName   string       `gorm:"column:first_name"`
	LastName    string       `gorm:"column:last_name"`
	Phone       string       `gorm:"column:phone"`
	MeterNumber string       `gorm:"column:meter_number"`
	Active      bool         `gorm:"column:active"`
	SectorID    snowflake.ID `gorm:"column:sector_id"`
	SectorName  string       `gorm:"column:sector_name"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
}

type HistoryRow struct {
	ID              snowflake.ID    `gorm:"column:id"`
	ReadingDate     time.Time       `gorm:"column:reading_date"`
	PreviousReading decimal.Decimal `gorm:"column:previous_reading"`
	CurrentReading  decimal.Decimal `gorm:"column:current_reading"`
	ConsumptionM3   decimal.Decimal `gorm:"column:consumption_m3"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	PaymentStatus   string          `gorm:"column:payment_status"`
	ReaderFirstName string          `gorm:"column:reader_first_name"`
	ReaderLastName  string          `gorm:"column:reader_last_name"`
}

type PaymentHistoryRow struct {
	ID                snowflake.ID    `gorm:"column:id"`
	PaidAt            time.Time       `gorm:"column:paid_at"`
	AmountPaid        decimal.Decimal `gorm:"column:amount_paid"`
	ReadingID         snowflake.ID    `gorm:"column:reading_id"`
	ReadingDate       time.Time       `gorm:"column:reading_date"`
	ConsumptionM3     decimal.Decimal `gorm:"column:consumption_m3"`
	ReceiverFirstName string          `gorm:"column:receiver_first_name"`
	ReceiverLastName  string          `gorm:"column:receiver_last_name"`
}
