package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
)

// DateLayout is the wire format of reading dates.
const DateLayout = "2006-01-02"

type Reading struct {
	ID              snowflake.ID    `gorm:"primaryKey;autoIncrement:false"`
	CustomerID      snowflake.ID    `gorm:"not null;index:ix_readings_customer_date,priority:1"`
	ReaderID        snowflake.ID    `gorm:"not null"`
	ReadingDate     time.Time       `gorm:"type:date;not null;index:ix_readings_customer_date,priority:2"`
	PreviousReading decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	CurrentReading  decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	ConsumptionM3   decimal.Decimal `gorm:"column:consumption_m3;type:decimal(14,3);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(16);not null;default:'PENDING';index"`
	IdempotencyKey  *string         `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

func (Reading) TableName() string { return "readings" }

// Row is a reading joined with its customer, sector and reader.
type Row struct {
	ID              snowflake.ID    `gorm:"column:id"`
	CustomerID      snowflake.ID    `gorm:"column:customer_id"`
	FirstName       string          `gorm:"column:first_name"`
	LastName        string          `gorm:"column:last_name"`
	MeterNumber     string          `gorm:"column:meter_number"`
	SectorName      string          `gorm:"column:sector_name"`
	ReaderID        snowflake.ID    `gorm:"column:reader_id"`
	ReaderFirstName string          `gorm:"column:reader_first_name"`
	ReaderLastName  string          `gorm:"column:reader_last_name"`
	ReadingDate     time.Time       `gorm:"column:reading_date"`
	PreviousReading decimal.Decimal `gorm:"column:previous_reading"`
	CurrentReading  decimal.Decimal `gorm:"column:current_reading"`
	ConsumptionM3   decimal.Decimal `gorm:"column:consumption_m3"`
	Amount          decimal.Decimal `gorm:"column:amount"`
	PaymentStatus   PaymentStatus   `gorm:"column:payment_status"`
}
