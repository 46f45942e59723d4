package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	FirstName      string       `gorm:"type:varchar(100);not null"`
	LastName       string       `gorm:"type:varchar(100);not null"`
	SectorID       snowflake.ID `gorm:"not null;index"`
	Phone          string       `gorm:"type:varchar(32);not null;default:''"`
	MeterNumber    string       `gorm:"type:varchar(64);uniqueIndex;not null"`
	Active         bool         `gorm:"not null;default:true"`
	IdempotencyKey *string      `gorm:"type:varchar(128);uniqueIndex"`
	CreatedAt      time.Time    `gorm:"not null"`
	UpdatedAt      time.Time    `gorm:"not null"`
}

func (Customer) TableName() string { return "customers" }

// Row is a customer joined with its sector name.
type Row struct {
	ID          snowflake.ID `gorm:"column:id"`
	FirstName   string       `gorm:"column:first_name"`
	LastName    string       `gorm:"column:last_name"`
	SectorID    snowflake.ID `gorm:"column:sector_id"`
	SectorName  string       `gorm:"column:sector_name"`
	Phone       string       `gorm:"column:phone"`
	MeterNumber string       `gorm:"column:meter_number"`
	Active      bool         `gorm:"column:active"`
	CreatedAt   time.Time    `gorm:"column:created_at"`
}

// SearchRow adds the customer's latest current reading, zero when none exists.
type SearchRow struct {
	Row
	LastReading decimal.Decimal `gorm:"column:last_reading"`
}
