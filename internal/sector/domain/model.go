package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Sector struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	Name        string       `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string       `gorm:"type:varchar(255);not null;default:''"`
	CreatedAt   time.Time    `gorm:"not null"`
}

func (Sector) TableName() string { return "sectors" }

// SummaryRow is a sector with its customer counters.
type SummaryRow struct {
	ID                  snowflake.ID `gorm:"column:id"`
	Name                string       `gorm:"column:name"`
	Description         string       `gorm:"column:description"`
	ActiveCustomers     int64        `gorm:"column:active_customers"`
	DelinquentCustomers int64        `gorm:"column:delinquent_customers"`
}

// CustomerDebtRow is an active customer of a sector with their unpaid readings.
type CustomerDebtRow struct {
	ID              snowflake.ID    `gorm:"column:id"`
	FirstName       string          `gorm:"column:first_name"`
	LastName        string          `gorm:"column:last_name"`
	MeterNumber     string          `gorm:"column:meter_number"`
	Phone           string          `gorm:"column:phone"`
	PendingInvoices int64           `gorm:"column:pending_invoices"`
	PendingAmount   decimal.Decimal `gorm:"column:pending_amount"`
}
