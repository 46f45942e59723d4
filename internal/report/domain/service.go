package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Dashboard(ctx context.Context, actor authzdomain.Actor) (*Dashboard, error)
	Income(ctx context.Context, actor authzdomain.Actor, req PeriodRequest) (*IncomeReport, error)
	Debtors(ctx context.Context, actor authzdomain.Actor) (*DebtorReport, error)
	Consumption(ctx context.Context, actor authzdomain.Actor, req PeriodRequest) (*ConsumptionReport, error)
	Customer(ctx context.Context, actor authzdomain.Actor, customerID snowflake.ID) (*CustomerReport, error)
}

// PeriodRequest holds inclusive YYYY-MM-DD bounds. Both empty means the
// current month up to today.
type PeriodRequest struct {
	From string `form:"from" json:"from"`
	To   string `form:"to" json:"to"`
}

type Dashboard struct {
	ActiveCustomers int64           `json:"active_customers"`
	PendingInvoices int64           `json:"pending_invoices"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	Sectors         int64           `json:"sectors"`
}

type IncomeDay struct {
	Date     string          `json:"date"`
	Payments int             `json:"payments"`
	Total    decimal.Decimal `json:"total"`
}

type IncomeReport struct {
	From        string          `json:"from"`
	To          string          `json:"to"`
	Days        []IncomeDay     `json:"days"`
	Total       decimal.Decimal `json:"total"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type Debtor struct {
	CustomerID      string          `json:"customer_id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	MeterNumber     string          `json:"meter_number"`
	SectorName      string          `json:"sector_name"`
	PendingInvoices int             `json:"pending_invoices"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	OldestReading   string          `json:"oldest_reading_date"`
}

type DebtorReport struct {
	Debtors     []Debtor        `json:"debtors"`
	TotalDebt   decimal.Decimal `json:"total_debt"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type ConsumptionStat struct {
	CustomerID  string          `json:"customer_id"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	MeterNumber string          `json:"meter_number"`
	SectorName  string          `json:"sector_name"`
	Readings    int             `json:"readings"`
	Average     decimal.Decimal `json:"average_m3"`
	Max         decimal.Decimal `json:"max_m3"`
	Min         decimal.Decimal `json:"min_m3"`
}

type ConsumptionReport struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Customers   []ConsumptionStat `json:"customers"`
	GeneratedAt time.Time         `json:"generated_at"`
}

type CustomerInfo struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	MeterNumber string    `json:"meter_number"`
	Active      bool      `json:"active"`
	SectorID    string    `json:"sector_id"`
	SectorName  string    `json:"sector_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReadingEntry struct {
	ID              string          `json:"id"`
	ReadingDate     string          `json:"reading_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	ConsumptionM3   decimal.Decimal `json:"consumption_m3"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentStatus   string          `json:"payment_status"`
	Reader          string          `json:"reader"`
}

type PaymentEntry struct {
	ID            string          `json:"id"`
	PaidAt        time.Time       `json:"paid_at"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	ReadingID     string          `json:"reading_id"`
	ReadingDate   string          `json:"reading_date"`
	ConsumptionM3 decimal.Decimal `json:"consumption_m3"`
	Receiver      string          `json:"receiver"`
}

type CustomerStats struct {
	Readings        int             `json:"readings"`
	AverageM3       decimal.Decimal `json:"average_m3"`
	MaxM3           decimal.Decimal `json:"max_m3"`
	MinM3           decimal.Decimal `json:"min_m3"`
	PendingDebt     decimal.Decimal `json:"pending_debt"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	PendingInvoices int             `json:"pending_invoices"`
}

type PendingEntry struct {
	ReadingID     string          `json:"reading_id"`
	ReadingDate   string          `json:"reading_date"`
	ConsumptionM3 decimal.Decimal `json:"consumption_m3"`
	Amount        decimal.Decimal `json:"amount"`
	DaysOverdue   int             `json:"days_overdue"`
}

type CustomerReport struct {
	Customer    CustomerInfo   `json:"customer"`
	Readings    []ReadingEntry `json:"readings"`
	Payments    []PaymentEntry `json:"payments"`
	Stats       CustomerStats  `json:"stats"`
	Pending     []PendingEntry `json:"pending"`
	GeneratedAt time.Time      `json:"generated_at"`
}
