package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/tariff"
	"github.com/shopspring/decimal"
)

const RecentLimit = 10

type Service interface {
	Record(ctx context.Context, actor authzdomain.Actor, req RecordRequest) (*Response, error)
	Edit(ctx context.Context, actor authzdomain.Actor, req EditRequest) (*Response, error)
	// Preview prices a prospective reading without storing it.
	Preview(ctx context.Context, actor authzdomain.Actor, req RecordRequest) (*tariff.Bill, error)
	Get(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*Response, error)
	ListRecent(ctx context.Context, actor authzdomain.Actor, limit int) ([]Response, error)
	ListPending(ctx context.Context, actor authzdomain.Actor) ([]PendingInvoice, error)
}

type RecordRequest struct {
	CustomerID     string `json:"customer_id" form:"customer_id"`
	ReadingDate    string `json:"reading_date" form:"reading_date"`
	CurrentReading string `json:"current_reading" form:"current_reading"`
	IdempotencyKey string `json:"-" form:"-"`
}

type EditRequest struct {
	ID             snowflake.ID `json:"-"`
	CurrentReading string       `json:"current_reading"`
	ReadingDate    string       `json:"reading_date,omitempty"`
}

type Response struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name,omitempty"`
	MeterNumber     string          `json:"meter_number,omitempty"`
	SectorName      string          `json:"sector_name,omitempty"`
	ReaderID        string          `json:"reader_id"`
	ReaderName      string          `json:"reader_name,omitempty"`
	ReadingDate     string          `json:"reading_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	ConsumptionM3   decimal.Decimal `json:"consumption_m3"`
	Amount          decimal.Decimal `json:"amount"`
	Credit          bool            `json:"credit"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
}

type PendingInvoice struct {
	ReadingID     string          `json:"reading_id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	MeterNumber   string          `json:"meter_number"`
	SectorName    string          `json:"sector_name"`
	ReadingDate   string          `json:"reading_date"`
	ConsumptionM3 decimal.Decimal `json:"consumption_m3"`
	Amount        decimal.Decimal `json:"amount"`
	DaysOverdue   int             `json:"days_overdue"`
}
