package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	// Record settles a pending reading for exactly its billed amount.
	Record(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*Confirmation, error)
	Receipt(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*Receipt, error)
}

type Confirmation struct {
	PaymentID       string          `json:"payment_id"`
	ReadingID       string          `json:"reading_id"`
	CustomerName    string          `json:"customer_name"`
	MeterNumber     string          `json:"meter_number"`
	ReadingDate     string          `json:"reading_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	ConsumptionM3   decimal.Decimal `json:"consumption_m3"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAt          time.Time       `json:"paid_at"`
}

// Receipt carries everything printed on a payment receipt.
type Receipt struct {
	ReadingID       string
	PaymentID       string
	CustomerName    string
	MeterNumber     string
	SectorName      string
	ReadingDate     time.Time
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	ConsumptionM3   decimal.Decimal
	Amount          decimal.Decimal
	AmountPaid      decimal.Decimal
	PaidAt          time.Time
}
