package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, actor authzdomain.Actor) ([]Summary, error)
	Detail(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*Detail, error)
	Create(ctx context.Context, actor authzdomain.Actor, req CreateRequest) (*Response, error)
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Response struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type Summary struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	ActiveCustomers     int64  `json:"active_customers"`
	DelinquentCustomers int64  `json:"delinquent_customers"`
}

type Detail struct {
	Sector    Response       `json:"sector"`
	Customers []CustomerDebt `json:"customers"`
}

type CustomerDebt struct {
	ID              string          `json:"id"`
	FirstName       string          `json:"first_name"`
	LastName        string          `json:"last_name"`
	MeterNumber     string          `json:"meter_number"`
	Phone           string          `json:"phone"`
	PendingInvoices int64           `json:"pending_invoices"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
}
