package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

const (
	RecentLimit    = 10
	SearchLimit    = 10
	SearchMinChars = 2
)

type Service interface {
	Register(ctx context.Context, actor authzdomain.Actor, req RegisterRequest) (*Response, error)
	Get(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*Response, error)
	List(ctx context.Context, actor authzdomain.Actor, page pagination.Pagination) (ListResponse, error)
	ListRecent(ctx context.Context, actor authzdomain.Actor, limit int) ([]Response, error)
	ListActive(ctx context.Context, actor authzdomain.Actor) ([]Response, error)
	Search(ctx context.Context, actor authzdomain.Actor, query string) ([]SearchResult, error)
	Deactivate(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*Response, error)
}

type RegisterRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	SectorID       string `json:"sector_id"`
	Phone          string `json:"phone"`
	MeterNumber    string `json:"meter_number"`
	IdempotencyKey string `json:"-"`
}

type Response struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	SectorID    string    `json:"sector_id"`
	SectorName  string    `json:"sector_name,omitempty"`
	Phone       string    `json:"phone"`
	MeterNumber string    `json:"meter_number"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListResponse struct {
	Customers []Response           `json:"customers"`
	PageInfo  *pagination.PageInfo `json:"page_info,omitempty"`
}

// SearchResult feeds the reading entry form.
type SearchResult struct {
	ID          string          `json:"id"`
	FullName    string          `json:"full_name"`
	MeterNumber string          `json:"meter_number"`
	SectorName  string          `json:"sector_name"`
	LastReading decimal.Decimal `json:"current_reading"`
}
