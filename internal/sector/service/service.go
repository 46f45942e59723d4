package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/sector/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sector.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, actor authzdomain.Actor) ([]domain.Summary, error) {
	if err := actor.Require(authzdomain.PermSectorsView); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListSummaries(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Summary{
			ID:                  row.ID.String(),
			Name:                row.Name,
			Description:         row.Description,
			ActiveCustomers:     row.ActiveCustomers,
			DelinquentCustomers: row.DelinquentCustomers,
		})
	}
	return out, nil
}

func (s *Service) Detail(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*domain.Detail, error) {
	if err := actor.Require(authzdomain.PermSectorsView); err != nil {
		return nil, err
	}
	sector, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, domain.ErrNotFound
	}

	rows, err := s.repo.ListCustomerDebts(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	customers := make([]domain.CustomerDebt, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, domain.CustomerDebt{
			ID:              row.ID.String(),
			FirstName:       row.FirstName,
			LastName:        row.LastName,
			MeterNumber:     row.MeterNumber,
			Phone:           row.Phone,
			PendingInvoices: row.PendingInvoices,
			PendingAmount:   row.PendingAmount.Round(2),
		})
	}

	return &domain.Detail{
		Sector:    toResponse(sector),
		Customers: customers,
	}, nil
}

func (s *Service) Create(ctx context.Context, actor authzdomain.Actor, req domain.CreateRequest) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermSectorsManage); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrNameTaken
	}

	sector := &domain.Sector{
		ID:          s.genID.Generate(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, sector); err != nil {
		return nil, err
	}

	s.log.Info("sector created", zap.String("sector_id", sector.ID.String()), zap.String("name", name))
	resp := toResponse(sector)
	return &resp, nil
}

func toResponse(s *domain.Sector) domain.Response {
	return domain.Response{
		ID:          s.ID.String(),
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}
