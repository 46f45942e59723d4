package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/customer/domain"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Register(ctx context.Context, actor authzdomain.Actor, req domain.RegisterRequest) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermCustomersRegister); err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	meterNumber := strings.TrimSpace(req.MeterNumber)
	if firstName == "" {
		return nil, domain.ErrInvalidFirstName
	}
	if lastName == "" {
		return nil, domain.ErrInvalidLastName
	}
	if meterNumber == "" {
		return nil, domain.ErrInvalidMeterNumber
	}
	sectorID, err := snowflake.ParseString(strings.TrimSpace(req.SectorID))
	if err != nil || sectorID == 0 {
		return nil, domain.ErrInvalidSector
	}

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.Get(ctx, actor, existing.ID)
		}
	}

	exists, err := s.repo.SectorExists(ctx, s.db, sectorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrInvalidSector
	}

	taken, err := s.repo.FindByMeterNumber(ctx, s.db, meterNumber)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, domain.ErrMeterNumberTaken
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:          s.genID.Generate(),
		FirstName:   firstName,
		LastName:    lastName,
		SectorID:    sectorID,
		Phone:       strings.TrimSpace(req.Phone),
		MeterNumber: meterNumber,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if idempotencyKey != "" {
		customer.IdempotencyKey = &idempotencyKey
	}
	if err := s.repo.Insert(ctx, s.db, customer); err != nil {
		return nil, err
	}

	s.log.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("meter_number", meterNumber),
		zap.String("by", actor.UserID.String()),
	)
	return s.Get(ctx, actor, customer.ID)
}

func (s *Service) Get(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*domain.Response, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	row, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(*row)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, actor authzdomain.Actor, page pagination.Pagination) (domain.ListResponse, error) {
	if !actor.Authenticated() {
		return domain.ListResponse{}, authzdomain.ErrUnauthenticated
	}
	rows, err := s.repo.ListPage(ctx, s.db, page)
	if err != nil {
		return domain.ListResponse{}, err
	}
	rows, pageInfo := pagination.BuildCursorPageInfo(rows, page.Size(), func(r domain.Row) string {
		return r.ID.String()
	})
	return domain.ListResponse{Customers: toResponses(rows), PageInfo: pageInfo}, nil
}

func (s *Service) ListRecent(ctx context.Context, actor authzdomain.Actor, limit int) ([]domain.Response, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = domain.RecentLimit
	}
	rows, err := s.repo.List(ctx, s.db, domain.ListFilter{ActiveOnly: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) ListActive(ctx context.Context, actor authzdomain.Actor) ([]domain.Response, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	rows, err := s.repo.List(ctx, s.db, domain.ListFilter{ActiveOnly: true, OrderByName: true})
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

func (s *Service) Search(ctx context.Context, actor authzdomain.Actor, query string) ([]domain.SearchResult, error) {
	if err := actor.Require(authzdomain.PermReadingsRecord); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < domain.SearchMinChars {
		return []domain.SearchResult{}, nil
	}

	rows, err := s.repo.Search(ctx, s.db, query, domain.SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.SearchResult{
			ID:          row.ID.String(),
			FullName:    row.FirstName + " " + row.LastName,
			MeterNumber: row.MeterNumber,
			SectorName:  row.SectorName,
			LastReading: row.LastReading,
		})
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermCustomersRegister); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	if row.Active {
		if err := s.repo.UpdateActive(ctx, s.db, id, false); err != nil {
			return nil, err
		}
		row.Active = false
		s.log.Info("customer deactivated", zap.String("customer_id", id.String()), zap.String("by", actor.UserID.String()))
	}
	resp := toResponse(*row)
	return &resp, nil
}

func toResponses(rows []domain.Row) []domain.Response {
	out := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResponse(row))
	}
	return out
}

func toResponse(row domain.Row) domain.Response {
	return domain.Response{
		ID:          row.ID.String(),
		FirstName:   row.FirstName,
		LastName:    row.LastName,
		SectorID:    row.SectorID.String(),
		SectorName:  row.SectorName,
		Phone:       row.Phone,
		MeterNumber: row.MeterNumber,
		Active:      row.Active,
		CreatedAt:   row.CreatedAt,
	}
}
