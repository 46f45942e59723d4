package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/clock"
	"github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/tariff"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Schedule tariff.Schedule
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	schedule tariff.Schedule
	repo     domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("reading.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		schedule: p.Schedule,
		repo:     p.Repo,
	}
}

type entry struct {
	customerID snowflake.ID
	date       time.Time
	current    decimal.Decimal
	previous   decimal.Decimal
}

// prepare validates a record request and looks up the previous reading.
func (s *Service) prepare(ctx context.Context, req domain.RecordRequest) (*entry, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return nil, domain.ErrInvalidCustomer
	}
	current, err := domain.ParseVolume(req.CurrentReading)
	if err != nil {
		return nil, err
	}
	date := clock.Today(ctx, s.clock)
	if strings.TrimSpace(req.ReadingDate) != "" {
		if date, err = domain.ParseDate(req.ReadingDate); err != nil {
			return nil, err
		}
	}

	customer, err := s.repo.FindCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if !customer.Active {
		return nil, domain.ErrCustomerInactive
	}

	previous := decimal.Zero
	latest, err := s.repo.FindLatestForCustomer(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		previous = latest.CurrentReading
	}

	return &entry{customerID: customerID, date: date, current: current, previous: previous}, nil
}

func (s *Service) Record(ctx context.Context, actor authzdomain.Actor, req domain.RecordRequest) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermReadingsRecord); err != nil {
		return nil, err
	}

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)
	if idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.load(ctx, existing.ID)
		}
	}

	e, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	// A current value below the previous one is stored as is and billed
	// as a credit.
	bill := tariff.Calculate(e.previous, e.current, s.schedule)

	now := s.clock.Now(ctx)
	reading := &domain.Reading{
		ID:              s.genID.Generate(),
		CustomerID:      e.customerID,
		ReaderID:        actor.UserID,
		ReadingDate:     e.date,
		PreviousReading: bill.Previous,
		CurrentReading:  bill.Current,
		ConsumptionM3:   bill.Consumption,
		Amount:          bill.Amount,
		PaymentStatus:   domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if idempotencyKey != "" {
		reading.IdempotencyKey = &idempotencyKey
	}
	if err := s.repo.Insert(ctx, s.db, reading); err != nil {
		// A concurrent request with the same key may have won the unique index.
		if idempotencyKey != "" {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, s.db, idempotencyKey)
			if findErr == nil && existing != nil {
				return s.load(ctx, existing.ID)
			}
		}
		return nil, err
	}

	s.log.Info("reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.String("customer_id", e.customerID.String()),
		zap.String("consumption_m3", bill.Consumption.String()),
		zap.String("amount", bill.Amount.StringFixed(tariff.AmountPlaces)),
		zap.Bool("credit", bill.Credit),
	)
	return s.load(ctx, reading.ID)
}

func (s *Service) Preview(ctx context.Context, actor authzdomain.Actor, req domain.RecordRequest) (*tariff.Bill, error) {
	if err := actor.Require(authzdomain.PermReadingsRecord); err != nil {
		return nil, err
	}
	e, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	bill := tariff.Calculate(e.previous, e.current, s.schedule)
	return &bill, nil
}

// Edit corrects a pending reading. Only the customer's latest reading can be
// edited, since the next reading takes its current value as its previous one.
// Consumption and amount are derived again from the stored previous reading.
func (s *Service) Edit(ctx context.Context, actor authzdomain.Actor, req domain.EditRequest) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermReadingsEdit); err != nil {
		return nil, err
	}
	current, err := domain.ParseVolume(req.CurrentReading)
	if err != nil {
		return nil, err
	}
	var newDate *time.Time
	if strings.TrimSpace(req.ReadingDate) != "" {
		date, err := domain.ParseDate(req.ReadingDate)
		if err != nil {
			return nil, err
		}
		newDate = &date
	}

	var (
		reading *domain.Reading
		bill    tariff.Bill
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reading, err = s.repo.FindByID(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if reading == nil {
			return domain.ErrNotFound
		}
		if reading.PaymentStatus != domain.StatusPending {
			return domain.ErrNotPending
		}

		latest, err := s.repo.FindLatestForCustomer(ctx, tx, reading.CustomerID)
		if err != nil {
			return err
		}
		if latest == nil || latest.ID != reading.ID {
			return domain.ErrNotLatest
		}

		date := reading.ReadingDate
		if newDate != nil {
			previous, err := s.repo.FindPrevious(ctx, tx, reading)
			if err != nil {
				return err
			}
			if previous != nil && !newDate.After(previous.ReadingDate) {
				return domain.ErrInvalidReadingDate
			}
			date = *newDate
		}

		bill = tariff.Calculate(reading.PreviousReading, current, s.schedule)
		affected, err := s.repo.UpdatePending(ctx, tx, reading.ID, date, bill.Current, bill.Consumption, bill.Amount, s.clock.Now(ctx))
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotPending
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reading edited",
		zap.String("reading_id", reading.ID.String()),
		zap.String("previous_amount", reading.Amount.StringFixed(tariff.AmountPlaces)),
		zap.String("amount", bill.Amount.StringFixed(tariff.AmountPlaces)),
		zap.String("by", actor.UserID.String()),
	)
	return s.load(ctx, reading.ID)
}

func (s *Service) Get(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*domain.Response, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	return s.load(ctx, id)
}

func (s *Service) ListRecent(ctx context.Context, actor authzdomain.Actor, limit int) ([]domain.Response, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	if limit <= 0 {
		limit = domain.RecentLimit
	}
	rows, err := s.repo.ListRecent(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResponse(row))
	}
	return out, nil
}

func (s *Service) ListPending(ctx context.Context, actor authzdomain.Actor) ([]domain.PendingInvoice, error) {
	if err := actor.Require(authzdomain.PermPaymentsView); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPending(ctx, s.db)
	if err != nil {
		return nil, err
	}
	today := clock.Today(ctx, s.clock)
	out := make([]domain.PendingInvoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PendingInvoice{
			ReadingID:     row.ID.String(),
			CustomerID:    row.CustomerID.String(),
			CustomerName:  row.FirstName + " " + row.LastName,
			MeterNumber:   row.MeterNumber,
			SectorName:    row.SectorName,
			ReadingDate:   row.ReadingDate.Format(domain.DateLayout),
			ConsumptionM3: row.ConsumptionM3,
			Amount:        row.Amount.Round(tariff.AmountPlaces),
			DaysOverdue:   domain.DaysBetween(row.ReadingDate, today),
		})
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, id snowflake.ID) (*domain.Response, error) {
	row, err := s.repo.FindRow(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(*row)
	return &resp, nil
}

func toResponse(row domain.Row) domain.Response {
	return domain.Response{
		ID:              row.ID.String(),
		CustomerID:      row.CustomerID.String(),
		CustomerName:    row.FirstName + " " + row.LastName,
		MeterNumber:     row.MeterNumber,
		SectorName:      row.SectorName,
		ReaderID:        row.ReaderID.String(),
		ReaderName:      strings.TrimSpace(row.ReaderFirstName + " " + row.ReaderLastName),
		ReadingDate:     row.ReadingDate.Format(domain.DateLayout),
		PreviousReading: row.PreviousReading,
		CurrentReading:  row.CurrentReading,
		ConsumptionM3:   row.ConsumptionM3,
		Amount:          row.Amount.Round(tariff.AmountPlaces),
		Credit:          row.Amount.IsNegative(),
		PaymentStatus:   row.PaymentStatus,
	}
}
