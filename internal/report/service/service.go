package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/clock"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/report/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	amountPlaces = 2
	volumePlaces = 3
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("report.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Dashboard(ctx context.Context, actor authzdomain.Actor) (*domain.Dashboard, error) {
	if !actor.Authenticated() {
		return nil, authzdomain.ErrUnauthenticated
	}
	row, err := s.repo.Dashboard(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		ActiveCustomers: row.ActiveCustomers,
		PendingInvoices: row.PendingInvoices,
		PendingAmount:   row.PendingAmount.Round(amountPlaces),
		Sectors:         row.Sectors,
	}, nil
}

// Income totals payments per calendar day, newest day first.
func (s *Service) Income(ctx context.Context, actor authzdomain.Actor, req domain.PeriodRequest) (*domain.IncomeReport, error) {
	if err := actor.Require(authzdomain.PermReportsView); err != nil {
		return nil, err
	}
	from, to, err := s.period(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListPayments(ctx, s.db, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byDay := lo.GroupBy(rows, func(r domain.PaymentRow) string {
		return r.PaidAt.UTC().Format(readingdomain.DateLayout)
	})
	days := make([]domain.IncomeDay, 0, len(byDay))
	total := decimal.Zero
	for day, payments := range byDay {
		sum := sumOf(payments, func(p domain.PaymentRow) decimal.Decimal { return p.AmountPaid })
		total = total.Add(sum)
		days = append(days, domain.IncomeDay{
			Date:     day,
			Payments: len(payments),
			Total:    sum.Round(amountPlaces),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	return &domain.IncomeReport{
		From:        from.Format(readingdomain.DateLayout),
		To:          to.Format(readingdomain.DateLayout),
		Days:        days,
		Total:       total.Round(amountPlaces),
		GeneratedAt: s.clock.Now(ctx),
	}, nil
}

// Debtors lists customers with unpaid readings, largest debt first.
func (s *Service) Debtors(ctx context.Context, actor authzdomain.Actor) (*domain.DebtorReport, error) {
	if err := actor.Require(authzdomain.PermReportsView); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPendingReadings(ctx, s.db)
	if err != nil {
		return nil, err
	}

	byCustomer := lo.GroupBy(rows, func(r domain.ReadingRow) snowflake.ID { return r.CustomerID })
	debtors := make([]domain.Debtor, 0, len(byCustomer))
	total := decimal.Zero
	for _, readings := range byCustomer {
		first := readings[0]
		debt := sumOf(readings, func(r domain.ReadingRow) decimal.Decimal { return r.Amount })
		oldest := lo.MinBy(readings, func(a, b domain.ReadingRow) bool { return a.ReadingDate.Before(b.ReadingDate) })
		total = total.Add(debt)
		debtors = append(debtors, domain.Debtor{
			CustomerID:      first.CustomerID.String(),
			FirstName:       first.FirstName,
			LastName:        first.LastName,
			MeterNumber:     first.MeterNumber,
			SectorName:      first.SectorName,
			PendingInvoices: len(readings),
			TotalDebt:       debt.Round(amountPlaces),
			OldestReading:   oldest.ReadingDate.Format(readingdomain.DateLayout),
		})
	}
	sort.Slice(debtors, func(i, j int) bool {
		if c := debtors[i].TotalDebt.Cmp(debtors[j].TotalDebt); c != 0 {
			return c > 0
		}
		return debtors[i].MeterNumber < debtors[j].MeterNumber
	})

	return &domain.DebtorReport{
		Debtors:     debtors,
		TotalDebt:   total.Round(amountPlaces),
		GeneratedAt: s.clock.Now(ctx),
	}, nil
}

// Consumption summarises metered volume per customer, highest average first.
func (s *Service) Consumption(ctx context.Context, actor authzdomain.Actor, req domain.PeriodRequest) (*domain.ConsumptionReport, error) {
	if err := actor.Require(authzdomain.PermReportsView); err != nil {
		return nil, err
	}
	from, to, err := s.period(ctx, req)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListReadings(ctx, s.db, from, to)
	if err != nil {
		return nil, err
	}

	byCustomer := lo.GroupBy(rows, func(r domain.ReadingRow) snowflake.ID { return r.CustomerID })
	stats := make([]domain.ConsumptionStat, 0, len(byCustomer))
	for _, readings := range byCustomer {
		first := readings[0]
		avg, high, low := volumeStats(lo.Map(readings, func(r domain.ReadingRow, _ int) decimal.Decimal { return r.ConsumptionM3 }))
		stats = append(stats, domain.ConsumptionStat{
			CustomerID:  first.CustomerID.String(),
			FirstName:   first.FirstName,
			LastName:    first.LastName,
			MeterNumber: first.MeterNumber,
			SectorName:  first.SectorName,
			Readings:    len(readings),
			Average:     avg,
			Max:         high,
			Min:         low,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Average.Cmp(stats[j].Average); c != 0 {
			return c > 0
		}
		return stats[i].MeterNumber < stats[j].MeterNumber
	})

	return &domain.ConsumptionReport{
		From:        from.Format(readingdomain.DateLayout),
		To:          to.Format(readingdomain.DateLayout),
		Customers:   stats,
		GeneratedAt: s.clock.Now(ctx),
	}, nil
}

// Customer assembles the individual report. The customer, reading history
// and payment history are loaded concurrently.
func (s *Service) Customer(ctx context.Context, actor authzdomain.Actor, customerID snowflake.ID) (*domain.CustomerReport, error) {
	if err := actor.Require(authzdomain.PermReportsView); err != nil {
		return nil, err
	}

	var (
		customer *domain.CustomerRow
		readings []domain.HistoryRow
		payments []domain.PaymentHistoryRow
	)
	g := pool.New().WithContext(ctx).WithCancelOnError()
	g.Go(func(ctx context.Context) error {
		var err error
		customer, err = s.repo.FindCustomer(ctx, s.db, customerID)
		return err
	})
	g.Go(func(ctx context.Context) error {
		var err error
		readings, err = s.repo.CustomerReadings(ctx, s.db, customerID)
		return err
	})
	g.Go(func(ctx context.Context) error {
		var err error
		payments, err = s.repo.CustomerPayments(ctx, s.db, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	today := clock.Today(ctx, s.clock)
	report := &domain.CustomerReport{
		Customer: domain.CustomerInfo{
			ID:          customer.ID.String(),
			FirstName:   customer.FirstName,
			LastName:    customer.LastName,
			Phone:       customer.Phone,
			MeterNumber: customer.MeterNumber,
			Active:      customer.Active,
			SectorID:    customer.SectorID.String(),
			SectorName:  customer.SectorName,
			CreatedAt:   customer.CreatedAt,
		},
		Readings:    make([]domain.ReadingEntry, 0, len(readings)),
		Payments:    make([]domain.PaymentEntry, 0, len(payments)),
		Pending:     []domain.PendingEntry{},
		GeneratedAt: s.clock.Now(ctx),
	}

	for _, r := range readings {
		report.Readings = append(report.Readings, domain.ReadingEntry{
			ID:              r.ID.String(),
			ReadingDate:     r.ReadingDate.Format(readingdomain.DateLayout),
			PreviousReading: r.PreviousReading,
			CurrentReading:  r.CurrentReading,
			ConsumptionM3:   r.ConsumptionM3,
			Amount:          r.Amount.Round(amountPlaces),
			PaymentStatus:   r.PaymentStatus,
			Reader:          fullName(r.ReaderFirstName, r.ReaderLastName),
		})
	}
	for _, p := range payments {
		report.Payments = append(report.Payments, domain.PaymentEntry{
			ID:            p.ID.String(),
			PaidAt:        p.PaidAt,
			AmountPaid:    p.AmountPaid.Round(amountPlaces),
			ReadingID:     p.ReadingID.String(),
			ReadingDate:   p.ReadingDate.Format(readingdomain.DateLayout),
			ConsumptionM3: p.ConsumptionM3,
			Receiver:      fullName(p.ReceiverFirstName, p.ReceiverLastName),
		})
	}

	pending := lo.Filter(readings, func(r domain.HistoryRow, _ int) bool {
		return r.PaymentStatus == string(readingdomain.StatusPending)
	})
	paid := lo.Filter(readings, func(r domain.HistoryRow, _ int) bool {
		return r.PaymentStatus == string(readingdomain.StatusPaid)
	})
	// History is newest first; pending invoices read oldest first.
	for i := len(pending) - 1; i >= 0; i-- {
		r := pending[i]
		report.Pending = append(report.Pending, domain.PendingEntry{
			ReadingID:     r.ID.String(),
			ReadingDate:   r.ReadingDate.Format(readingdomain.DateLayout),
			ConsumptionM3: r.ConsumptionM3,
			Amount:        r.Amount.Round(amountPlaces),
			DaysOverdue:   readingdomain.DaysBetween(r.ReadingDate, today),
		})
	}

	avg, high, low := volumeStats(lo.Map(readings, func(r domain.HistoryRow, _ int) decimal.Decimal { return r.ConsumptionM3 }))
	report.Stats = domain.CustomerStats{
		Readings:        len(readings),
		AverageM3:       avg,
		MaxM3:           high,
		MinM3:           low,
		PendingDebt:     sumOf(pending, func(r domain.HistoryRow) decimal.Decimal { return r.Amount }).Round(amountPlaces),
		TotalPaid:       sumOf(paid, func(r domain.HistoryRow) decimal.Decimal { return r.Amount }).Round(amountPlaces),
		PendingInvoices: len(pending),
	}

	s.log.Debug("customer report built",
		zap.String("customer_id", customerID.String()),
		zap.Int("readings", len(readings)),
		zap.Int("payments", len(payments)),
	)
	return report, nil
}

// period resolves an inclusive date range, defaulting to the current month.
func (s *Service) period(ctx context.Context, req domain.PeriodRequest) (time.Time, time.Time, error) {
	today := clock.Today(ctx, s.clock)
	rawFrom, rawTo := strings.TrimSpace(req.From), strings.TrimSpace(req.To)

	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := today
	var err error
	if rawFrom != "" {
		if from, err = time.Parse(readingdomain.DateLayout, rawFrom); err != nil {
			return time.Time{}, time.Time{}, domain.ErrInvalidPeriod
		}
	}
	if rawTo != "" {
		if to, err = time.Parse(readingdomain.DateLayout, rawTo); err != nil {
			return time.Time{}, time.Time{}, domain.ErrInvalidPeriod
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, domain.ErrInvalidPeriod
	}
	return from, to, nil
}

func sumOf[T any](items []T, value func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(value(item))
	}
	return total
}

// volumeStats returns average, maximum and minimum, all zero for no values.
func volumeStats(values []decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if len(values) == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	avg := decimal.Avg(values[0], values[1:]...).Round(volumePlaces)
	return avg, decimal.Max(values[0], values[1:]...), decimal.Min(values[0], values[1:]...)
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
