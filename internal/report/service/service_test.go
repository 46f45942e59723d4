package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/go-cmp/cmp"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/clock"
	"github.com/railzwaylabs/waterworks/internal/dbtest"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/report/domain"
	"github.com/railzwaylabs/waterworks/internal/report/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var now = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	svc     domain.Service
	analyst authzdomain.Actor
	reader  snowflake.ID
	cashier snowflake.ID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.New(t)
	reader := dbtest.User(t, db, "Ana", "Lopez", authzdomain.RoleReader)
	cashier := dbtest.User(t, db, "Tomas", "Caja", authzdomain.RoleTreasurer)
	return fixture{
		db: db,
		svc: New(Params{
			DB:    db,
			Log:   zap.NewNop(),
			Clock: clock.Fixed{At: now},
			Repo:  repository.Provide(),
		}),
		analyst: authzdomain.NewActor(7, "Presidente", authzdomain.RolePresident, []authzdomain.Permission{
			authzdomain.PermReportsView,
		}),
		reader:  reader.ID,
		cashier: cashier.ID,
	}
}

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2026, month, day, hour, 0, 0, 0, time.UTC)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	centro := dbtest.Sector(t, f.db, "Centro")
	dbtest.Sector(t, f.db, "Norte")
	a := dbtest.Customer(t, f.db, centro.ID, "Juan", "Perez", "A-1")
	b := dbtest.Customer(t, f.db, centro.ID, "Rosa", "Diaz", "A-2")
	dbtest.Deactivate(t, f.db, b.ID)
	dbtest.Reading(t, f.db, a.ID, f.reader, dbtest.Date(2026, time.September, 1), "0", "10", "20.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, a.ID, f.reader, dbtest.Date(2026, time.October, 1), "10", "40", "70.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, b.ID, f.reader, dbtest.Date(2026, time.August, 1), "0", "5", "10.00", readingdomain.StatusPaid)

	got, err := f.svc.Dashboard(context.Background(), authzdomain.NewActor(1, "x", authzdomain.RoleReader, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ActiveCustomers)
	assert.Equal(t, int64(2), got.PendingInvoices)
	assert.Equal(t, "90.00", got.PendingAmount.StringFixed(2))
	assert.Equal(t, int64(2), got.Sectors)

	_, err = f.svc.Dashboard(context.Background(), authzdomain.Actor{})
	require.ErrorIs(t, err, authzdomain.ErrUnauthenticated)
}

func TestIncome_GroupsByDayInclusive(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Centro")
	c := dbtest.Customer(t, f.db, sector.ID, "Juan", "Perez", "I-1")
	r1 := dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.September, 1), "0", "10", "20.00", readingdomain.StatusPaid)
	r2 := dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.September, 2), "10", "20", "20.00", readingdomain.StatusPaid)
	r3 := dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.September, 3), "20", "50", "70.00", readingdomain.StatusPaid)
	r4 := dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.September, 4), "50", "40", "-20.00", readingdomain.StatusPaid)

	dbtest.Payment(t, f.db, r1.ID, f.cashier, "20.00", at(time.October, 1, 9))
	dbtest.Payment(t, f.db, r2.ID, f.cashier, "20.00", at(time.October, 1, 16))
	// Late on the last day of the period still counts.
	dbtest.Payment(t, f.db, r3.ID, f.cashier, "70.00", at(time.October, 5, 23))
	dbtest.Payment(t, f.db, r4.ID, f.cashier, "-20.00", at(time.October, 6, 8))

	got, err := f.svc.Income(context.Background(), f.analyst, domain.PeriodRequest{From: "2026-10-01", To: "2026-10-05"})
	require.NoError(t, err)

	want := []domain.IncomeDay{
		{Date: "2026-10-05", Payments: 1},
		{Date: "2026-10-01", Payments: 2},
	}
	days := make([]domain.IncomeDay, len(got.Days))
	for i, d := range got.Days {
		days[i] = domain.IncomeDay{Date: d.Date, Payments: d.Payments}
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Fatalf("unexpected days (-want +got):\n%s", diff)
	}
	assert.Equal(t, "70.00", got.Days[0].Total.StringFixed(2))
	assert.Equal(t, "40.00", got.Days[1].Total.StringFixed(2))
	assert.Equal(t, "110.00", got.Total.StringFixed(2))
}

func TestIncome_Period(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Income(context.Background(), f.analyst, domain.PeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-01", got.From)
	assert.Equal(t, "2026-10-19", got.To)
	assert.Empty(t, got.Days)

	_, err = f.svc.Income(context.Background(), f.analyst, domain.PeriodRequest{From: "2026-10-05", To: "2026-10-01"})
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = f.svc.Income(context.Background(), f.analyst, domain.PeriodRequest{From: "ayer"})
	require.ErrorIs(t, err, domain.ErrInvalidPeriod)

	reader := authzdomain.NewActor(2, "Lector", authzdomain.RoleReader, []authzdomain.Permission{authzdomain.PermReadingsRecord})
	_, err = f.svc.Income(context.Background(), reader, domain.PeriodRequest{})
	require.ErrorIs(t, err, authzdomain.ErrForbidden)
}

func TestDebtors_OrderedByDebt(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Centro")
	small := dbtest.Customer(t, f.db, sector.ID, "Juan", "Perez", "D-1")
	big := dbtest.Customer(t, f.db, sector.ID, "Rosa", "Diaz", "D-2")
	clean := dbtest.Customer(t, f.db, sector.ID, "Luis", "Gomez", "D-3")

	dbtest.Reading(t, f.db, small.ID, f.reader, dbtest.Date(2026, time.October, 1), "0", "10", "20.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, big.ID, f.reader, dbtest.Date(2026, time.August, 1), "0", "10", "20.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, big.ID, f.reader, dbtest.Date(2026, time.September, 1), "10", "40", "70.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, clean.ID, f.reader, dbtest.Date(2026, time.September, 1), "0", "10", "20.00", readingdomain.StatusPaid)

	got, err := f.svc.Debtors(context.Background(), f.analyst)
	require.NoError(t, err)
	require.Len(t, got.Debtors, 2)

	assert.Equal(t, big.ID.String(), got.Debtors[0].CustomerID)
	assert.Equal(t, 2, got.Debtors[0].PendingInvoices)
	assert.Equal(t, "90.00", got.Debtors[0].TotalDebt.StringFixed(2))
	assert.Equal(t, "2026-08-01", got.Debtors[0].OldestReading)
	assert.Equal(t, small.ID.String(), got.Debtors[1].CustomerID)
	assert.Equal(t, "110.00", got.TotalDebt.StringFixed(2))
}

func TestConsumption_StatsPerCustomer(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Centro")
	low := dbtest.Customer(t, f.db, sector.ID, "Juan", "Perez", "K-1")
	high := dbtest.Customer(t, f.db, sector.ID, "Rosa", "Diaz", "K-2")

	dbtest.Reading(t, f.db, low.ID, f.reader, dbtest.Date(2026, time.October, 1), "0", "10", "20.00", readingdomain.StatusPaid)
	dbtest.Reading(t, f.db, low.ID, f.reader, dbtest.Date(2026, time.October, 10), "10", "15", "10.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, high.ID, f.reader, dbtest.Date(2026, time.October, 2), "0", "30", "70.00", readingdomain.StatusPending)
	// Outside the period.
	dbtest.Reading(t, f.db, high.ID, f.reader, dbtest.Date(2026, time.September, 2), "0", "100", "0.00", readingdomain.StatusPaid)

	got, err := f.svc.Consumption(context.Background(), f.analyst, domain.PeriodRequest{From: "2026-10-01", To: "2026-10-10"})
	require.NoError(t, err)
	require.Len(t, got.Customers, 2)

	assert.Equal(t, high.ID.String(), got.Customers[0].CustomerID)
	assert.Equal(t, 1, got.Customers[0].Readings)
	assert.Equal(t, "30", got.Customers[0].Average.String())

	assert.Equal(t, low.ID.String(), got.Customers[1].CustomerID)
	assert.Equal(t, "7.5", got.Customers[1].Average.String())
	assert.Equal(t, "10", got.Customers[1].Max.String())
	assert.Equal(t, "5", got.Customers[1].Min.String())
}

func TestCustomer_Report(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Centro")
	c := dbtest.Customer(t, f.db, sector.ID, "Juan", "Perez", "R-1")

	first := dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.August, 1), "0", "10", "20.00", readingdomain.StatusPaid)
	dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.September, 19), "10", "40", "70.00", readingdomain.StatusPending)
	dbtest.Reading(t, f.db, c.ID, f.reader, dbtest.Date(2026, time.October, 9), "40", "30", "-20.00", readingdomain.StatusPending)
	dbtest.Payment(t, f.db, first.ID, f.cashier, "20.00", at(time.August, 3, 10))

	got, err := f.svc.Customer(context.Background(), f.analyst, c.ID)
	require.NoError(t, err)

	assert.Equal(t, "Centro", got.Customer.SectorName)
	require.Len(t, got.Readings, 3)
	assert.Equal(t, "2026-10-09", got.Readings[0].ReadingDate)
	assert.Equal(t, "Ana Lopez", got.Readings[0].Reader)

	require.Len(t, got.Payments, 1)
	assert.Equal(t, "Tomas Caja", got.Payments[0].Receiver)
	assert.Equal(t, "2026-08-01", got.Payments[0].ReadingDate)

	assert.Equal(t, 3, got.Stats.Readings)
	assert.Equal(t, "10", got.Stats.AverageM3.String())
	assert.Equal(t, "30", got.Stats.MaxM3.String())
	assert.Equal(t, "-10", got.Stats.MinM3.String())
	assert.Equal(t, "50.00", got.Stats.PendingDebt.StringFixed(2))
	assert.Equal(t, "20.00", got.Stats.TotalPaid.StringFixed(2))

	require.Len(t, got.Pending, 2)
	assert.Equal(t, "2026-09-19", got.Pending[0].ReadingDate)
	assert.Equal(t, 30, got.Pending[0].DaysOverdue)
	assert.Equal(t, 10, got.Pending[1].DaysOverdue)
}

func TestCustomer_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Customer(context.Background(), f.analyst, dbtest.Node().Generate())
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestTables(t *testing.T) {
	income := IncomeTable(&domain.IncomeReport{
		From: "2026-10-01",
		To:   "2026-10-05",
		Days: []domain.IncomeDay{{Date: "2026-10-05", Payments: 1}},
	}, "Q")
	assert.Equal(t, IncomeTitle, income.Title)
	assert.Equal(t, []string{"2026-10-05", "1", "Q0.00"}, income.Rows[0])

	debtors := DebtorsTable(&domain.DebtorReport{}, "Q")
	assert.Len(t, debtors.Header, 6)
	assert.Empty(t, debtors.Rows)

	consumption := ConsumptionTable(&domain.ConsumptionReport{From: "a", To: "b"})
	assert.Equal(t, "a a b", consumption.Period)
}
