package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/clock"
	"github.com/railzwaylabs/waterworks/internal/dbtest"
	"github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/reading/repository"
	"github.com/railzwaylabs/waterworks/internal/tariff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var today = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	svc    domain.Service
	reader authzdomain.Actor
	admin  authzdomain.Actor
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.New(t)

	user := dbtest.User(t, db, "Ana", "Lopez", authzdomain.RoleReader)
	admin := dbtest.User(t, db, "Marta", "Ruiz", authzdomain.RoleAdmin)

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    dbtest.Node(),
		Clock:    clock.Fixed{At: today},
		Schedule: tariff.DefaultSchedule(),
		Repo:     repository.Provide(),
	})
	return fixture{
		db:  db,
		svc: svc,
		reader: authzdomain.NewActor(user.ID, user.FullName(), authzdomain.RoleReader, []authzdomain.Permission{
			authzdomain.PermReadingsRecord,
		}),
		admin: authzdomain.NewActor(admin.ID, admin.FullName(), authzdomain.RoleAdmin, []authzdomain.Permission{
			authzdomain.PermReadingsRecord,
			authzdomain.PermReadingsEdit,
			authzdomain.PermPaymentsView,
		}),
	}
}

func TestRecord_FirstReadingStartsFromZero(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Centro")
	customer := dbtest.Customer(t, f.db, sector.ID, "Juan", "Perez", "M-001")

	resp, err := f.svc.Record(context.Background(), f.reader, domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		ReadingDate:    "2026-10-01",
		CurrentReading: "10",
	})
	require.NoError(t, err)

	assert.Equal(t, "0", resp.PreviousReading.String())
	assert.Equal(t, "10", resp.ConsumptionM3.String())
	assert.Equal(t, "20.00", resp.Amount.StringFixed(2))
	assert.False(t, resp.Credit)
	assert.Equal(t, domain.StatusPending, resp.PaymentStatus)
	assert.Equal(t, "2026-10-01", resp.ReadingDate)
	assert.Equal(t, "Ana Lopez", resp.ReaderName)
	assert.Equal(t, "Centro", resp.SectorName)
	assert.Equal(t, f.reader.UserID.String(), resp.ReaderID)
}

func TestRecord_LowerReadingBecomesCredit(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Norte")
	customer := dbtest.Customer(t, f.db, sector.ID, "Luis", "Gomez", "M-002")
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.August, 1), "40", "60", "40.00", domain.StatusPaid)
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.September, 1), "60", "100", "90.00", domain.StatusPending)

	resp, err := f.svc.Record(context.Background(), f.reader, domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		CurrentReading: "90",
	})
	require.NoError(t, err)

	assert.Equal(t, "100", resp.PreviousReading.String())
	assert.Equal(t, "-10", resp.ConsumptionM3.String())
	assert.Equal(t, "-20.00", resp.Amount.StringFixed(2))
	assert.True(t, resp.Credit)
	assert.Equal(t, "2026-10-19", resp.ReadingDate)
}

func TestRecord_AcceptsCommaDecimal(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Sur")
	customer := dbtest.Customer(t, f.db, sector.ID, "Rosa", "Diaz", "M-003")

	resp, err := f.svc.Record(context.Background(), f.reader, domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		CurrentReading: "12,5",
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", resp.Amount.StringFixed(2))
}

func TestRecord_Validation(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Este")
	inactive := dbtest.Customer(t, f.db, sector.ID, "Pedro", "Sosa", "M-004")
	dbtest.Deactivate(t, f.db, inactive.ID)
	active := dbtest.Customer(t, f.db, sector.ID, "Carla", "Mena", "M-005")

	cases := []struct {
		name string
		req  domain.RecordRequest
		want error
	}{
		{"bad customer id", domain.RecordRequest{CustomerID: "abc", CurrentReading: "5"}, domain.ErrInvalidCustomer},
		{"unknown customer", domain.RecordRequest{CustomerID: dbtest.Node().Generate().String(), CurrentReading: "5"}, domain.ErrCustomerNotFound},
		{"inactive customer", domain.RecordRequest{CustomerID: inactive.ID.String(), CurrentReading: "5"}, domain.ErrCustomerInactive},
		{"empty value", domain.RecordRequest{CustomerID: active.ID.String(), CurrentReading: " "}, domain.ErrInvalidReadingValue},
		{"bad value", domain.RecordRequest{CustomerID: active.ID.String(), CurrentReading: "diez"}, domain.ErrInvalidReadingValue},
		{"bad date", domain.RecordRequest{CustomerID: active.ID.String(), CurrentReading: "5", ReadingDate: "19/10/2026"}, domain.ErrInvalidReadingDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(context.Background(), f.reader, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecord_RequiresPermission(t *testing.T) {
	f := newFixture(t)
	president := authzdomain.NewActor(f.reader.UserID, "Presidente", authzdomain.RolePresident, []authzdomain.Permission{
		authzdomain.PermReportsView,
	})

	_, err := f.svc.Record(context.Background(), president, domain.RecordRequest{CustomerID: "1", CurrentReading: "1"})
	require.ErrorIs(t, err, authzdomain.ErrForbidden)

	_, err = f.svc.Record(context.Background(), authzdomain.Actor{}, domain.RecordRequest{})
	require.ErrorIs(t, err, authzdomain.ErrUnauthenticated)
}

func TestRecord_IdempotencyKeyReturnsExisting(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Oeste")
	customer := dbtest.Customer(t, f.db, sector.ID, "Elena", "Vargas", "M-006")
	req := domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		CurrentReading: "30",
		IdempotencyKey: "form-123",
	}

	first, err := f.svc.Record(context.Background(), f.reader, req)
	require.NoError(t, err)
	second, err := f.svc.Record(context.Background(), f.reader, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.Reading{}).Where("customer_id = ?", customer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// staleKeyRepo misses idempotency lookups a fixed number of times, the way a
// request does when a concurrent one inserts the same key after its check.
type staleKeyRepo struct {
	domain.Repository
	misses int
}

func (r *staleKeyRepo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.Reading, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.Repository.FindByIdempotencyKey(ctx, db, key)
}

func TestRecord_IdempotencyKeyConflictReturnsStoredReading(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Puente")
	customer := dbtest.Customer(t, f.db, sector.ID, "Olga", "Rey", "M-012")
	req := domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		ReadingDate:    "2026-10-02",
		CurrentReading: "15",
		IdempotencyKey: "form-777",
	}

	first, err := f.svc.Record(context.Background(), f.reader, req)
	require.NoError(t, err)

	repo := &staleKeyRepo{Repository: repository.Provide(), misses: 1}
	racing := New(Params{
		DB:       f.db,
		Log:      zap.NewNop(),
		GenID:    dbtest.Node(),
		Clock:    clock.Fixed{At: today},
		Schedule: tariff.DefaultSchedule(),
		Repo:     repo,
	})

	second, err := racing.Record(context.Background(), f.reader, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Zero(t, repo.misses)

	var count int64
	require.NoError(t, f.db.Model(&domain.Reading{}).Where("customer_id = ?", customer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPreview_DoesNotPersist(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Alto")
	customer := dbtest.Customer(t, f.db, sector.ID, "Mario", "Cruz", "M-007")
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.September, 1), "0", "20", "40.00", domain.StatusPaid)

	bill, err := f.svc.Preview(context.Background(), f.reader, domain.RecordRequest{
		CustomerID:     customer.ID.String(),
		CurrentReading: "50",
	})
	require.NoError(t, err)
	assert.Equal(t, "70.00", bill.Amount.StringFixed(2))
	assert.Equal(t, "25", bill.BaseVolume.String())
	assert.Equal(t, "5", bill.OverageVolume.String())

	var count int64
	require.NoError(t, f.db.Model(&domain.Reading{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEdit_RecomputesFromStoredPrevious(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Bajo")
	customer := dbtest.Customer(t, f.db, sector.ID, "Sara", "Leon", "M-008")
	reading := dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.October, 1), "100", "110", "20.00", domain.StatusPending)

	resp, err := f.svc.Edit(context.Background(), f.admin, domain.EditRequest{
		ID:             reading.ID,
		CurrentReading: "130",
		ReadingDate:    "2026-10-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.PreviousReading.String())
	assert.Equal(t, "30", resp.ConsumptionM3.String())
	assert.Equal(t, "70.00", resp.Amount.StringFixed(2))
	assert.Equal(t, "2026-10-02", resp.ReadingDate)
}

func TestEdit_OnlyLatestReadingKeepsChainIntact(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Rio")
	customer := dbtest.Customer(t, f.db, sector.ID, "Lidia", "Mora", "M-011")
	ctx := context.Background()

	first, err := f.svc.Record(ctx, f.reader, domain.RecordRequest{
		CustomerID: customer.ID.String(), ReadingDate: "2026-10-01", CurrentReading: "100",
	})
	require.NoError(t, err)
	second, err := f.svc.Record(ctx, f.reader, domain.RecordRequest{
		CustomerID: customer.ID.String(), ReadingDate: "2026-10-10", CurrentReading: "130",
	})
	require.NoError(t, err)

	firstID, err := snowflake.ParseString(first.ID)
	require.NoError(t, err)
	secondID, err := snowflake.ParseString(second.ID)
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, f.admin, domain.EditRequest{ID: firstID, CurrentReading: "120"})
	require.ErrorIs(t, err, domain.ErrNotLatest)

	var stored domain.Reading
	require.NoError(t, f.db.First(&stored, "id = ?", firstID).Error)
	assert.Equal(t, "100", stored.CurrentReading.String())

	// The latest reading cannot move to or before the reading it follows.
	for _, date := range []string{"2026-10-01", "2026-09-30"} {
		_, err = f.svc.Edit(ctx, f.admin, domain.EditRequest{ID: secondID, CurrentReading: "140", ReadingDate: date})
		require.ErrorIs(t, err, domain.ErrInvalidReadingDate, date)
	}

	resp, err := f.svc.Edit(ctx, f.admin, domain.EditRequest{ID: secondID, CurrentReading: "140", ReadingDate: "2026-10-05"})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.PreviousReading.String())
	assert.Equal(t, "40", resp.ConsumptionM3.String())
	assert.Equal(t, "2026-10-05", resp.ReadingDate)

	require.NoError(t, f.db.First(&stored, "id = ?", secondID).Error)
	assert.True(t, stored.UpdatedAt.Equal(today), "updated_at comes from the service clock")
}

func TestEdit_RejectsPaidReading(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Loma")
	customer := dbtest.Customer(t, f.db, sector.ID, "Raul", "Paz", "M-009")
	reading := dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.October, 1), "0", "10", "20.00", domain.StatusPaid)

	_, err := f.svc.Edit(context.Background(), f.admin, domain.EditRequest{ID: reading.ID, CurrentReading: "12"})
	require.ErrorIs(t, err, domain.ErrNotPending)

	_, err = f.svc.Edit(context.Background(), f.admin, domain.EditRequest{ID: dbtest.Node().Generate(), CurrentReading: "12"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Edit(context.Background(), f.reader, domain.EditRequest{ID: reading.ID, CurrentReading: "12"})
	require.ErrorIs(t, err, authzdomain.ErrForbidden)
}

func TestListPending_ComputesDaysOverdue(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Valle")
	customer := dbtest.Customer(t, f.db, sector.ID, "Irma", "Soto", "M-010")
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.September, 19), "0", "10", "20.00", domain.StatusPending)
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.October, 9), "10", "20", "20.00", domain.StatusPending)
	dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.August, 1), "0", "0", "0.00", domain.StatusPaid)

	items, err := f.svc.ListPending(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 30, items[0].DaysOverdue)
	assert.Equal(t, 10, items[1].DaysOverdue)
	assert.Equal(t, "Irma Soto", items[0].CustomerName)

	_, err = f.svc.ListPending(context.Background(), f.reader)
	require.ErrorIs(t, err, authzdomain.ErrForbidden)
}

func TestListRecent_NewestFirst(t *testing.T) {
	f := newFixture(t)
	sector := dbtest.Sector(t, f.db, "Rio")
	customer := dbtest.Customer(t, f.db, sector.ID, "Olga", "Rios", "M-011")
	older := dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.September, 1), "0", "10", "20.00", domain.StatusPaid)
	newer := dbtest.Reading(t, f.db, customer.ID, f.reader.UserID, dbtest.Date(2026, time.October, 1), "10", "15", "10.00", domain.StatusPending)

	items, err := f.svc.ListRecent(context.Background(), f.reader, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID.String(), items[0].ID)
	assert.Equal(t, older.ID.String(), items[1].ID)
}
