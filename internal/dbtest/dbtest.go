// Package dbtest contains supporting code for running tests that hit the DB.
package dbtest

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	customerdomain "github.com/railzwaylabs/waterworks/internal/customer/domain"
	paymentdomain "github.com/railzwaylabs/waterworks/internal/payment/domain"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	sectordomain "github.com/railzwaylabs/waterworks/internal/sector/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var node *snowflake.Node

func init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// Node returns the id generator shared by fixtures and services under test.
func Node() *snowflake.Node {
	return node
}

// New opens an in-memory database private to the test and creates the
// committee schema in it.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&sectordomain.Sector{},
		&customerdomain.Customer{},
		&readingdomain.Reading{},
		&paymentdomain.Payment{},
		&authzdomain.PermissionRecord{},
		&auditdomain.AuditLog{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection serialises transactions the way row locks would.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// Date builds a UTC calendar date.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func User(t *testing.T, db *gorm.DB, first, last string, role authzdomain.Role) authdomain.User {
	t.Helper()
	now := time.Now().UTC()
	u := authdomain.User{
		ID:           node.Generate(),
		FirstName:    first,
		LastName:     last,
		Email:        first + "." + node.Generate().String() + "@example.com",
		PasswordHash: "x",
		Role:         string(role),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func Sector(t *testing.T, db *gorm.DB, name string) sectordomain.Sector {
	t.Helper()
	s := sectordomain.Sector{
		ID:        node.Generate(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func Customer(t *testing.T, db *gorm.DB, sectorID snowflake.ID, first, last, meter string) customerdomain.Customer {
	t.Helper()
	now := time.Now().UTC()
	c := customerdomain.Customer{
		ID:          node.Generate(),
		FirstName:   first,
		LastName:    last,
		SectorID:    sectorID,
		MeterNumber: meter,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

// Deactivate marks a customer inactive. Create skips false booleans that
// carry a default, so it is a separate update.
func Deactivate(t *testing.T, db *gorm.DB, customerID snowflake.ID) {
	t.Helper()
	require.NoError(t, db.Model(&customerdomain.Customer{}).Where("id = ?", customerID).Update("active", false).Error)
}

func Reading(t *testing.T, db *gorm.DB, customerID, readerID snowflake.ID, date time.Time, previous, current, amount string, status readingdomain.PaymentStatus) readingdomain.Reading {
	t.Helper()
	prev := decimal.RequireFromString(previous)
	cur := decimal.RequireFromString(current)
	now := time.Now().UTC()
	r := readingdomain.Reading{
		ID:              node.Generate(),
		CustomerID:      customerID,
		ReaderID:        readerID,
		ReadingDate:     date,
		PreviousReading: prev,
		CurrentReading:  cur,
		ConsumptionM3:   cur.Sub(prev),
		Amount:          decimal.RequireFromString(amount),
		PaymentStatus:   status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func Payment(t *testing.T, db *gorm.DB, readingID, receiverID snowflake.ID, amount string, paidAt time.Time) paymentdomain.Payment {
	t.Helper()
	p := paymentdomain.Payment{
		ID:         node.Generate(),
		ReadingID:  readingID,
		AmountPaid: decimal.RequireFromString(amount),
		ReceiverID: receiverID,
		PaidAt:     paidAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}
