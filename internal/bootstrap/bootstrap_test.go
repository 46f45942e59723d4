package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE system_bootstrap_state (
		id BOOLEAN PRIMARY KEY,
		status TEXT NOT NULL,
		schema_version TEXT NOT NULL,
		checksum TEXT,
		activated_at DATETIME,
		created_at DATETIME NOT NULL
	)`).Error)
	return db
}

func insertState(t *testing.T, db *gorm.DB, status, version, checksum string) {
	t.Helper()
	require.NoError(t, db.Table(systemBootstrapStateTable).Create(&SystemBootstrapState{
		ID:            true,
		Status:        status,
		SchemaVersion: version,
		Checksum:      &checksum,
		CreatedAt:     time.Now().UTC(),
	}).Error)
}

func TestSchemaGate(t *testing.T) {
	cases := []struct {
		name     string
		status   string
		version  string
		checksum string
		want     error
	}{
		{"active", "ACTIVE ", "1", "abc", nil},
		{"initializing", StatusInitializing, "1", "abc", ErrBootstrapStateInactive},
		{"old schema", StatusActive, "0", "abc", ErrSchemaVersionMismatch},
		{"edited migration", StatusActive, "1", "zzz", ErrSchemaChecksumMismatch},
		{"no checksum recorded", StatusActive, "1", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := openDB(t)
			insertState(t, db, tc.status, tc.version, tc.checksum)
			gate := &schemaGate{db: db, expectedVersion: "1", expectedChecksum: "abc"}

			err := gate.MustBeActive(context.Background())
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSchemaGate_MissingState(t *testing.T) {
	db := openDB(t)
	gate := &schemaGate{db: db, expectedVersion: "1"}
	require.ErrorIs(t, gate.MustBeActive(context.Background()), ErrBootstrapStateNotFound)
}

func TestNewSchemaGate_RequiresMigrationsForDialect(t *testing.T) {
	_, err := NewSchemaGate(nil)
	require.Error(t, err)

	// Only mysql and postgres ship migrations.
	_, err = NewSchemaGate(openDB(t))
	require.Error(t, err)
}

type mockUsers struct {
	mock.Mock
	authdomain.Service
}

func (m *mockUsers) EnsureAdmin(ctx context.Context, email, raw string) (*authdomain.Response, bool, error) {
	args := m.Called(ctx, email, raw)
	resp, _ := args.Get(0).(*authdomain.Response)
	return resp, args.Bool(1), args.Error(2)
}

type mockAuthz struct {
	mock.Mock
	authzdomain.Service
}

func (m *mockAuthz) SeedRoleGrants(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	var cfg config.Config
	cfg.Bootstrap.AdminEmail = "admin@corinto.org"
	cfg.Bootstrap.AdminPassword = "secreto"

	users := &mockUsers{}
	users.On("EnsureAdmin", mock.Anything, "admin@corinto.org", "secreto").
		Return(&authdomain.Response{ID: "1", Email: "admin@corinto.org"}, true, nil).Once()

	lc := fxtest.NewLifecycle(t)
	EnsureDefaultAdmin(lc, cfg, users, zap.NewNop())
	lc.RequireStart().RequireStop()
	users.AssertExpectations(t)
}

func TestEnsureDefaultAdmin_SkippedWithoutCredentials(t *testing.T) {
	users := &mockUsers{}
	lc := fxtest.NewLifecycle(t)
	EnsureDefaultAdmin(lc, config.Config{}, users, zap.NewNop())
	lc.RequireStart().RequireStop()
	users.AssertNotCalled(t, "EnsureAdmin", mock.Anything, mock.Anything, mock.Anything)
}

func TestSeedRoleGrants(t *testing.T) {
	authz := &mockAuthz{}
	authz.On("SeedRoleGrants", mock.Anything).Return(nil).Once()

	lc := fxtest.NewLifecycle(t)
	SeedRoleGrants(lc, authz)
	lc.RequireStart().RequireStop()
	authz.AssertExpectations(t)
}
