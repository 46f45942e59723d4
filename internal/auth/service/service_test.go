package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/waterworks/internal/auth/domain"
	"github.com/railzwaylabs/waterworks/internal/auth/repository"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockAuthz struct {
	mock.Mock
	authzdomain.Service
}

func (m *mockAuthz) Invalidate(userID snowflake.ID) {
	m.Called(userID)
}

func newTestService(t *testing.T, authz authzdomain.Service) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Authz: authz,
	}).(*Service)
}

func adminActor() authzdomain.Actor {
	return authzdomain.NewActor(42, "Admin", authzdomain.RoleAdmin, []authzdomain.Permission{authzdomain.PermUsersManage})
}

func validRequest() domain.CreateRequest {
	return domain.CreateRequest{
		FirstName:       "Rosa",
		LastName:        "Pérez",
		Email:           "Rosa@Corinto.org ",
		Password:        "agua123",
		ConfirmPassword: "agua123",
		Role:            "reader",
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.CreateRequest)
		want   error
	}{
		{"missing first name", func(r *domain.CreateRequest) { r.FirstName = " " }, domain.ErrInvalidFirstName},
		{"missing last name", func(r *domain.CreateRequest) { r.LastName = "" }, domain.ErrInvalidLastName},
		{"bad email", func(r *domain.CreateRequest) { r.Email = "rosa" }, domain.ErrInvalidEmail},
		{"unknown role", func(r *domain.CreateRequest) { r.Role = "JANITOR" }, domain.ErrInvalidRole},
		{"short password", func(r *domain.CreateRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, domain.ErrPasswordTooShort},
		{"mismatch", func(r *domain.CreateRequest) { r.ConfirmPassword = "agua124" }, domain.ErrPasswordMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, adminActor(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreate_RequiresPermission(t *testing.T) {
	svc := newTestService(t, nil)
	reader := authzdomain.NewActor(7, "Lector", authzdomain.RoleReader, nil)

	_, err := svc.Create(context.Background(), reader, validRequest())
	assert.ErrorIs(t, err, authzdomain.ErrForbidden)

	_, err = svc.Create(context.Background(), authzdomain.Actor{}, validRequest())
	assert.ErrorIs(t, err, authzdomain.ErrUnauthenticated)
}

func TestCreateAndLogin(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "rosa@corinto.org", created.Email)
	assert.Equal(t, "READER", created.Role)
	assert.True(t, created.Active)

	_, err = svc.Create(ctx, adminActor(), validRequest())
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	user, err := svc.Login(ctx, "ROSA@corinto.org", "agua123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(ctx, "rosa@corinto.org", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@corinto.org", "agua123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestToggleActive(t *testing.T) {
	authz := &mockAuthz{}
	svc := newTestService(t, authz)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validRequest())
	require.NoError(t, err)
	id, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	authz.On("Invalidate", id).Return().Twice()

	toggled, err := svc.ToggleActive(ctx, adminActor(), id)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	_, err = svc.Login(ctx, "rosa@corinto.org", "agua123")
	assert.ErrorIs(t, err, domain.ErrUserInactive)

	toggled, err = svc.ToggleActive(ctx, adminActor(), id)
	require.NoError(t, err)
	assert.True(t, toggled.Active)
	authz.AssertExpectations(t)

	_, err = svc.ToggleActive(ctx, adminActor(), adminActor().UserID)
	assert.ErrorIs(t, err, domain.ErrCannotDeactivateSelf)

	_, err = svc.ToggleActive(ctx, adminActor(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor(), validRequest())
	require.NoError(t, err)
	id, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, adminActor(), id, domain.ChangePasswordRequest{Password: "nueva1", ConfirmPassword: "nueva2"})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)

	require.NoError(t, svc.ChangePassword(ctx, adminActor(), id, domain.ChangePasswordRequest{Password: "nueva1", ConfirmPassword: "nueva1"}))
	_, err = svc.Login(ctx, "rosa@corinto.org", "nueva1")
	require.NoError(t, err)

	require.NoError(t, svc.ChangePasswordByEmail(ctx, "rosa@corinto.org", domain.ChangePasswordRequest{Password: "otra123", ConfirmPassword: "otra123"}))
	_, err = svc.Login(ctx, "rosa@corinto.org", "otra123")
	require.NoError(t, err)

	err = svc.ChangePasswordByEmail(ctx, "ghost@corinto.org", domain.ChangePasswordRequest{Password: "otra123", ConfirmPassword: "otra123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	admin, created, err := svc.EnsureAdmin(ctx, "admin@corinto.org", "admin123")
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, "ADMIN", admin.Role)

	_, created, err = svc.EnsureAdmin(ctx, "other@corinto.org", "admin123")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
