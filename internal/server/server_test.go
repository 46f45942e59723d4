package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/config"
	paymentdomain "github.com/railzwaylabs/waterworks/internal/payment/domain"
	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	reportdomain "github.com/railzwaylabs/waterworks/internal/report/domain"
	"github.com/railzwaylabs/waterworks/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cookieName = "ww_session"

type mockAuth struct {
	mock.Mock
	authdomain.Service
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (*authdomain.Response, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*authdomain.Response)
	return resp, args.Error(1)
}

type mockAuthz struct {
	mock.Mock
	authzdomain.Service
}

func (m *mockAuthz) Resolve(ctx context.Context, userID snowflake.ID) (authzdomain.Actor, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(authzdomain.Actor), args.Error(1)
}

type mockPayments struct {
	mock.Mock
	paymentdomain.Service
}

func (m *mockPayments) Record(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*paymentdomain.Confirmation, error) {
	args := m.Called(ctx, actor, readingID)
	resp, _ := args.Get(0).(*paymentdomain.Confirmation)
	return resp, args.Error(1)
}

func (m *mockPayments) Receipt(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*paymentdomain.Receipt, error) {
	args := m.Called(ctx, actor, readingID)
	resp, _ := args.Get(0).(*paymentdomain.Receipt)
	return resp, args.Error(1)
}

type mockReadings struct {
	mock.Mock
	readingdomain.Service
}

func (m *mockReadings) Record(ctx context.Context, actor authzdomain.Actor, req readingdomain.RecordRequest) (*readingdomain.Response, error) {
	args := m.Called(ctx, actor, req)
	resp, _ := args.Get(0).(*readingdomain.Response)
	return resp, args.Error(1)
}

type mockReports struct {
	mock.Mock
	reportdomain.Service
}

func (m *mockReports) Debtors(ctx context.Context, actor authzdomain.Actor) (*reportdomain.DebtorReport, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*reportdomain.DebtorReport)
	return resp, args.Error(1)
}

type fixture struct {
	server   *Server
	sessions session.Store
	auth     *mockAuth
	authz    *mockAuthz
	payments *mockPayments
	readings *mockReadings
	reports  *mockReports
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppName: "waterworks",
		Session: config.SessionConfig{CookieName: cookieName, TTL: time.Hour},
		Committee: config.CommitteeConfig{
			Name:           "COMITE DE AGUA POTABLE CORINTO S.L",
			CurrencySymbol: "Q",
		},
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		sessions: session.NewRedisStore(client, cfg),
		auth:     &mockAuth{},
		authz:    &mockAuthz{},
		payments: &mockPayments{},
		readings: &mockReadings{},
		reports:  &mockReports{},
	}
	f.server = NewServer(Params{
		Config:     cfg,
		Log:        zap.NewNop(),
		Sessions:   f.sessions,
		AuthSvc:    f.auth,
		AuthzSvc:   f.authz,
		PaymentSvc: f.payments,
		ReadingSvc: f.readings,
		ReportSvc:  f.reports,
		Renderer:   pdf.NewRenderer(cfg, zap.NewNop()),
	})
	return f
}

// login stores a session for the actor and returns its token.
func (f *fixture) login(t *testing.T, actor authzdomain.Actor) string {
	t.Helper()
	sess, err := f.sessions.Create(context.Background(), actor.UserID)
	require.NoError(t, err)
	f.authz.On("Resolve", mock.Anything, actor.UserID).Return(actor, nil)
	return sess.Token
}

func (f *fixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func treasurer() authzdomain.Actor {
	return authzdomain.NewActor(snowflake.ID(7), "Ana Lopez", authzdomain.RoleTreasurer, authzdomain.DefaultRoleGrants()[authzdomain.RoleTreasurer])
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t)

	t.Run("missing cookie", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", errorCode(t, rec))
	})

	t.Run("unknown token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/auth/me", "9d1c54a4-6a43-4f59-9a59-5b0a3f3f2d10", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session resolves the actor", func(t *testing.T) {
		token := f.login(t, treasurer())

		rec := f.do(http.MethodGet, "/api/v1/auth/me", token, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data meResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "7", body.Data.ID)
		assert.Equal(t, authzdomain.RoleTreasurer, body.Data.Role)
		assert.Contains(t, body.Data.Permissions, authzdomain.PermPaymentsRecord)
	})

	t.Run("bearer header", func(t *testing.T) {
		token := f.login(t, treasurer())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.server.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Login", mock.Anything, "ana@corinto.org", "secreto").
		Return(&authdomain.Response{ID: "7", FirstName: "Ana", LastName: "Lopez", Role: "TREASURER", Active: true}, nil)
	f.authz.On("Resolve", mock.Anything, snowflake.ID(7)).Return(treasurer(), nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"ana@corinto.org","password":"secreto"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			token = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/v1/auth/me", token, "").Code)

	rec = f.do(http.MethodPost, "/api/v1/auth/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/v1/auth/me", token, "").Code)
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t)
	f.auth.On("Login", mock.Anything, "ana@corinto.org", "wrong").Return(nil, authdomain.ErrInvalidCredentials)

	rec := f.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"ana@corinto.org","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", errorCode(t, rec))

	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	actor := treasurer()
	token := f.login(t, actor)

	f.payments.On("Record", mock.Anything, actor, snowflake.ID(42)).
		Return(&paymentdomain.Confirmation{PaymentID: "99", ReadingID: "42", Amount: decimal.RequireFromString("70.00")}, nil).Once()
	f.payments.On("Record", mock.Anything, actor, snowflake.ID(42)).
		Return(nil, errors.Wrap(paymentdomain.ErrAlreadyPaid, "record payment")).Once()

	rec := f.do(http.MethodPost, "/api/v1/readings/42/payment", token, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_id":"99"`)

	rec = f.do(http.MethodPost, "/api/v1/readings/42/payment", token, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "reading_already_paid", errorCode(t, rec))

	rec = f.do(http.MethodPost, "/api/v1/readings/abc/payment", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_id", errorCode(t, rec))
}

func TestPrintReceipt(t *testing.T) {
	f := newFixture(t)
	actor := treasurer()
	token := f.login(t, actor)

	paidAt := time.Date(2026, 10, 5, 14, 0, 0, 0, time.UTC)
	f.payments.On("Receipt", mock.Anything, actor, snowflake.ID(42)).Return(&paymentdomain.Receipt{
		ReadingID:       "42",
		CustomerName:    "Juan Perez",
		MeterNumber:     "M-001",
		PreviousReading: decimal.NewFromInt(100),
		CurrentReading:  decimal.NewFromInt(130),
		ConsumptionM3:   decimal.NewFromInt(30),
		Amount:          decimal.RequireFromString("70.00"),
		AmountPaid:      decimal.RequireFromString("70.00"),
		PaidAt:          paidAt,
	}, nil)
	f.payments.On("Receipt", mock.Anything, actor, snowflake.ID(43)).Return(nil, paymentdomain.ErrNoPayment)

	rec := f.do(http.MethodGet, "/api/v1/readings/42/receipt", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="Recibo_M-001_2026-10-05.pdf"`)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = f.do(http.MethodGet, "/api/v1/readings/43/receipt", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "payment_not_found", errorCode(t, rec))
}

func TestRecordReading_PassesIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	actor := treasurer()
	token := f.login(t, actor)

	f.readings.On("Record", mock.Anything, actor, readingdomain.RecordRequest{
		CustomerID:     "11",
		ReadingDate:    "2026-10-19",
		CurrentReading: "12,5",
		IdempotencyKey: "form-1",
	}).Return(&readingdomain.Response{ID: "5", CustomerID: "11", Amount: decimal.RequireFromString("25.00")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings",
		strings.NewReader(`{"customer_id":"11","reading_date":"2026-10-19","current_reading":"12,5"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", " form-1 ")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	f.readings.AssertExpectations(t)
}

func TestDebtorsReport_PDF(t *testing.T) {
	f := newFixture(t)
	actor := treasurer()
	token := f.login(t, actor)

	report := &reportdomain.DebtorReport{
		Debtors: []reportdomain.Debtor{{
			FirstName: "Juan", LastName: "Perez", MeterNumber: "M-001", SectorName: "Centro",
			PendingInvoices: 2, TotalDebt: decimal.RequireFromString("90.00"), OldestReading: "2026-09-19",
		}},
		TotalDebt:   decimal.RequireFromString("90.00"),
		GeneratedAt: time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC),
	}
	f.reports.On("Debtors", mock.Anything, actor).Return(report, nil)

	rec := f.do(http.MethodGet, "/api/v1/reports/debtors", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_debt":"90"`)

	rec = f.do(http.MethodGet, "/api/v1/reports/debtors?format=pdf", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "reporte-de-clientes-morosos_2026-10-19.pdf")
}

func TestAuditExport_RequiresPermission(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, treasurer())

	rec := f.do(http.MethodGet, "/api/v1/audit/export?start_date=2026-10-01&end_date=2026-10-19", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

func TestAbortWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
		{"validation", newValidationError("from", "invalid_period", "bad period"), http.StatusBadRequest, "invalid_period"},
		{"wrapped forbidden", errors.Wrapf(authzdomain.ErrForbidden, "missing %s", authzdomain.PermReportsView), http.StatusForbidden, "forbidden"},
		{"not pending", readingdomain.ErrNotPending, http.StatusConflict, "reading_not_pending"},
		{"not latest", readingdomain.ErrNotLatest, http.StatusConflict, "reading_not_latest"},
		{"invalid period", reportdomain.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			AbortWithError(c, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, errorCode(t, rec))
			assert.True(t, c.IsAborted())
		})
	}
}

func TestMiddleware_RequestIDAndMetrics(t *testing.T) {
	f := newFixture(t)
	counter := httpRequestsTotal.WithLabelValues("/healthz", http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	rec := f.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, rec.Header().Get(headerRequestID), 26)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))

	rec = f.do(http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))
}
