package server

import (
	"context"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/bootstrap"
	"github.com/railzwaylabs/waterworks/internal/config"
	customerdomain "github.com/railzwaylabs/waterworks/internal/customer/domain"
	paymentdomain "github.com/railzwaylabs/waterworks/internal/payment/domain"
	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	reportdomain "github.com/railzwaylabs/waterworks/internal/report/domain"
	sectordomain "github.com/railzwaylabs/waterworks/internal/sector/domain"
	"github.com/railzwaylabs/waterworks/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RegisterHTTPServer),
)

type Params struct {
	fx.In

	Config         config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	Sessions       session.Store
	AuthSvc        authdomain.Service
	AuthzSvc       authzdomain.Service
	AuditSvc       auditdomain.Service `optional:"true"`
	AuditExportSvc auditdomain.ExportService
	CustomerSvc    customerdomain.Service
	SectorSvc      sectordomain.Service
	ReadingSvc     readingdomain.Service
	PaymentSvc     paymentdomain.Service
	ReportSvc      reportdomain.Service
	Renderer       *pdf.Renderer
	SchemaGate     bootstrap.SchemaGate `optional:"true"`
}

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	engine   *gin.Engine
	sessions session.Store

	authSvc        authdomain.Service
	authzSvc       authzdomain.Service
	auditSvc       auditdomain.Service
	auditExportSvc auditdomain.ExportService
	customerSvc    customerdomain.Service
	sectorSvc      sectordomain.Service
	readingSvc     readingdomain.Service
	paymentSvc     paymentdomain.Service
	reportSvc      reportdomain.Service
	renderer       *pdf.Renderer
	schemaGate     bootstrap.SchemaGate
}

func NewServer(p Params) *Server {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:            p.Config,
		log:            p.Log.Named("server"),
		db:             p.DB,
		sessions:       p.Sessions,
		authSvc:        p.AuthSvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		auditExportSvc: p.AuditExportSvc,
		customerSvc:    p.CustomerSvc,
		sectorSvc:      p.SectorSvc,
		readingSvc:     p.ReadingSvc,
		paymentSvc:     p.PaymentSvc,
		reportSvc:      p.ReportSvc,
		renderer:       p.Renderer,
		schemaGate:     p.SchemaGate,
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), RequestID(), Metrics(), RequestLogger(s.log), AuditContext())
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	r := s.engine
	r.NoRoute(func(c *gin.Context) { AbortWithError(c, ErrNotFound) })

	r.GET("/healthz", s.Health)
	r.GET("/readyz", s.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.POST("/auth/login", s.Login)

	authed := api.Group("", s.RequireSession())
	authed.POST("/auth/logout", s.Logout)
	authed.GET("/auth/me", s.Me)

	authed.GET("/dashboard", s.Dashboard)

	authed.POST("/customers", s.RegisterCustomer)
	authed.GET("/customers", s.ListCustomers)
	authed.GET("/customers/recent", s.ListRecentCustomers)
	authed.GET("/customers/active", s.ListActiveCustomers)
	authed.GET("/customers/search", s.SearchCustomers)
	authed.GET("/customers/:id", s.GetCustomer)
	authed.POST("/customers/:id/deactivate", s.DeactivateCustomer)

	authed.POST("/readings", s.RecordReading)
	authed.POST("/readings/preview", s.PreviewReading)
	authed.GET("/readings/recent", s.ListRecentReadings)
	authed.GET("/readings/pending", s.ListPendingReadings)
	authed.GET("/readings/:id", s.GetReading)
	authed.PATCH("/readings/:id", s.EditReading)

	authed.POST("/readings/:id/payment", s.RecordPayment)
	authed.GET("/readings/:id/receipt", s.PrintReceipt)

	authed.GET("/sectors", s.ListSectors)
	authed.POST("/sectors", s.CreateSector)
	authed.GET("/sectors/:id", s.GetSector)

	authed.GET("/reports/income", s.IncomeReport)
	authed.GET("/reports/debtors", s.DebtorsReport)
	authed.GET("/reports/consumption", s.ConsumptionReport)
	authed.GET("/reports/customers/:id", s.CustomerReport)

	authed.GET("/users", s.ListUsers)
	authed.POST("/users", s.CreateUser)
	authed.POST("/users/:id/toggle", s.ToggleUser)
	authed.PUT("/users/:id/password", s.ChangeUserPassword)
	authed.GET("/users/:id/permissions", s.GetUserPermissions)
	authed.PUT("/users/:id/permissions", s.ReplaceUserPermissions)

	authed.GET("/audit/export", s.ExportAuditLogs)
}

// RegisterHTTPServer binds the listener on start so that a taken port
// fails the fx start instead of a background goroutine.
func RegisterHTTPServer(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrapf(err, "listen %s", srv.Addr)
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if s.cfg.HTTP.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
				defer cancel()
			}
			return srv.Shutdown(ctx)
		},
	})
}
