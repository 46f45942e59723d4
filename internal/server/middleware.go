package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/session"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID    = "request_id"
	ctxActor        = "actor"
	ctxSessionToken = "session_token"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waterworks_http_requests_total",
			Help: "Total number of HTTP requests served.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waterworks_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RequestID keeps an incoming X-Request-ID or assigns a new ULID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDurationSeconds.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(ctxRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(fields, zap.Error(c.Errors.Last().Err))...)
			return
		}
		log.Debug("request", fields...)
	}
}

// AuditContext exposes the caller's address to audit writes.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auditdomain.WithRequestInfo(c.Request.Context(), auditdomain.RequestInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession resolves the session token into an Actor. The token is
// read from the session cookie, or from a Bearer header for scripted
// clients.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := s.sessionToken(c)
		if token == "" {
			AbortWithError(c, authzdomain.ErrUnauthenticated)
			return
		}

		ctx := c.Request.Context()
		sess, err := s.sessions.Get(ctx, token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				AbortWithError(c, authzdomain.ErrUnauthenticated)
				return
			}
			AbortWithError(c, err)
			return
		}

		actor, err := s.authzSvc.Resolve(ctx, sess.UserID)
		if err != nil {
			if errors.Is(err, authzdomain.ErrUserNotFound) {
				AbortWithError(c, authzdomain.ErrUnauthenticated)
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(ctxSessionToken, token)
		c.Set(ctxActor, actor)
		c.Next()
	}
}

func (s *Server) sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(s.cfg.Session.CookieName); err == nil && cookie != "" {
		return cookie
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// actorFrom returns the zero Actor outside RequireSession, which every
// service rejects as unauthenticated.
func actorFrom(c *gin.Context) authzdomain.Actor {
	if v, ok := c.Get(ctxActor); ok {
		if actor, ok := v.(authzdomain.Actor); ok {
			return actor
		}
	}
	return authzdomain.Actor{}
}

func actorAuditID(actor authzdomain.Actor) *string {
	id := actor.UserID.String()
	return &id
}

// audit records an action taken by the request's actor. Failures are
// logged by the audit service and never fail the request.
func (s *Server) audit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	actor := actorFrom(c)
	_ = s.auditSvc.AuditLog(c.Request.Context(), auditdomain.ActorTypeUser, actorAuditID(actor), action, targetType, &targetID, metadata)
}
