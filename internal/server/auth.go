package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User  *authdomain.Response `json:"user"`
	Token string               `json:"token"`
}

type meResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Role        authzdomain.Role         `json:"role"`
	Permissions []authzdomain.Permission `json:"permissions"`
}

// @Summary      Login
// @Description  Exchange email and password for a session cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Credentials"
// @Success      200  {object}  DataResponse
// @Router       /auth/login [post]
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		AbortWithError(c, newValidationError("email", "missing_credentials", "email and password are required"))
		return
	}

	ctx := c.Request.Context()
	user, err := s.authSvc.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.log.Info("login rejected", zap.String("email", strings.ToLower(strings.TrimSpace(req.Email))), zap.Error(err))
		AbortWithError(c, err)
		return
	}

	userID, err := snowflake.ParseString(user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	sess, err := s.sessions.Create(ctx, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, sess.Token, int(s.cfg.Session.TTL.Seconds()), "/", "", s.cfg.Session.Secure, true)

	if s.auditSvc != nil {
		_ = s.auditSvc.AuditLog(ctx, auditdomain.ActorTypeUser, &user.ID, "auth.login", "user", &user.ID, nil)
	}

	respondData(c, loginResponse{User: user, Token: sess.Token})
}

// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  DataResponse
// @Router       /auth/logout [post]
func (s *Server) Logout(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.GetString(ctxSessionToken)); err != nil {
		AbortWithError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.Session.CookieName, "", -1, "/", "", s.cfg.Session.Secure, true)
	respondData(c, gin.H{"logged_out": true})
}

// @Summary      Current user
// @Description  The authenticated user with the capability set resolved for this request
// @Tags         auth
// @Produce      json
// @Success      200  {object}  DataResponse
// @Router       /auth/me [get]
func (s *Server) Me(c *gin.Context) {
	actor := actorFrom(c)
	respondData(c, meResponse{
		ID:          actor.UserID.String(),
		Name:        actor.Name,
		Role:        actor.Role,
		Permissions: actor.Permissions(),
	})
}
