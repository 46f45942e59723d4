package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
)

type createUserRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

type changePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type replacePermissionsRequest struct {
	Codes []string `json:"codes"`
}

// @Summary      List Users
// @Tags         users
// @Produce      json
// @Success      200  {object}  ListResponse
// @Router       /users [get]
func (s *Server) ListUsers(c *gin.Context) {
	items, err := s.authSvc.List(c.Request.Context(), actorFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondList(c, items, nil)
}

// @Summary      Create User
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body createUserRequest true "Create User Request"
// @Success      201  {object}  DataResponse
// @Router       /users [post]
func (s *Server) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authSvc.Create(c.Request.Context(), actorFrom(c), authdomain.CreateRequest{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            strings.ToUpper(strings.TrimSpace(req.Role)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "user.create", "user", resp.ID, map[string]any{
		"email": resp.Email,
		"role":  resp.Role,
	})

	respondCreated(c, resp)
}

// @Summary      Toggle User
// @Description  Activate or deactivate a user. Users cannot deactivate themselves.
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  DataResponse
// @Router       /users/{id}/toggle [post]
func (s *Server) ToggleUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := s.authSvc.ToggleActive(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "user.toggle", "user", resp.ID, map[string]any{"active": resp.Active})

	respondData(c, resp)
}

// @Summary      Change User Password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Param        request  body  changePasswordRequest  true  "New password"
// @Success      200  {object}  DataResponse
// @Router       /users/{id}/password [put]
func (s *Server) ChangeUserPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.ChangePassword(c.Request.Context(), actorFrom(c), id, authdomain.ChangePasswordRequest{
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "user.password_change", "user", id.String(), nil)

	respondData(c, gin.H{"updated": true})
}

// @Summary      User Permissions
// @Description  Permission catalog grouped by module, flagging the user's direct and role grants
// @Tags         permissions
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  DataResponse
// @Router       /users/{id}/permissions [get]
func (s *Server) GetUserPermissions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := s.authzSvc.Catalog(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}

// @Summary      Replace User Permissions
// @Description  Replace the permissions granted directly to a user
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Param        request  body  replacePermissionsRequest  true  "Permission codes"
// @Success      200  {object}  DataResponse
// @Router       /users/{id}/permissions [put]
func (s *Server) ReplaceUserPermissions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req replacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	actor := actorFrom(c)
	if err := s.authzSvc.ReplaceUserPermissions(ctx, actor, id, req.Codes); err != nil {
		AbortWithError(c, err)
		return
	}

	s.audit(c, "permissions.replace", "user", id.String(), map[string]any{"codes": req.Codes})

	resp, err := s.authzSvc.Catalog(ctx, actor, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondData(c, resp)
}
