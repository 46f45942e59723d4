package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Resolve loads the capability set of an active user.
	Resolve(ctx context.Context, userID snowflake.ID) (Actor, error)
	Catalog(ctx context.Context, actor Actor, userID snowflake.ID) (*CatalogResponse, error)
	ReplaceUserPermissions(ctx context.Context, actor Actor, userID snowflake.ID, codes []string) error
	// SeedRoleGrants installs DefaultRoleGrants for roles that have no policy yet.
	SeedRoleGrants(ctx context.Context) error
	Invalidate(userID snowflake.ID)
}

type CatalogResponse struct {
	UserID  string          `json:"user_id"`
	Role    Role            `json:"role"`
	Modules []CatalogModule `json:"modules"`
}

type CatalogModule struct {
	Module      string              `json:"module"`
	Permissions []CatalogPermission `json:"permissions"`
}

type CatalogPermission struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Granted is true for permissions assigned directly to the user.
	Granted bool `json:"granted"`
	// Inherited is true for permissions the user holds through their role.
	Inherited bool `json:"inherited"`
}
