package bootstrap

import (
	"context"

	"github.com/railzwaylabs/waterworks/internal/config"
	authdomain "github.com/railzwaylabs/waterworks/internal/auth/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// EnsureDefaultAdmin creates the first administrator on an empty users
// table when BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD are set.
func EnsureDefaultAdmin(lc fx.Lifecycle, cfg config.Config, users authdomain.Service, log *zap.Logger) {
	if cfg.Bootstrap.AdminEmail == "" || cfg.Bootstrap.AdminPassword == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			resp, created, err := users.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				log.Info("default admin created", zap.String("user_id", resp.ID), zap.String("email", resp.Email))
			}
			return nil
		},
	})
}

// SeedRoleGrants installs the default grants of each role on first start.
func SeedRoleGrants(lc fx.Lifecycle, authz authzdomain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return authz.SeedRoleGrants(ctx)
		},
	})
}
