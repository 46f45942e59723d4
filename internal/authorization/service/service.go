package service

import (
	"context"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/cockroachdb/errors"
	gocache "github.com/patrickmn/go-cache"
	"github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Config   config.Config
	Enforcer *casbin.SyncedEnforcer
	Repo     domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	repo     domain.Repository
	actors   *gocache.Cache
}

func New(p Params) domain.Service {
	ttl := p.Config.Authorization.CacheTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		repo:     p.Repo,
		actors:   gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) Resolve(ctx context.Context, userID snowflake.ID) (domain.Actor, error) {
	if userID == 0 {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	if cached, ok := s.actors.Get(userID.String()); ok {
		return cached.(domain.Actor), nil
	}

	principal, err := s.repo.FindPrincipal(ctx, s.db, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	if principal == nil {
		return domain.Actor{}, domain.ErrUserNotFound
	}
	if !principal.Active {
		return domain.Actor{}, domain.ErrUnauthenticated
	}

	active, err := s.activeCodes(ctx)
	if err != nil {
		return domain.Actor{}, err
	}

	role := domain.Role(principal.Role)
	var codes []string
	if role == domain.RoleAdmin {
		codes = lo.Keys(active)
	} else {
		fromRole, err := s.objectsFor(roleSubject(principal.Role))
		if err != nil {
			return domain.Actor{}, err
		}
		direct, err := s.objectsFor(userSubject(userID.String()))
		if err != nil {
			return domain.Actor{}, err
		}
		codes = lo.Filter(lo.Uniq(append(fromRole, direct...)), func(code string, _ int) bool {
			_, ok := active[code]
			return ok
		})
	}

	perms := lo.Map(codes, func(code string, _ int) domain.Permission {
		return domain.Permission(code)
	})
	name := strings.TrimSpace(principal.FirstName + " " + principal.LastName)
	actor := domain.NewActor(principal.ID, name, role, perms)
	s.actors.SetDefault(userID.String(), actor)
	return actor, nil
}

func (s *Service) Catalog(ctx context.Context, actor domain.Actor, userID snowflake.ID) (*domain.CatalogResponse, error) {
	if err := actor.Require(domain.PermPermissionsManage); err != nil {
		return nil, err
	}

	principal, err := s.repo.FindPrincipal(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if principal == nil {
		return nil, domain.ErrUserNotFound
	}

	records, err := s.repo.ListActivePermissions(ctx, s.db)
	if err != nil {
		return nil, err
	}

	direct, err := s.objectsFor(userSubject(userID.String()))
	if err != nil {
		return nil, err
	}
	fromRole, err := s.objectsFor(roleSubject(principal.Role))
	if err != nil {
		return nil, err
	}
	isAdmin := domain.Role(principal.Role) == domain.RoleAdmin

	grouped := lo.GroupBy(records, func(r domain.PermissionRecord) string { return r.Module })
	modules := lo.Keys(grouped)
	sort.Strings(modules)

	out := &domain.CatalogResponse{
		UserID:  userID.String(),
		Role:    domain.Role(principal.Role),
		Modules: make([]domain.CatalogModule, 0, len(modules)),
	}
	for _, module := range modules {
		entry := domain.CatalogModule{Module: module}
		for _, r := range grouped[module] {
			entry.Permissions = append(entry.Permissions, domain.CatalogPermission{
				Code:        r.Code,
				Name:        r.Name,
				Description: r.Description,
				Granted:     lo.Contains(direct, r.Code),
				Inherited:   isAdmin || lo.Contains(fromRole, r.Code),
			})
		}
		out.Modules = append(out.Modules, entry)
	}
	return out, nil
}

func (s *Service) ReplaceUserPermissions(ctx context.Context, actor domain.Actor, userID snowflake.ID, codes []string) error {
	if err := actor.Require(domain.PermPermissionsManage); err != nil {
		return err
	}

	principal, err := s.repo.FindPrincipal(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if principal == nil {
		return domain.ErrUserNotFound
	}

	active, err := s.activeCodes(ctx)
	if err != nil {
		return err
	}
	codes = lo.Uniq(lo.Map(codes, func(c string, _ int) string { return strings.TrimSpace(c) }))
	for _, code := range codes {
		if _, ok := active[code]; !ok {
			return errors.Wrapf(domain.ErrUnknownCode, "%s", code)
		}
	}

	subject := userSubject(userID.String())
	if _, err := s.enforcer.RemoveFilteredPolicy(0, subject); err != nil {
		return errors.Wrap(err, "remove user policies")
	}
	if len(codes) > 0 {
		rules := lo.Map(codes, func(code string, _ int) []string { return []string{subject, code} })
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return errors.Wrap(err, "add user policies")
		}
	}
	s.Invalidate(userID)

	s.log.Info("user permissions replaced",
		zap.String("user_id", userID.String()),
		zap.String("by", actor.UserID.String()),
		zap.Strings("codes", codes),
	)
	return nil
}

func (s *Service) SeedRoleGrants(ctx context.Context) error {
	grants := domain.DefaultRoleGrants()
	roles := lo.Keys(grants)
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	for _, role := range roles {
		subject := roleSubject(string(role))
		existing, err := s.objectsFor(subject)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		rules := lo.Map(grants[role], func(p domain.Permission, _ int) []string {
			return []string{subject, string(p)}
		})
		if _, err := s.enforcer.AddPolicies(rules); err != nil {
			return errors.Wrapf(err, "seed grants for %s", role)
		}
		s.log.Info("role grants seeded", zap.String("role", string(role)), zap.Int("count", len(rules)))
	}
	s.actors.Flush()
	return nil
}

func (s *Service) Invalidate(userID snowflake.ID) {
	s.actors.Delete(userID.String())
}

func (s *Service) objectsFor(subject string) ([]string, error) {
	rules, err := s.enforcer.GetPermissionsForUser(subject)
	if err != nil {
		return nil, errors.Wrapf(err, "policies for %s", subject)
	}
	return lo.FilterMap(rules, func(rule []string, _ int) (string, bool) {
		if len(rule) < 2 {
			return "", false
		}
		return rule[1], true
	}), nil
}

func (s *Service) activeCodes(ctx context.Context) (map[string]struct{}, error) {
	records, err := s.repo.ListActivePermissions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(records, func(r domain.PermissionRecord) (string, struct{}) {
		return r.Code, struct{}{}
	}), nil
}
