package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/railzwaylabs/waterworks/internal/auth/domain"
	"github.com/railzwaylabs/waterworks/internal/auth/password"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Authz authzdomain.Service `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	authz authzdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		repo:  p.Repo,
		authz: p.Authz,
	}
}

func (s *Service) Login(ctx context.Context, email, raw string) (*domain.Response, error) {
	user, err := s.repo.FindByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(user.PasswordHash, raw) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return nil, domain.ErrUserInactive
	}
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, actor authzdomain.Actor, req domain.CreateRequest) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermUsersManage); err != nil {
		return nil, err
	}
	resp, err := s.create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info("user created",
		zap.String("user_id", resp.ID),
		zap.String("role", resp.Role),
		zap.String("by", actor.UserID.String()),
	)
	return resp, nil
}

func (s *Service) CreateFromCLI(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := normalizeEmail(req.Email)
	role := strings.ToUpper(strings.TrimSpace(req.Role))

	switch {
	case firstName == "":
		return nil, domain.ErrInvalidFirstName
	case lastName == "":
		return nil, domain.ErrInvalidLastName
	case !validEmail(email):
		return nil, domain.ErrInvalidEmail
	case !authzdomain.Role(role).Valid():
		return nil, domain.ErrInvalidRole
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           s.genID.Generate(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		return nil, err
	}

	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, actor authzdomain.Actor) ([]domain.Response, error) {
	if err := actor.Require(authzdomain.PermUsersManage); err != nil {
		return nil, err
	}
	return s.ListAll(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Response, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return out, nil
}

func (s *Service) ToggleActive(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*domain.Response, error) {
	if err := actor.Require(authzdomain.PermUsersManage); err != nil {
		return nil, err
	}
	if id == actor.UserID {
		return nil, domain.ErrCannotDeactivateSelf
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	user.Active = !user.Active
	if err := s.repo.UpdateActive(ctx, s.db, id, user.Active); err != nil {
		return nil, err
	}
	if s.authz != nil {
		s.authz.Invalidate(id)
	}

	s.log.Info("user active flag changed",
		zap.String("user_id", id.String()),
		zap.Bool("active", user.Active),
		zap.String("by", actor.UserID.String()),
	)
	resp := toResponse(user)
	return &resp, nil
}

func (s *Service) ChangePassword(ctx context.Context, actor authzdomain.Actor, id snowflake.ID, req domain.ChangePasswordRequest) error {
	if err := actor.Require(authzdomain.PermUsersManage); err != nil {
		return err
	}
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return s.setPassword(ctx, user, req)
}

func (s *Service) ChangePasswordByEmail(ctx context.Context, email string, req domain.ChangePasswordRequest) error {
	user, err := s.repo.FindByEmail(ctx, s.db, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return s.setPassword(ctx, user, req)
}

func (s *Service) setPassword(ctx context.Context, user *domain.User, req domain.ChangePasswordRequest) error {
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	hashed, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, s.db, user.ID, hashed); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *Service) EnsureAdmin(ctx context.Context, email, raw string) (*domain.Response, bool, error) {
	count, err := s.repo.Count(ctx, s.db)
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, false, nil
	}
	resp, err := s.create(ctx, domain.CreateRequest{
		FirstName:       "Administrador",
		LastName:        "General",
		Email:           email,
		Password:        raw,
		ConfirmPassword: raw,
		Role:            string(authzdomain.RoleAdmin),
	})
	if err != nil {
		return nil, false, err
	}
	return resp, true, nil
}

func validatePassword(raw, confirm string) error {
	if len(raw) < password.MinLength {
		return domain.ErrPasswordTooShort
	}
	if raw != confirm {
		return domain.ErrPasswordMismatch
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func toResponse(u *domain.User) domain.Response {
	return domain.Response{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
