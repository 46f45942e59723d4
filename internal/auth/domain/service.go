package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*Response, error)
	Create(ctx context.Context, actor authzdomain.Actor, req CreateRequest) (*Response, error)
	List(ctx context.Context, actor authzdomain.Actor) ([]Response, error)
	ToggleActive(ctx context.Context, actor authzdomain.Actor, id snowflake.ID) (*Response, error)
	ChangePassword(ctx context.Context, actor authzdomain.Actor, id snowflake.ID, req ChangePasswordRequest) error

	// Administrative entry points used by the CLI and bootstrap. They run
	// without an actor.
	CreateFromCLI(ctx context.Context, req CreateRequest) (*Response, error)
	ListAll(ctx context.Context) ([]Response, error)
	ChangePasswordByEmail(ctx context.Context, email string, req ChangePasswordRequest) error
	// EnsureAdmin creates an ADMIN account unless any user exists.
	EnsureAdmin(ctx context.Context, email, password string) (*Response, bool, error)
}

type CreateRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type Response struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
