package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	List(ctx context.Context, db *gorm.DB) ([]*User, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error
	UpdatePassword(ctx context.Context, db *gorm.DB, id snowflake.ID, hash string) error
}
