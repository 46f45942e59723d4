package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Principal is the part of a user row authorization needs.
type Principal struct {
	ID        snowflake.ID `gorm:"column:id"`
	FirstName string       `gorm:"column:first_name"`
	LastName  string       `gorm:"column:last_name"`
	Role      string       `gorm:"column:role"`
	Active    bool         `gorm:"column:active"`
}

type Repository interface {
	FindPrincipal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Principal, error)
	ListActivePermissions(ctx context.Context, db *gorm.DB) ([]PermissionRecord, error)
}
