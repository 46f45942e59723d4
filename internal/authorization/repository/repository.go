package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindPrincipal(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.Principal, error) {
	var p domain.Principal
	err := db.WithContext(ctx).Raw(
		`SELECT id, first_name, last_name, role, active FROM users WHERE id = ?`,
		userID,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) ListActivePermissions(ctx context.Context, db *gorm.DB) ([]domain.PermissionRecord, error) {
	var items []domain.PermissionRecord
	err := db.WithContext(ctx).
		Where("active = ?", true).
		Order("module ASC, name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
