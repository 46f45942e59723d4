package repository

import (
	"context"

	"github.com/railzwaylabs/waterworks/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.AuditLog, error) {
	query := db.WithContext(ctx).Model(&domain.AuditLog{}).
		Where("created_at >= ? AND created_at < ?", filter.From, filter.To)
	if len(filter.Actions) > 0 {
		query = query.Where("action IN ?", filter.Actions)
	}

	var logs []domain.AuditLog
	if err := query.Order("created_at ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
