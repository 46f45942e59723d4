package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/customer/domain"
	"github.com/railzwaylabs/waterworks/pkg/db/pagination"
	"gorm.io/gorm"
)

const rowColumns = `c.id, c.first_name, c.last_name, c.sector_id, s.name AS sector_name,
	c.phone, c.meter_number, c.active, c.created_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Row, error) {
	var row domain.Row
	err := db.WithContext(ctx).Raw(
		`SELECT `+rowColumns+`
		 FROM customers c JOIN sectors s ON s.id = c.sector_id
		 WHERE c.id = ?`,
		id,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindByMeterNumber(ctx context.Context, db *gorm.DB, meterNumber string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).Where("meter_number = ?", meterNumber).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).Where("idempotency_key = ?", key).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Row, error) {
	query := db.WithContext(ctx).
		Table("customers c").
		Select(rowColumns).
		Joins("JOIN sectors s ON s.id = c.sector_id")
	if filter.ActiveOnly {
		query = query.Where("c.active = ?", true)
	}
	if filter.OrderByName {
		query = query.Order("c.last_name ASC, c.first_name ASC")
	} else {
		query = query.Order("c.id DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []domain.Row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListPage(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]domain.Row, error) {
	scope, err := pagination.Scope(page, "c.id")
	if err != nil {
		return nil, err
	}

	var rows []domain.Row
	err = db.WithContext(ctx).
		Table("customers c").
		Select(rowColumns).
		Joins("JOIN sectors s ON s.id = c.sector_id").
		Where("c.active = ?", true).
		Scopes(scope).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Search matches first name, last name, meter number or "first last",
// case-insensitively, among active customers.
func (r *repo) Search(ctx context.Context, db *gorm.DB, query string, limit int) ([]domain.SearchRow, error) {
	like := "%" + strings.ToLower(query) + "%"
	fullName := fullNameExpr(db)

	var rows []domain.SearchRow
	err := db.WithContext(ctx).Raw(`
		SELECT `+rowColumns+`,
			COALESCE((
				SELECT rd.current_reading FROM readings rd
				WHERE rd.customer_id = c.id
				ORDER BY rd.reading_date DESC, rd.id DESC
				LIMIT 1
			), 0) AS last_reading
		FROM customers c JOIN sectors s ON s.id = c.sector_id
		WHERE c.active = ?
		  AND (LOWER(c.first_name) LIKE ?
		    OR LOWER(c.last_name) LIKE ?
		    OR LOWER(c.meter_number) LIKE ?
		    OR LOWER(`+fullName+`) LIKE ?)
		ORDER BY c.last_name ASC, c.first_name ASC
		LIMIT ?`,
		true, like, like, like, like, limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) SectorExists(ctx context.Context, db *gorm.DB, sectorID snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Table("sectors").Where("id = ?", sectorID).Count(&count).Error
	return count > 0, err
}

func (r *repo) UpdateActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id,
	).Error
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Where("active = ?", true).Count(&count).Error
	return count, err
}

// fullNameExpr concatenates first and last name in the connection's dialect.
func fullNameExpr(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "CONCAT(c.first_name, ' ', c.last_name)"
	}
	return "(c.first_name || ' ' || c.last_name)"
}
