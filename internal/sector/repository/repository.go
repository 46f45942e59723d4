package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/sector/domain"
	"gorm.io/gorm"
)

const statusPending = "PENDING"

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sector *domain.Sector) error {
	return db.WithContext(ctx).Create(sector).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Sector, error) {
	var s domain.Sector
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, created_at FROM sectors WHERE id = ?`,
		id,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Sector, error) {
	var s domain.Sector
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, created_at FROM sectors WHERE LOWER(name) = LOWER(?)`,
		name,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) ListSummaries(ctx context.Context, db *gorm.DB) ([]domain.SummaryRow, error) {
	var rows []domain.SummaryRow
	err := db.WithContext(ctx).Raw(`
		SELECT s.id, s.name, s.description,
			(SELECT COUNT(*) FROM customers c
			 WHERE c.sector_id = s.id AND c.active = ?) AS active_customers,
			(SELECT COUNT(DISTINCT c.id) FROM customers c
			 JOIN readings rd ON rd.customer_id = c.id
			 WHERE c.sector_id = s.id AND c.active = ? AND rd.payment_status = ?) AS delinquent_customers
		FROM sectors s
		ORDER BY s.name ASC`,
		true, true, statusPending,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListCustomerDebts(ctx context.Context, db *gorm.DB, sectorID snowflake.ID) ([]domain.CustomerDebtRow, error) {
	var rows []domain.CustomerDebtRow
	err := db.WithContext(ctx).Raw(`
		SELECT c.id, c.first_name, c.last_name, c.meter_number, c.phone,
			COUNT(rd.id) AS pending_invoices,
			COALESCE(SUM(rd.amount), 0) AS pending_amount
		FROM customers c
		LEFT JOIN readings rd ON rd.customer_id = c.id AND rd.payment_status = ?
		WHERE c.sector_id = ? AND c.active = ?
		GROUP BY c.id, c.first_name, c.last_name, c.meter_number, c.phone
		ORDER BY c.last_name ASC, c.first_name ASC`,
		statusPending, sectorID, true,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Sector{}).Count(&count).Error
	return count, err
}
