package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/report/domain"
	"gorm.io/gorm"
)

const readingColumns = `
	SELECT rd.id, rd.customer_id, c.first_name, c.last_name, c.meter_number, s.name AS sector_name,
		rd.reading_date, rd.consumption_m3, rd.amount
	FROM readings rd
	JOIN customers c ON c.id = rd.customer_id
	JOIN sectors s ON s.id = c.sector_id`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Dashboard(ctx context.Context, db *gorm.DB) (*domain.DashboardRow, error) {
	var row domain.DashboardRow
	err := db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM customers WHERE active = ?) AS active_customers,
			(SELECT COUNT(*) FROM readings WHERE payment_status = ?) AS pending_invoices,
			(SELECT COALESCE(SUM(amount), 0) FROM readings WHERE payment_status = ?) AS pending_amount,
			(SELECT COUNT(*) FROM sectors) AS sectors`,
		true, readingdomain.StatusPending, readingdomain.StatusPending,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, from, until time.Time) ([]domain.PaymentRow, error) {
	var rows []domain.PaymentRow
	err := db.WithContext(ctx).Raw(`
		SELECT id, reading_id, amount_paid, paid_at
		FROM payments
		WHERE paid_at >= ? AND paid_at < ?
		ORDER BY paid_at DESC`,
		from, until,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListPendingReadings(ctx context.Context, db *gorm.DB) ([]domain.ReadingRow, error) {
	var rows []domain.ReadingRow
	err := db.WithContext(ctx).Raw(readingColumns+`
		WHERE rd.payment_status = ?
		ORDER BY rd.reading_date ASC, rd.id ASC`,
		readingdomain.StatusPending,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListReadings(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.ReadingRow, error) {
	var rows []domain.ReadingRow
	err := db.WithContext(ctx).Raw(readingColumns+`
		WHERE rd.reading_date >= ? AND rd.reading_date <= ?
		ORDER BY rd.reading_date ASC, rd.id ASC`,
		from, to,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.CustomerRow, error) {
	var row domain.CustomerRow
	err := db.WithContext(ctx).Raw(`
		SELECT c.id, c.first_name, c.last_name, c.phone, c.meter_number, c.active,
			c.sector_id, s.name AS sector_name, c.created_at
		FROM customers c
		JOIN sectors s ON s.id = c.sector_id
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

func (r *repo) CustomerReadings(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.HistoryRow, error) {
	var rows []domain.HistoryRow
	err := db.WithContext(ctx).Raw(`
		SELECT rd.id, rd.reading_date, rd.previous_reading, rd.current_reading, rd.consumption_m3,
			rd.amount, rd.payment_status,
			COALESCE(u.first_name, '') AS reader_first_name, COALESCE(u.last_name, '') AS reader_last_name
		FROM readings rd
		LEFT JOIN users u ON u.id = rd.reader_id
		WHERE rd.customer_id = ?
		ORDER BY rd.reading_date DESC, rd.id DESC`,
		customerID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) CustomerPayments(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.PaymentHistoryRow, error) {
	var rows []domain.PaymentHistoryRow
	err := db.WithContext(ctx).Raw(`
		SELECT p.id, p.paid_at, p.amount_paid, rd.id AS reading_id, rd.reading_date, rd.consumption_m3,
			COALESCE(u.first_name, '') AS receiver_first_name, COALESCE(u.last_name, '') AS receiver_last_name
		FROM payments p
		JOIN readings rd ON rd.id = p.reading_id
		LEFT JOIN users u ON u.id = p.receiver_id
		WHERE rd.customer_id = ?
		ORDER BY p.paid_at DESC, p.id DESC`,
		customerID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
