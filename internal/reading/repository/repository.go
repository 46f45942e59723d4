package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const rowSelect = `
	SELECT rd.id, rd.customer_id, c.first_name, c.last_name, c.meter_number, s.name AS sector_name,
		rd.reader_id, COALESCE(u.first_name, '') AS reader_first_name, COALESCE(u.last_name, '') AS reader_last_name,
		rd.reading_date, rd.previous_reading, rd.current_reading, rd.consumption_m3,
		rd.amount, rd.payment_status
	FROM readings rd
	JOIN customers c ON c.id = rd.customer_id
	JOIN sectors s ON s.id = c.sector_id
	LEFT JOIN users u ON u.id = rd.reader_id`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *domain.Reading) error {
	return db.WithContext(ctx).Create(reading).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindRow(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Row, error) {
	var row domain.Row
	err := db.WithContext(ctx).Raw(rowSelect+` WHERE rd.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, key string) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).Where("idempotency_key = ?", key).Limit(1).Find(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindLatestForCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("reading_date DESC, id DESC").
		Limit(1).
		Find(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindPrevious(ctx context.Context, db *gorm.DB, current *domain.Reading) (*domain.Reading, error) {
	var reading domain.Reading
	err := db.WithContext(ctx).
		Where("customer_id = ? AND (reading_date < ? OR (reading_date = ? AND id < ?))",
			current.CustomerID, current.ReadingDate, current.ReadingDate, current.ID).
		Order("reading_date DESC, id DESC").
		Limit(1).
		Find(&reading).Error
	if err != nil {
		return nil, err
	}
	if reading.ID == 0 {
		return nil, nil
	}
	return &reading, nil
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.CustomerState, error) {
	var state domain.CustomerState
	err := db.WithContext(ctx).Raw(
		`SELECT id, active FROM customers WHERE id = ?`,
		customerID,
	).Scan(&state).Error
	if err != nil {
		return nil, err
	}
	if state.ID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (r *repo) UpdatePending(ctx context.Context, db *gorm.DB, id snowflake.ID, date time.Time, current, consumption, amount decimal.Decimal, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE readings
		 SET reading_date = ?, current_reading = ?, consumption_m3 = ?, amount = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		date, current, consumption, amount, now, id, domain.StatusPending,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]domain.Row, error) {
	var rows []domain.Row
	err := db.WithContext(ctx).Raw(rowSelect+`
		ORDER BY rd.reading_date DESC, rd.id DESC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) ListPending(ctx context.Context, db *gorm.DB) ([]domain.Row, error) {
	var rows []domain.Row
	err := db.WithContext(ctx).Raw(rowSelect+`
		WHERE rd.payment_status = ?
		ORDER BY rd.reading_date ASC, rd.id ASC`, domain.StatusPending).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
