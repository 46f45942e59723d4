package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/waterworks/internal/payment/domain"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	"gorm.io/gorm"
)

const readingSelect = `
	SELECT rd.id, rd.customer_id, c.first_name, c.last_name, c.meter_number, s.name AS sector_name,
		rd.reading_date, rd.previous_reading, rd.current_reading, rd.consumption_m3,
		rd.amount, rd.payment_status`

const readingFrom = `
	FROM readings rd
	JOIN customers c ON c.id = rd.customer_id
	JOIN sectors s ON s.id = c.sector_id`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, reading_id, amount_paid, receiver_id, paid_at)
		 VALUES (?, ?, ?, ?, ?)`,
		payment.ID,
		payment.ReadingID,
		payment.AmountPaid,
		payment.ReceiverID,
		payment.PaidAt,
	).Error
}

func (r *repo) FindReading(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*domain.ReadingRow, error) {
	var row domain.ReadingRow
	err := db.WithContext(ctx).Raw(readingSelect+readingFrom+` WHERE rd.id = ?`, readingID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, readingID snowflake.ID, at time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE readings SET payment_status = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		readingdomain.StatusPaid, at, readingID, readingdomain.StatusPending,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) FindLatestReceipt(ctx context.Context, db *gorm.DB, readingID snowflake.ID) (*domain.ReceiptRow, error) {
	var row domain.ReceiptRow
	err := db.WithContext(ctx).Raw(readingSelect+`,
		p.id AS payment_id, p.amount_paid, p.paid_at`+readingFrom+`
	JOIN payments p ON p.reading_id = rd.id
	WHERE rd.id = ?
	ORDER BY p.paid_at DESC, p.id DESC
	LIMIT 1`, readingID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.PaymentID == 0 {
		return nil, nil
	}
	return &row, nil
}
