package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
	auditdomain "github.com/railzwaylabs/waterworks/internal/audit/domain"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"github.com/railzwaylabs/waterworks/internal/clock"
	"github.com/railzwaylabs/waterworks/internal/payment/domain"
	readingdomain "github.com/railzwaylabs/waterworks/internal/reading/domain"
	"github.com/railzwaylabs/waterworks/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	auditSvc auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
	}
}

func (s *Service) Record(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*domain.Confirmation, error) {
	if err := actor.Require(authzdomain.PermPaymentsRecord); err != nil {
		return nil, err
	}
	if readingID == 0 {
		return nil, domain.ErrReadingNotFound
	}

	var (
		reading *domain.ReadingRow
		payment *domain.Payment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now(ctx)

		// The conditional flip is the only guard against paying the same
		// reading twice; whoever loses the race sees zero affected rows.
		affected, err := s.repo.MarkPaid(ctx, tx, readingID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			existing, err := s.repo.FindReading(ctx, tx, readingID)
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrReadingNotFound
			}
			return domain.ErrAlreadyPaid
		}

		reading, err = s.repo.FindReading(ctx, tx, readingID)
		if err != nil {
			return err
		}
		if reading == nil {
			return domain.ErrReadingNotFound
		}

		payment = &domain.Payment{
			ID:         s.genID.Generate(),
			ReadingID:  readingID,
			AmountPaid: reading.Amount.Round(tariff.AmountPlaces),
			ReceiverID: actor.UserID,
			PaidAt:     now,
		}
		if err := s.repo.Insert(ctx, tx, payment); err != nil {
			return err
		}
		return s.audit(ctx, tx, actor, reading, payment)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyPaid) || errors.Is(err, domain.ErrReadingNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "record payment")
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reading_id", readingID.String()),
		zap.String("amount", payment.AmountPaid.StringFixed(tariff.AmountPlaces)),
		zap.String("receiver_id", actor.UserID.String()),
	)

	return &domain.Confirmation{
		PaymentID:       payment.ID.String(),
		ReadingID:       readingID.String(),
		CustomerName:    reading.FirstName + " " + reading.LastName,
		MeterNumber:     reading.MeterNumber,
		ReadingDate:     reading.ReadingDate.Format(readingdomain.DateLayout),
		PreviousReading: reading.PreviousReading,
		CurrentReading:  reading.CurrentReading,
		ConsumptionM3:   reading.ConsumptionM3,
		Amount:          payment.AmountPaid,
		PaidAt:          payment.PaidAt,
	}, nil
}

// audit writes the payment event through tx; a failed write undoes the payment.
func (s *Service) audit(ctx context.Context, tx *gorm.DB, actor authzdomain.Actor, reading *domain.ReadingRow, payment *domain.Payment) error {
	if s.auditSvc == nil {
		return nil
	}
	actorID := actor.UserID.String()
	targetID := payment.ReadingID.String()
	return s.auditSvc.WithTx(tx).AuditLog(ctx, auditdomain.ActorTypeUser, &actorID, "payment.record", "reading", &targetID, map[string]any{
		"payment_id":   payment.ID.String(),
		"amount_paid":  payment.AmountPaid.StringFixed(tariff.AmountPlaces),
		"meter_number": reading.MeterNumber,
	})
}

// Receipt loads the latest payment of a reading for printing.
func (s *Service) Receipt(ctx context.Context, actor authzdomain.Actor, readingID snowflake.ID) (*domain.Receipt, error) {
	if err := actor.Require(authzdomain.PermReceiptsPrint); err != nil {
		return nil, err
	}
	row, err := s.repo.FindLatestReceipt(ctx, s.db, readingID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		reading, err := s.repo.FindReading(ctx, s.db, readingID)
		if err != nil {
			return nil, err
		}
		if reading == nil {
			return nil, domain.ErrReadingNotFound
		}
		return nil, domain.ErrNoPayment
	}

	return &domain.Receipt{
		ReadingID:       row.ID.String(),
		PaymentID:       row.PaymentID.String(),
		CustomerName:    row.FirstName + " " + row.LastName,
		MeterNumber:     row.MeterNumber,
		SectorName:      row.SectorName,
		ReadingDate:     row.ReadingDate,
		PreviousReading: row.PreviousReading,
		CurrentReading:  row.CurrentReading,
		ConsumptionM3:   row.ConsumptionM3,
		Amount:          row.Amount.Round(tariff.AmountPlaces),
		AmountPaid:      row.AmountPaid.Round(tariff.AmountPlaces),
		PaidAt:          row.PaidAt,
	}, nil
}
