// Package tariff turns meter readings into billed amounts using the
// committee's block tariff. Everything here is pure and safe for concurrent use.
package tariff

import (
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places kept on billed amounts.
const AmountPlaces = 2

var (
	ErrNegativeRate   = errors.New("invalid_tariff_rate")
	ErrNegativeVolume = errors.New("invalid_tariff_included_volume")
)

// Schedule is the block tariff applied to every reading.
// Rates are currency units per cubic meter, IncludedVolume is in cubic meters.
type Schedule struct {
	BaseRate       decimal.Decimal `json:"base_rate"`
	FixedCharge    decimal.Decimal `json:"fixed_charge"`
	IncludedVolume decimal.Decimal `json:"included_volume"`
	OverageRate    decimal.Decimal `json:"overage_rate"`
}

// DefaultSchedule returns the committee tariff: 2.00 per m3 up to 25 m3,
// 4.00 per m3 beyond, no fixed charge.
func DefaultSchedule() Schedule {
	return Schedule{
		BaseRate:       decimal.RequireFromString("2.00"),
		FixedCharge:    decimal.Zero,
		IncludedVolume: decimal.NewFromInt(25),
		OverageRate:    decimal.RequireFromString("4.00"),
	}
}

func (s Schedule) Validate() error {
	if s.BaseRate.IsNegative() || s.OverageRate.IsNegative() || s.FixedCharge.IsNegative() {
		return ErrNegativeRate
	}
	if s.IncludedVolume.IsNegative() {
		return ErrNegativeVolume
	}
	return nil
}

// ComputeConsumption returns current - previous at full precision.
// A current reading below the previous one is accepted and yields negative
// consumption, which ComputeBill turns into a credit.
func ComputeConsumption(previous, current decimal.Decimal) decimal.Decimal {
	return current.Sub(previous)
}

// ComputeBill prices a consumption delta. Negative consumption is credited
// at the same tiered rates applied to its magnitude.
func ComputeBill(consumption decimal.Decimal, s Schedule) decimal.Decimal {
	switch consumption.Sign() {
	case 0:
		return round(s.FixedCharge)
	case 1:
		return round(s.FixedCharge.Add(tiered(consumption, s)))
	default:
		return round(s.FixedCharge.Sub(tiered(consumption.Abs(), s)))
	}
}

// tiered prices a non-negative volume across the base and overage blocks.
func tiered(volume decimal.Decimal, s Schedule) decimal.Decimal {
	base, overage := split(volume, s.IncludedVolume)
	return base.Mul(s.BaseRate).Add(overage.Mul(s.OverageRate))
}

func split(volume, included decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if volume.LessThanOrEqual(included) {
		return volume, decimal.Zero
	}
	return included, volume.Sub(included)
}

// round uses half-even on exact decimal ties.
func round(v decimal.Decimal) decimal.Decimal {
	return v.RoundBank(AmountPlaces)
}
