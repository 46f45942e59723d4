package tariff

import (
	"github.com/cockroachdb/errors"
	"github.com/railzwaylabs/waterworks/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff",
	fx.Provide(NewSchedule),
)

// NewSchedule builds the process-wide schedule from configuration. Every
// omitted field keeps its default value.
func NewSchedule(cfg config.Config) (Schedule, error) {
	s := DefaultSchedule()
	fields := []struct {
		name  string
		raw   string
		value *decimal.Decimal
	}{
		{"base_rate", cfg.Tariff.BaseRate, &s.BaseRate},
		{"fixed_charge", cfg.Tariff.FixedCharge, &s.FixedCharge},
		{"included_volume", cfg.Tariff.IncludedVolume, &s.IncludedVolume},
		{"overage_rate", cfg.Tariff.OverageRate, &s.OverageRate},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return Schedule{}, errors.Wrapf(err, "tariff %s", f.name)
		}
		*f.value = v
	}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}
