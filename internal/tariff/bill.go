package tariff

import "github.com/shopspring/decimal"

// Bill is the itemised result of pricing one reading pair.
type Bill struct {
	Previous    decimal.Decimal `json:"previous_reading"`
	Current     decimal.Decimal `json:"current_reading"`
	Consumption decimal.Decimal `json:"consumption_m3"`
	// BaseVolume and OverageVolume are magnitudes, also for credits.
	BaseVolume    decimal.Decimal `json:"base_volume_m3"`
	OverageVolume decimal.Decimal `json:"overage_volume_m3"`
	Credit        bool            `json:"credit"`
	Amount        decimal.Decimal `json:"amount"`
}

func Calculate(previous, current decimal.Decimal, s Schedule) Bill {
	consumption := ComputeConsumption(previous, current)
	base, overage := split(consumption.Abs(), s.IncludedVolume)
	return Bill{
		Previous:      previous,
		Current:       current,
		Consumption:   consumption,
		BaseVolume:    base,
		OverageVolume: overage,
		Credit:        consumption.IsNegative(),
		Amount:        ComputeBill(consumption, s),
	}
}
