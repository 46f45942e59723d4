package service

import (
	"strconv"

	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	"github.com/railzwaylabs/waterworks/internal/report/domain"
	"github.com/shopspring/decimal"
)

const (
	IncomeTitle      = "Reporte de Ingresos"
	DebtorsTitle     = "Reporte de Clientes Morosos"
	ConsumptionTitle = "Reporte de Consumo de Agua"
)

func IncomeTable(r *domain.IncomeReport, currency string) pdf.Table {
	rows := make([][]string, 0, len(r.Days))
	for _, d := range r.Days {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Payments), money(currency, d.Total)})
	}
	return pdf.Table{
		Title:       IncomeTitle,
		Period:      r.From + " a " + r.To,
		GeneratedAt: r.GeneratedAt,
		Header:      []string{"Fecha", "Pagos", "Total"},
		Rows:        rows,
		Footer:      []string{"Total", "", money(currency, r.Total)},
	}
}

func DebtorsTable(r *domain.DebtorReport, currency string) pdf.Table {
	rows := make([][]string, 0, len(r.Debtors))
	for _, d := range r.Debtors {
		rows = append(rows, []string{
			d.FirstName + " " + d.LastName,
			d.MeterNumber,
			d.SectorName,
			strconv.Itoa(d.PendingInvoices),
			money(currency, d.TotalDebt),
			d.OldestReading,
		})
	}
	return pdf.Table{
		Title:       DebtorsTitle,
		GeneratedAt: r.GeneratedAt,
		Header:      []string{"Cliente", "Contador", "Sector", "Facturas", "Deuda", "Desde"},
		Rows:        rows,
		Footer:      []string{"Total", "", "", "", money(currency, r.TotalDebt), ""},
	}
}

func ConsumptionTable(r *domain.ConsumptionReport) pdf.Table {
	rows := make([][]string, 0, len(r.Customers))
	for _, c := range r.Customers {
		rows = append(rows, []string{
			c.FirstName + " " + c.LastName,
			c.MeterNumber,
			c.SectorName,
			c.Average.StringFixed(2),
			c.Max.StringFixed(2),
			c.Min.StringFixed(2),
		})
	}
	return pdf.Table{
		Title:       ConsumptionTitle,
		Period:      r.From + " a " + r.To,
		GeneratedAt: r.GeneratedAt,
		Header:      []string{"Cliente", "Contador", "Sector", "Promedio m3", "Maximo m3", "Minimo m3"},
		Rows:        rows,
	}
}

func money(currency string, v decimal.Decimal) string {
	return currency + v.StringFixed(2)
}
