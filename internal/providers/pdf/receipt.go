package pdf

import (
	"time"

	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/linestyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

const (
	CustomerCopy  = "COPIA PARA EL CLIENTE"
	CommitteeCopy = "COPIA PARA EL COMITE"
)

type ReceiptData struct {
	IssueDate       time.Time
	MeterNumber     string
	CustomerName    string
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	ConsumptionM3   decimal.Decimal
	Amount          decimal.Decimal
}

// RenderReceipt lays out two identical copies of a payment receipt on one
// Letter page, separated by a dashed cut line.
func (r *Renderer) RenderReceipt(data ReceiptData) ([]byte, error) {
	m := r.newDocument("Recibo "+data.MeterNumber, 0)

	m.AddRows(r.receiptCopy(data, CustomerCopy)...)
	m.AddRows(
		row.New(12),
		line.NewRow(4, props.Line{Style: linestyle.Dashed, Thickness: 0.4, Color: grey}),
		text.NewRow(6, "----------- Linea de Corte -----------", props.Text{Size: 8, Align: align.Center, Color: grey}),
		row.New(12),
	)
	m.AddRows(r.receiptCopy(data, CommitteeCopy)...)

	out, err := generate(m)
	if err != nil {
		return nil, err
	}
	r.log.Debug("receipt rendered", zapMeter(data.MeterNumber), zapSize(out))
	return out, nil
}

func (r *Renderer) receiptCopy(data ReceiptData, label string) []core.Row {
	left := props.Text{Size: 10, Align: align.Left}
	right := props.Text{Size: 10, Align: align.Right}

	caption, amount, color := "TOTAL A PAGAR:", data.Amount, black
	if data.Amount.IsNegative() {
		caption, amount, color = "CREDITO A FAVOR:", data.Amount.Abs(), green
	}
	boxText := props.Text{Size: 13, Style: fontstyle.Bold, Color: color, Top: 2}

	return []core.Row{
		text.NewRow(9, r.committeeName, props.Text{Size: 15, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(6, "("+label+")", props.Text{Size: 9, Align: align.Center}),
		line.NewRow(4, props.Line{Thickness: 0.6}),
		row.New(6).Add(
			text.NewCol(6, "Fecha Emision: "+data.IssueDate.Format(dateLayout), left),
			text.NewCol(6, "Lectura Anterior: "+volume(data.PreviousReading), right),
		),
		row.New(6).Add(
			text.NewCol(6, "No. Contador: "+data.MeterNumber, left),
			text.NewCol(6, "Lectura Actual: "+volume(data.CurrentReading), right),
		),
		row.New(7).Add(
			text.NewCol(6, "Nombre: "+data.CustomerName, props.Text{Size: 11, Style: fontstyle.Bold}),
			text.NewCol(6, "CONSUMO: "+volume(data.ConsumptionM3), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		),
		row.New(4),
		row.New(11).Add(
			col.New(3),
			col.New(6).Add(
				text.New(caption, withAlign(boxText, align.Left, 3)),
				text.New(r.currencySymbol+amount.StringFixed(2), withAlign(boxText, align.Right, 3)),
			).WithStyle(&props.Cell{BorderType: border.Full, BorderThickness: 0.6}),
			col.New(3),
		),
		row.New(3),
		text.NewRow(6, r.paymentNote, props.Text{Size: 9, Style: fontstyle.Italic, Align: align.Center}),
		row.New(10),
		line.NewRow(2, props.Line{Thickness: 0.3, SizePercent: 40, OffsetPercent: 30}),
		text.NewRow(5, "Firma/Sello", props.Text{Size: 9, Align: align.Center}),
	}
}

func withAlign(p props.Text, a align.Type, pad float64) props.Text {
	p.Align = a
	if a == align.Left {
		p.Left = pad
	} else {
		p.Right = pad
	}
	return p
}

func volume(v decimal.Decimal) string {
	return v.StringFixed(2) + " m3"
}
