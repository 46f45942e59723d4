package pdf

import (
	"time"

	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"
)

// Table is a generic tabular report.
type Table struct {
	Title       string
	Period      string
	GeneratedAt time.Time
	Header      []string
	Rows        [][]string
	// Footer is an optional closing row, usually totals.
	Footer []string
}

var zebra = &props.Color{Red: 240, Green: 240, Blue: 240}

// RenderTable prints one grid column per header cell.
func (r *Renderer) RenderTable(t Table) ([]byte, error) {
	columns := len(t.Header)
	if columns == 0 {
		columns = 1
	}
	m := r.newDocument(t.Title, columns)

	generatedAt := t.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = r.now()
	}

	m.AddRows(
		text.NewRow(9, r.committeeName, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(8, t.Title, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center}),
	)
	if t.Period != "" {
		m.AddRows(text.NewRow(6, "Periodo: "+t.Period, props.Text{Size: 9, Align: align.Center}))
	}
	m.AddRows(
		text.NewRow(6, "Generado: "+generatedAt.Format("2006-01-02 15:04"), props.Text{Size: 8, Align: align.Center, Color: grey}),
		line.NewRow(4, props.Line{Thickness: 0.5}),
	)

	if len(t.Header) > 0 {
		m.AddRows(tableRow(t.Header, props.Text{Size: 9, Style: fontstyle.Bold}, nil))
	}
	for i, cells := range t.Rows {
		var bg *props.Color
		if i%2 == 1 {
			bg = zebra
		}
		m.AddRows(tableRow(pad(cells, columns), props.Text{Size: 8}, bg))
	}
	if len(t.Rows) == 0 {
		m.AddRows(text.NewRow(8, "Sin datos para el periodo seleccionado.", props.Text{Size: 9, Style: fontstyle.Italic, Align: align.Center}))
	}
	if len(t.Footer) > 0 {
		m.AddRows(
			line.NewRow(2, props.Line{Thickness: 0.3}),
			tableRow(pad(t.Footer, columns), props.Text{Size: 9, Style: fontstyle.Bold}, nil),
		)
	}

	out, err := generate(m)
	if err != nil {
		return nil, err
	}
	r.log.Debug("table rendered", zap.String("title", t.Title), zap.Int("rows", len(t.Rows)), zapSize(out))
	return out, nil
}

func tableRow(cells []string, style props.Text, bg *props.Color) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, cell := range cells {
		cols = append(cols, text.NewCol(1, cell, style))
	}
	r := row.New(6).Add(cols...)
	if bg != nil {
		r = r.WithStyle(&props.Cell{BackgroundColor: bg})
	}
	return r
}

func pad(cells []string, n int) []string {
	if len(cells) >= n {
		return cells[:n]
	}
	out := make([]string, n)
	copy(out, cells)
	return out
}

func zapSize(b []byte) zap.Field {
	return zap.Int("bytes", len(b))
}

func zapMeter(meter string) zap.Field {
	return zap.String("meter_number", meter)
}
