package pdf

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	marotoconfig "github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/railzwaylabs/waterworks/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var Module = fx.Module("pdf",
	fx.Provide(NewRenderer),
)

var (
	black = &props.Color{Red: 0, Green: 0, Blue: 0}
	green = &props.Color{Red: 0, Green: 128, Blue: 0}
	grey  = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// Renderer turns receipts and reports into PDF documents branded with the
// committee's name.
type Renderer struct {
	log            *zap.Logger
	committeeName  string
	currencySymbol string
	paymentNote    string
	now            func() time.Time
}

func NewRenderer(cfg config.Config, log *zap.Logger) *Renderer {
	return &Renderer{
		log:            log.Named("pdf"),
		committeeName:  cfg.Committee.Name,
		currencySymbol: cfg.Committee.CurrencySymbol,
		paymentNote:    cfg.Committee.PaymentNote,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (r *Renderer) newDocument(title string, grid int) core.Maroto {
	builder := marotoconfig.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		WithTitle(title, true).
		WithAuthor(r.committeeName, true)
	if grid > 0 {
		builder = builder.WithMaxGridSize(grid)
	}
	return maroto.New(builder.Build())
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// ReceiptFilename keeps readable meter numbers as they are and slugs the rest.
func ReceiptFilename(meterNumber string, paidAt time.Time) string {
	name := strings.TrimSpace(meterNumber)
	if !slug.IsSlug(strings.ToLower(name)) {
		name = slug.Make(name)
	}
	return "Recibo_" + name + "_" + paidAt.Format(dateLayout) + ".pdf"
}

// ReportFilename derives a download name from a report title.
func ReportFilename(title string, generatedAt time.Time) string {
	return slug.Make(title) + "_" + generatedAt.Format(dateLayout) + ".pdf"
}
