package providers

import (
	"github.com/railzwaylabs/waterworks/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	pdf.Module,
)
