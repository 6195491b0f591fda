package cli

import (
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/observability"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	Controller  core.NetworkController
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator

	// TypeColors is the relationship colour table after config overrides.
	TypeColors = models.DefaultTypeColors()
	// DefaultFormat is used by 'script' and 'render' when no format is given.
	DefaultFormat = render.FormatText
)
