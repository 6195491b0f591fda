// Package internal provides the App struct that wires the components of
// reseau together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/valter-silva-au/reseau/internal/cli"
	"github.com/valter-silva-au/reseau/internal/core"
	"github.com/valter-silva-au/reseau/internal/observability"
	"github.com/valter-silva-au/reseau/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds all service dependencies for one reseau process.
type App struct {
	BasePath string
	Session  string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	Logger *zap.Logger

	// Core services
	Controller core.NetworkController

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// .reseaurc and the event log (RESEAU_HOME or the current directory).
func NewApp(basePath string) (*App, error) {
	app := &App{
		BasePath: basePath,
		Session:  uuid.NewString(),
	}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Logging ---
	app.Logger, err = newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	app.Logger = app.Logger.With(zap.String("session", app.Session))

	// --- Observability ---
	if cfg.Events.Enabled {
		eventLogPath := cfg.Events.Path
		if !filepath.IsAbs(eventLogPath) {
			eventLogPath = filepath.Join(basePath, eventLogPath)
		}
		app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
		if err != nil {
			// Non-fatal: the session works without an event log.
			app.Logger.Warn("event log disabled", zap.String("path", eventLogPath), zap.Error(err))
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	opts := []core.ControllerOption{core.WithLogger(app.Logger)}
	if app.EventLog != nil {
		opts = append(opts, core.WithEventLogger(&eventLogAdapter{log: app.EventLog, session: app.Session}))
	}
	app.Controller = core.NewNetworkController(opts...)

	// --- Wire CLI package-level variables ---
	cli.Controller = app.Controller
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.TypeColors = cfg.TypeColors()
	cli.DefaultFormat = cfg.Render.DefaultFormat

	return app, nil
}

// Close flushes the logger and releases the event log file handle. It is
// safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.Logger != nil {
		// Sync fails on terminals and pipes; nothing useful can be done.
		_ = a.Logger.Sync()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory reseau reads its config from and
// writes its event log to. RESEAU_HOME wins, then a parent directory holding
// .reseaurc, then the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("RESEAU_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if hasConfigFile(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// hasConfigFile reports whether dir holds .reseaurc with or without an
// extension.
func hasConfigFile(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(dir, core.ConfigFileName+".*"))
	return len(matches) > 0
}

// newLogger builds a zap logger from the log section of the config. Logs go
// to stderr so they never mix with rendered output or the MCP stdio stream.
func newLogger(cfg models.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var config zap.Config
	if cfg.Development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build()
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger and tags
// every event with the process session.
type eventLogAdapter struct {
	log     observability.EventLog
	session string
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Session: a.session,
		Message: eventType,
		Data:    data,
	})
}
