// Package core contains the relationship network model: the graph of people,
// the history of relationship-creation events, the confirmation state machine
// guarding deletions and the controller that keeps them consistent. It also
// loads the tool's configuration.
package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/reseau/internal/render"
	"github.com/valter-silva-au/reseau/pkg/models"
)

// ConfigFileName is the base name of the optional configuration file.
const ConfigFileName = ".reseaurc"

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ConfigurationManager loads and validates the tool's configuration.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for reading
// a YAML .reseaurc file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that looks for
// .reseaurc in basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Log: models.LogConfig{
			Level: "info",
		},
		Events: models.EventsConfig{
			Enabled: true,
			Path:    ".reseau_events.jsonl",
		},
		Render: models.RenderConfig{
			DefaultFormat: render.FormatText,
		},
	}
}

// LoadConfig reads .reseaurc from the base path. A missing file yields the
// defaults; a present file is validated before it is returned.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("events.path", cfg.Events.Path)
	v.SetDefault("render.default_format", cfg.Render.DefaultFormat)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Development = v.GetBool("log.development")
	cfg.Events.Enabled = v.GetBool("events.enabled")
	cfg.Events.Path = v.GetString("events.path")
	cfg.Render.DefaultFormat = strings.ToLower(v.GetString("render.default_format"))

	colors := v.GetStringMapString("render.colors")
	if len(colors) > 0 {
		cfg.Render.Colors = make(map[models.RelationshipType]string, len(colors))
		for k, color := range colors {
			t, ok := models.ParseRelationshipType(k)
			if !ok {
				// Keep the raw key so validation can name it.
				t = models.RelationshipType(k)
			}
			cfg.Render.Colors[t] = color
		}
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig checks cfg for invalid values and reports all of them.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf(
			"log.level %q is invalid, must be one of: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Events.Enabled && cfg.Events.Path == "" {
		errs = append(errs, "events.path must not be empty when events are enabled")
	}
	if !slices.Contains(render.Formats(), cfg.Render.DefaultFormat) {
		errs = append(errs, fmt.Sprintf(
			"render.default_format %q is invalid, must be one of: text, dot, yaml", cfg.Render.DefaultFormat))
	}
	for t, color := range cfg.Render.Colors {
		if !t.IsValid() {
			errs = append(errs, fmt.Sprintf("render.colors key %q is not a relationship type", t))
		}
		if color == "" {
			errs = append(errs, fmt.Sprintf("render.colors.%s must not be empty", t))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
