package models

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// EventsConfig controls the JSONL action log.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	DefaultFormat string                      `yaml:"default_format" mapstructure:"default_format"`
	Colors        map[RelationshipType]string `yaml:"colors,omitempty" mapstructure:"colors"`
}

// Config holds the settings read from .reseaurc via Viper.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Events EventsConfig `yaml:"events" mapstructure:"events"`
	Render RenderConfig `yaml:"render" mapstructure:"render"`
}

// TypeColors returns the default colour table with any configured overrides
// applied.
func (c *Config) TypeColors() map[RelationshipType]string {
	colors := DefaultTypeColors()
	for t, color := range c.Render.Colors {
		colors[t] = color
	}
	return colors
}
