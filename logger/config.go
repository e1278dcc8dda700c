package logger

import "fmt"

// Config contains logging configuration.
type Config struct {
	Level     string `json:"level,omitempty" mapstructure:"level"`
	Format    string `json:"format,omitempty" mapstructure:"format"`
	Output    string `json:"output,omitempty" mapstructure:"output"`
	NoColor   bool   `json:"no_color,omitempty" mapstructure:"no_color"`
	Timestamp bool   `json:"timestamp,omitempty" mapstructure:"timestamp"`
	Caller    bool   `json:"caller,omitempty" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "trace", "disabled"}
	if !contains(validLevels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", validLevels, c.Level)
	}
	validFormats := []string{"json", "console", "pretty"}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", validFormats, c.Format)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
