package config

import (
	"time"

	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/validation"
)

// FileName is the root config file that marks a workspace.
const FileName = ".pmnpsrc.json"

// Config is the workspace root configuration.
type Config struct {
	Workspace      string   `json:"workspace" mapstructure:"workspace" validate:"required"`
	Git            bool     `json:"git,omitempty" mapstructure:"git"`
	BuildModes     []string `json:"buildModes,omitempty" mapstructure:"buildModes" validate:"dive,required"`
	Publishable    bool     `json:"publishable,omitempty" mapstructure:"publishable"`
	PackageManager string   `json:"packageManager,omitempty" mapstructure:"packageManager" validate:"oneof=npm yarn pnpm"`
	// Concurrency caps parallel nodes within a batch. Zero means unbounded.
	Concurrency int `json:"concurrency,omitempty" mapstructure:"concurrency" validate:"gte=0"`

	Logging   logger.Config   `json:"logging,omitzero" mapstructure:"logging"`
	Install   InstallConfig   `json:"install,omitzero" mapstructure:"install"`
	Process   ProcessConfig   `json:"process,omitzero" mapstructure:"process"`
	Telemetry TelemetryConfig `json:"telemetry,omitzero" mapstructure:"telemetry"`
}

// InstallConfig controls dependency installation.
type InstallConfig struct {
	// Retries is the number of extra attempts after a failed install.
	Retries int `json:"retries" mapstructure:"retries" validate:"gte=0,lte=10"`
}

// ProcessConfig controls member process execution.
type ProcessConfig struct {
	// Timeout bounds a whole build or publish run. Zero disables it.
	Timeout     time.Duration `json:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
	GracePeriod time.Duration `json:"grace_period,omitempty" mapstructure:"grace_period" validate:"gte=0"`
}

// TelemetryConfig enables OTLP export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint   string  `json:"endpoint,omitempty" mapstructure:"endpoint"`
	Insecure   bool    `json:"insecure,omitempty" mapstructure:"insecure"`
	SampleRate float64 `json:"sample_rate,omitempty" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// Enabled reports whether telemetry export is configured.
func (t TelemetryConfig) Enabled() bool { return t.Endpoint != "" }

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.PackageManager == "" {
		c.PackageManager = "npm"
	}
	if c.Process.GracePeriod == 0 {
		c.Process.GracePeriod = 5 * time.Second
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration. ApplyDefaults should run first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Validation("logging: " + err.Error()).WithCause(err)
	}
	return nil
}

// HasBuildMode reports whether mode is declared in buildModes.
func (c *Config) HasBuildMode(mode string) bool {
	for _, m := range c.BuildModes {
		if m == mode {
			return true
		}
	}
	return false
}

// AddBuildMode appends mode unless it is already declared.
func (c *Config) AddBuildMode(mode string) bool {
	if mode == "" || c.HasBuildMode(mode) {
		return false
	}
	c.BuildModes = append(c.BuildModes, mode)
	return true
}
