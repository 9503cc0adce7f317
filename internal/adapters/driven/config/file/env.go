package file

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// Environment holds settings that can be overridden by OMNIQ_* variables.
// Unset variables leave the file value in place.
type Environment struct {
	ConfigDir         string   `env:"OMNIQ_CONFIG_DIR"`
	BaseURL           *string  `env:"OMNIQ_BASE_URL"`
	TimeoutSeconds    *int     `env:"OMNIQ_TIMEOUT"`
	RequestsPerSecond *float64 `env:"OMNIQ_RPS"`
	Token             string   `env:"OMNIQ_TOKEN"`
	LogFile           *string  `env:"OMNIQ_LOG_FILE"`
}

// LoadEnvironment reads the process environment.
func LoadEnvironment() (*Environment, error) {
	e := &Environment{}
	if err := env.Parse(e); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// LoadEnvironmentFrom reads the given variables instead of the process environment.
func LoadEnvironmentFrom(vars map[string]string) (*Environment, error) {
	e := &Environment{}
	if err := env.ParseWithOptions(e, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return e, nil
}

// Apply overlays the set variables onto settings.
func (e *Environment) Apply(settings *domain.AppSettings) {
	if e == nil || settings == nil {
		return
	}
	if e.BaseURL != nil {
		settings.Backend.BaseURL = *e.BaseURL
	}
	if e.TimeoutSeconds != nil {
		settings.Backend.TimeoutSeconds = *e.TimeoutSeconds
	}
	if e.RequestsPerSecond != nil {
		settings.Backend.RequestsPerSecond = *e.RequestsPerSecond
	}
	if e.Token != "" {
		settings.Backend.Token = e.Token
	}
	if e.LogFile != nil {
		settings.LogFile = *e.LogFile
	}
}
