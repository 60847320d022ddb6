package portal

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// Config holds portal client settings.
type Config struct {
	// BaseURL is the root of the portal HTTP API, e.g. https://portal.internal.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is sent as a bearer token on every request when set.
	APIKey string `mapstructure:"api_key"`
	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration `mapstructure:"request_timeout" default:"30s"`
}

// Validate applies defaults and checks required fields.
func (c *Config) Validate() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to apply portal config defaults: %w", err)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("portal base_url is required")
	}
	return nil
}
