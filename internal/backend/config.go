package backend

import (
	"fmt"
	"time"

	"wrapped/internal/config"
)

// Config holds configuration for source creation
type Config struct {
	Type BackendType

	// HTTP specific
	BaseURL string
	Token   string
	Timeout time.Duration

	// Memory specific
	DataDirectory string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.Source)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.Source)
	}

	return Config{
		Type:          backendType,
		BaseURL:       appConfig.APIURL,
		Token:         appConfig.Token,
		Timeout:       appConfig.RequestTimeout,
		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == HTTPBackend {
		if c.BaseURL == "" {
			return fmt.Errorf("base URL is required for http backend")
		}
		if c.Token == "" {
			return fmt.Errorf("token is required for http backend: %w", ErrEmptyToken)
		}
	}

	return nil
}
