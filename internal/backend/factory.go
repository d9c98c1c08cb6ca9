package backend

import (
	"context"
	"fmt"

	"wrapped/internal/backend/memory"
	"wrapped/internal/log"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case HTTPBackend:
		client := NewClient(config.BaseURL, config.Token, config.Timeout, f.logger)
		f.logger.Info("Initialized HTTP backend", "base_url", config.BaseURL, "timeout", config.Timeout.String())
		return &BackendResult{Source: client, Cleanup: client.Close}, nil
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		store, err := memory.NewFromFiles(dataDir)
		if err != nil {
			return nil, fmt.Errorf("load memory fixtures: %w", err)
		}
		f.logger.Info("Initialized memory backend", "data_directory", dataDir)
		return &BackendResult{Source: store}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
