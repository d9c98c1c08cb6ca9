package backend

import (
	"context"

	"wrapped/internal/core"
)

// SummaryReader fetches the aggregated Wrapped report for a query.
type SummaryReader interface {
	FetchSummary(ctx context.Context, q core.Query) (core.WrappedSummary, error)
}

// PredictionReader fetches the next-month spending forecast for a client.
type PredictionReader interface {
	FetchPredictions(ctx context.Context, clientID string) (core.PredictionSummary, error)
}

// Source provides everything the dashboard reads from the analytics backend.
type Source interface {
	SummaryReader
	PredictionReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the source instance and optional cleanup function
type BackendResult struct {
	Source  Source
	Cleanup CleanupFunc
}

// Factory creates sources based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of source
type BackendType string

const (
	HTTPBackend   BackendType = "http"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case HTTPBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
