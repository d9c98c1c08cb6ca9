// Package fetcher loads the two snapshots a Wrapped dashboard session shows:
// the spending summary and, chained on its client id, the predictions.
package fetcher

import (
	"context"
	"fmt"
	"sync"

	"wrapped/internal/backend"
	"wrapped/internal/core"
	"wrapped/internal/log"
)

// State is how far a session has loaded. It only moves forward.
type State int

const (
	StateLoading State = iota
	StateSummary
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSummary:
		return "summary"
	case StateComplete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns the state cells of one mounted dashboard.
type Session struct {
	summaries   backend.SummaryReader
	predictions backend.PredictionReader
	query       core.Query
	logger      *log.Logger
	structured  *log.StructuredLogger

	once sync.Once
	mu   sync.RWMutex

	summary    *core.WrappedSummary
	prediction *core.PredictionSummary
	err        error
}

func NewSession(summaries backend.SummaryReader, predictions backend.PredictionReader, q core.Query, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentFetcher).With(log.FieldQueryKey, q.Key())
	return &Session{
		summaries:   summaries,
		predictions: predictions,
		query:       q,
		logger:      logger,
		structured:  log.NewStructuredLogger(logger),
	}
}

// NewSourceSession is NewSession for a source that serves both endpoints.
func NewSourceSession(src backend.Source, q core.Query, logger *log.Logger) *Session {
	return NewSession(src, src, q, logger)
}

// Load runs the fetch chain the first time it is called and returns the
// error that ended it, if any. Later calls wait for the first to finish and
// return the same error without issuing requests.
func (s *Session) Load(ctx context.Context) error {
	s.once.Do(func() {
		err := s.load(ctx)
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	})
	return s.Err()
}

func (s *Session) load(ctx context.Context) error {
	summary, err := s.summaries.FetchSummary(ctx, s.query)
	if err != nil {
		s.structured.LogError(ctx, "Summary request failed", err, log.OpFetchSummary, nil)
		return fmt.Errorf("fetch summary: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.summary = &summary
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Summary loaded", log.FieldClientID, summary.ClientID, "merchants", len(summary.ByMerchant))

	prediction, err := s.predictions.FetchPredictions(ctx, summary.ClientID)
	if err != nil {
		s.structured.LogError(ctx, "Prediction request failed", err, log.OpFetchPredictions, log.NewFields().WithClientID(summary.ClientID))
		return fmt.Errorf("fetch predictions: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.prediction = &prediction
	s.mu.Unlock()
	s.logger.DebugContext(ctx, "Predictions loaded", log.FieldClientID, summary.ClientID, "subscriptions", len(prediction.Subscriptions))

	return nil
}

// Snapshot returns the current state cells. Either pointer may be nil.
func (s *Session) Snapshot() (*core.WrappedSummary, *core.PredictionSummary) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, s.prediction
}

// State reports how much data the session holds.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.summary == nil:
		return StateLoading
	case s.prediction == nil:
		return StateSummary
	default:
		return StateComplete
	}
}

// Err is the error that ended Load, or nil.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Query is the report query the session was created for.
func (s *Session) Query() core.Query {
	return s.query
}
