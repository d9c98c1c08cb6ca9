package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"wrapped/internal/core"
)

const (
	SummaryFile     = "wrapped.json"
	PredictionsFile = "predictions.json"
)

// Store serves a fixed report and forecast, for demos and tests.
type Store struct {
	mu          sync.Mutex
	summary     core.WrappedSummary
	predictions core.PredictionSummary
	calls       []string
}

func New(summary core.WrappedSummary, predictions core.PredictionSummary) *Store {
	return &Store{summary: summary, predictions: predictions}
}

// NewFromFiles loads fixtures from base, falling back to the built-in demo
// data for any file that does not exist.
func NewFromFiles(base string) (*Store, error) {
	var summary core.WrappedSummary
	found, err := readJSON(filepath.Join(base, SummaryFile), &summary)
	if err != nil {
		return nil, err
	}
	if !found {
		summary = DemoSummary()
	}

	var predictions core.PredictionSummary
	found, err = readJSON(filepath.Join(base, PredictionsFile), &predictions)
	if err != nil {
		return nil, err
	}
	if !found {
		predictions = DemoPredictions()
	}
	return New(summary, predictions), nil
}

// FetchSummary returns the stored report with the range label of q.
func (s *Store) FetchSummary(_ context.Context, q core.Query) (core.WrappedSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "summary")

	out := s.summary
	out.Range = fmt.Sprintf("%s a %s", q.Desde, q.Hasta)
	out.ByMerchant = maps.Clone(s.summary.ByMerchant)
	out.ByCategory = maps.Clone(s.summary.ByCategory)
	out.Priorities = slices.Clone(s.summary.Priorities)
	out.Predictability = slices.Clone(s.summary.Predictability)
	if s.summary.Iconic != nil {
		iconic := *s.summary.Iconic
		out.Iconic = &iconic
	}
	return out, nil
}

// FetchPredictions returns the stored forecast. The client id is not checked.
func (s *Store) FetchPredictions(_ context.Context, _ string) (core.PredictionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "predictions")

	out := s.predictions
	out.ByMerchant = maps.Clone(s.predictions.ByMerchant)
	out.Subscriptions = slices.Clone(s.predictions.Subscriptions)
	return out, nil
}

// Calls returns the order in which the store was queried.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// DemoSummary is a plausible report used when no fixture file is present.
func DemoSummary() core.WrappedSummary {
	iconic := "¡El 24 de diciembre te consentiste con $2,100.00 en LIVERPOOL! Un regalo que se recuerda."
	return core.WrappedSummary{
		ClientID: "demo",
		Range:    "2020-01-01 a 2024-12-31",
		Currency: "MXN",
		Total:    48210.75,
		ByMerchant: map[string]float64{
			"AMAZON":    12500.40,
			"OXXO":      6120.00,
			"NETFLIX":   3588.00,
			"UBER":      2950.35,
			"LIVERPOOL": 2100.00,
		},
		ByCategory: map[string]float64{
			"digital": 31250.50,
			"fisica":  16960.25,
		},
		Priorities: []core.Amount{
			{Type: "Esenciales", Value: 18450.20},
			{Type: "Suscripciones", Value: 29760.55},
		},
		Predictability: []core.CategoryScore{
			{Category: "SERVICIOS DIGITALES", Score: 96.5},
			{Category: "TRANSPORTE", Score: 81.2},
			{Category: "SUPERMERCADOS", Score: 64.0},
		},
		Iconic: &core.IconicPurchase{
			Date:     "24 de December",
			Merchant: "LIVERPOOL",
			Amount:   2100.00,
			Message:  &iconic,
		},
	}
}

// DemoPredictions is the forecast paired with DemoSummary.
func DemoPredictions() core.PredictionSummary {
	return core.PredictionSummary{
		Total: 4210.50,
		ByMerchant: map[string]float64{
			"NETFLIX": 299.00,
			"SPOTIFY": 115.00,
			"OXXO":    1800.00,
		},
		Subscriptions: []core.PredictedCharge{
			{Merchant: "NETFLIX", Amount: 299.00, Year: 2025, Month: 1, Day: 15},
			{Merchant: "SPOTIFY", Amount: 115.00, Year: 2025, Month: 1, Day: 3},
		},
		IconicMerchant: "OXXO",
		IconicCount:    42,
	}
}
