// Package view turns the two dashboard snapshots into display values.
//
// Build is a pure function: the same snapshots always give the same Model.
// The Model carries only preformatted strings so every output form (HTML,
// text, JSON) shows identical numbers, including NaN for the 0/0 cases.
package view

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wrapped/internal/core"
)

const (
	LoadingText         = "Cargando..."
	IconicFallback      = "No se encontró información sobre la compra más memorable."
	NoSubscriptionsText = "Sin suscripciones previstas."

	topMerchantCount = 3
)

var lower = cases.Lower(language.Spanish)

type (
	RankedMerchant struct {
		Rank   int    `json:"rank"`
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}

	Predictions struct {
		Total          string   `json:"total"`
		Subscriptions  []string `json:"subscriptions"`
		IconicMerchant string   `json:"iconic_merchant,omitempty"`
		IconicCount    int      `json:"iconic_count,omitempty"`
	}

	// Model is everything the dashboard renders.
	Model struct {
		Loading bool `json:"loading"`

		// Stale is set when the data comes from the archive instead of a live fetch.
		Stale     bool   `json:"stale,omitempty"`
		FetchedAt string `json:"fetched_at,omitempty"`

		ClientID       string           `json:"cliente_id,omitempty"`
		Range          string           `json:"rango,omitempty"`
		Currency       string           `json:"moneda,omitempty"`
		Total          string           `json:"total,omitempty"`
		TopMerchants   []RankedMerchant `json:"top_merchants,omitempty"`
		DigitalPct     string           `json:"digital_pct,omitempty"`
		PhysicalPct    string           `json:"physical_pct,omitempty"`
		Predictability string           `json:"predictability,omitempty"`
		Priorities     []string         `json:"priorities,omitempty"`
		IconicMessage  string           `json:"iconic_message,omitempty"`
		Predictions    *Predictions     `json:"predictions,omitempty"`
	}
)

// Build derives the display model. A nil summary yields the loading model and
// predictions are ignored until a summary exists.
func Build(summary *core.WrappedSummary, predictions *core.PredictionSummary) Model {
	if summary == nil {
		return Model{Loading: true}
	}

	split := core.SplitChannels(summary.ByCategory)
	m := Model{
		ClientID:       summary.ClientID,
		Range:          summary.Range,
		Currency:       summary.Currency,
		Total:          core.FormatAmount(summary.Total),
		DigitalPct:     core.FormatPercent(split.Digital),
		PhysicalPct:    core.FormatPercent(split.Physical),
		Predictability: core.FormatPercent(core.AveragePredictability(summary.Predictability)),
		IconicMessage:  IconicFallback,
	}

	for i, ms := range core.TopMerchants(summary.ByMerchant, topMerchantCount) {
		m.TopMerchants = append(m.TopMerchants, RankedMerchant{
			Rank:   i + 1,
			Name:   ms.Name,
			Amount: core.FormatAmount(ms.Amount),
		})
	}

	for _, p := range summary.Priorities {
		m.Priorities = append(m.Priorities, PriorityLine(p))
	}

	if msg, ok := summary.Iconic.Text(); ok {
		m.IconicMessage = msg
	}

	if predictions != nil {
		p := &Predictions{
			Total:          core.FormatAmount(predictions.Total),
			IconicMerchant: predictions.IconicMerchant,
			IconicCount:    predictions.IconicCount,
		}
		for _, c := range predictions.Subscriptions {
			p.Subscriptions = append(p.Subscriptions, SubscriptionLine(c))
		}
		m.Predictions = p
	}

	return m
}

// MarkStale marks m as coming from an archived snapshot fetched at t.
func (m Model) MarkStale(t time.Time) Model {
	m.Stale = true
	m.FetchedAt = t.Format("2006-01-02 15:04")
	return m
}

// PriorityLine formats one essentials/subscriptions entry.
func PriorityLine(a core.Amount) string {
	return fmt.Sprintf("- %s en %s", core.FormatAmount(a.Value), lower.String(a.Type))
}

// SubscriptionLine formats one predicted recurring charge.
func SubscriptionLine(c core.PredictedCharge) string {
	return c.Merchant + " - $" + core.FormatAmount(c.Amount) + " el " +
		strconv.Itoa(c.Day) + "/" + strconv.Itoa(c.Month) + "/" + strconv.Itoa(c.Year)
}
