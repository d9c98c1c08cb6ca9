package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ModeMerchant         GroupingMode = "comercio"
	ModeMerchantCategory GroupingMode = "giro_comercio"

	// DateLayout is the wire format of the desde/hasta query parameters.
	DateLayout = "2006-01-02"
)

type (
	GroupingMode string

	// Query selects the date range and grouping of a Wrapped report.
	Query struct {
		Desde string
		Hasta string
		Modo  GroupingMode
	}

	// Amount is a labelled spend amount, e.g. essentials vs subscriptions.
	Amount struct {
		Type  string  `json:"tipo"`
		Value float64 `json:"valor"`
	}

	// CategoryScore is the backend's 0-100 predictability metric for one category.
	CategoryScore struct {
		Category string  `json:"categoria"`
		Score    float64 `json:"score"`
	}

	// IconicPurchase is the single transaction flagged as most memorable.
	// Message is nil when the backend sends null or omits it; an empty
	// string is a real message.
	IconicPurchase struct {
		Date     string  `json:"fecha"`
		Merchant string  `json:"comercio"`
		Amount   float64 `json:"monto"`
		Message  *string `json:"mensaje"`
	}

	// WrappedSummary is the aggregated spending report for a date range.
	WrappedSummary struct {
		ClientID       string             `json:"cliente_id"`
		Range          string             `json:"rango"`
		Currency       string             `json:"moneda"`
		Total          float64            `json:"total_gastado"`
		ByMerchant     map[string]float64 `json:"resumen_gastos"`
		ByCategory     map[string]float64 `json:"resumen_categorias"`
		Priorities     []Amount           `json:"proporcion_essentials_vs_subs"`
		Predictability []CategoryScore    `json:"predictibilidad_por_categoria"`
		Iconic         *IconicPurchase    `json:"compra_mas_iconica,omitempty"`

		// Message is set by the backend instead of the report when the range has no transactions.
		Message string `json:"mensaje,omitempty"`
	}

	// PredictedCharge is a recurring charge expected next month.
	PredictedCharge struct {
		Merchant string  `json:"comercio"`
		Amount   float64 `json:"monto"`
		Year     int     `json:"anio"`
		Month    int     `json:"mes"`
		Day      int     `json:"dia"`
	}

	// PredictionSummary is the backend's spending forecast for a client.
	PredictionSummary struct {
		Total          float64            `json:"total_spending"`
		ByMerchant     map[string]float64 `json:"per_merchant_spending"`
		Subscriptions  []PredictedCharge  `json:"predicted_subs"`
		IconicMerchant string             `json:"iconic_commerce"`
		IconicCount    int                `json:"iconic_count"`

		Message string `json:"mensaje,omitempty"`
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidRange = errors.New("invalid date range")
	ErrInvalidMode  = errors.New("invalid grouping mode")
)

// IsValid reports whether the backend accepts m as a grouping mode.
func (m GroupingMode) IsValid() bool {
	switch m {
	case ModeMerchant, ModeMerchantCategory:
		return true
	default:
		return false
	}
}

func (m GroupingMode) String() string {
	return string(m)
}

// Text returns the message and whether the backend sent one.
func (p *IconicPurchase) Text() (string, bool) {
	if p == nil || p.Message == nil {
		return "", false
	}
	return *p.Message, true
}

// Validate checks the date format, the range order and the grouping mode.
func (q Query) Validate() error {
	from, err := time.Parse(DateLayout, q.Desde)
	if err != nil {
		return fmt.Errorf("%w: desde %q", ErrInvalidDate, q.Desde)
	}
	to, err := time.Parse(DateLayout, q.Hasta)
	if err != nil {
		return fmt.Errorf("%w: hasta %q", ErrInvalidDate, q.Hasta)
	}
	if to.Before(from) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidRange, q.Desde, q.Hasta)
	}
	if !q.Modo.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, q.Modo)
	}
	return nil
}

// Key identifies the query in caches and in the snapshot archive.
func (q Query) Key() string {
	return strings.Join([]string{q.Desde, q.Hasta, string(q.Modo)}, "|")
}
