package http

import (
	"fmt"
	"net/url"
	"strings"

	"wrapped/internal/core"
)

// Query parameter names shared by every dashboard route.
const (
	paramDesde = "desde"
	paramHasta = "hasta"
	paramModo  = "modo"
)

// ParseQuery reads desde, hasta and modo from values. Missing or blank
// parameters take the value from defaults. The merged query is validated.
func ParseQuery(values url.Values, defaults core.Query) (core.Query, error) {
	q := defaults
	if v := strings.TrimSpace(values.Get(paramDesde)); v != "" {
		q.Desde = v
	}
	if v := strings.TrimSpace(values.Get(paramHasta)); v != "" {
		q.Hasta = v
	}
	if v := strings.TrimSpace(values.Get(paramModo)); v != "" {
		q.Modo = core.GroupingMode(strings.ToLower(v))
	}

	if err := q.Validate(); err != nil {
		return core.Query{}, fmt.Errorf("invalid query: %w", err)
	}
	return q, nil
}

// EncodeQuery is the inverse of ParseQuery.
func EncodeQuery(q core.Query) url.Values {
	return url.Values{
		paramDesde: {q.Desde},
		paramHasta: {q.Hasta},
		paramModo:  {q.Modo.String()},
	}
}
