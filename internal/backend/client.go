package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wrapped/internal/core"
	"wrapped/internal/log"
)

const (
	SummaryPath     = "/wrapped_gastos"
	PredictionsPath = "/predict_gastos_recurrentes"

	maxResponseBytes = 4 << 20
)

var ErrEmptyToken = errors.New("empty token")

// Client talks to the analytics backend over HTTP. Non-2xx responses are
// logged and their bodies are decoded as if they were successful.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *log.Logger
	structured *log.StructuredLogger
}

// NewClient returns a client for baseURL. A zero timeout means no client-side
// timeout; callers can still bound requests through the context.
func NewClient(baseURL, token string, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentBackend)
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
	}
}

// FetchSummary issues GET /wrapped_gastos with the token header.
func (c *Client) FetchSummary(ctx context.Context, q core.Query) (core.WrappedSummary, error) {
	var out core.WrappedSummary
	if c.token == "" {
		return out, ErrEmptyToken
	}

	params := url.Values{}
	params.Set("desde", q.Desde)
	params.Set("hasta", q.Hasta)
	params.Set("modo", q.Modo.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+SummaryPath+"?"+params.Encode(), nil)
	if err != nil {
		return out, fmt.Errorf("build summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", c.token)

	if err := c.do(req, SummaryPath, &out); err != nil {
		return core.WrappedSummary{}, err
	}
	return out, nil
}

type predictionRequest struct {
	ClientID string `json:"id_cliente"`
	Token    string `json:"token"`
}

// FetchPredictions issues POST /predict_gastos_recurrentes for clientID.
func (c *Client) FetchPredictions(ctx context.Context, clientID string) (core.PredictionSummary, error) {
	var out core.PredictionSummary
	if c.token == "" {
		return out, ErrEmptyToken
	}

	body, err := json.Marshal(predictionRequest{ClientID: clientID, Token: c.token})
	if err != nil {
		return out, fmt.Errorf("marshal prediction request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PredictionsPath, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, PredictionsPath, &out); err != nil {
		return core.PredictionSummary{}, err
	}
	return out, nil
}

func (c *Client) do(req *http.Request, endpoint string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	c.structured.LogBackendCall(req.Context(), endpoint, resp.StatusCode, time.Since(start).Milliseconds())

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s response (status=%d): %w", endpoint, resp.StatusCode, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
