package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"wrapped/internal/core"
	"wrapped/internal/log"
)

const wrappedBody = `{
	"cliente_id": "c-42",
	"rango": "2020-01-01 a 2024-12-31",
	"moneda": "MXN",
	"total_gastado": 1500.5,
	"resumen_gastos": {"AMAZON": 900, "OXXO": 600.5},
	"resumen_categorias": {"digital": 900, "fisica": 600.5},
	"proporcion_essentials_vs_subs": [{"tipo": "Esenciales", "valor": 600.5}, {"tipo": "Suscripciones", "valor": 900}],
	"predictibilidad_por_categoria": [{"categoria": "SERVICIOS", "score": 88.5}],
	"compra_mas_iconica": {"fecha": "3 de May", "comercio": "AMAZON", "monto": 900, "mensaje": "Gran compra"}
}`

const predictionBody = `{
	"total_spending": 414.0,
	"per_merchant_spending": {"NETFLIX": 299},
	"predicted_subs": [{"comercio": "NETFLIX", "monto": 299, "anio": 2025, "mes": 1, "dia": 15}],
	"iconic_commerce": "OXXO",
	"iconic_count": 12
}`

var testQuery = core.Query{Desde: "2020-01-01", Hasta: "2024-12-31", Modo: core.ModeMerchant}

func TestClientFetchSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != SummaryPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query(); got.Get("desde") != "2020-01-01" || got.Get("hasta") != "2024-12-31" || got.Get("modo") != "comercio" {
			t.Errorf("unexpected query %v", got)
		}
		if r.Header.Get("token") != "secret" {
			t.Errorf("missing token header, got %q", r.Header.Get("token"))
		}
		_, _ = w.Write([]byte(wrappedBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second, log.Discard())
	got, err := c.FetchSummary(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("FetchSummary: %v", err)
	}
	if got.ClientID != "c-42" || got.Currency != "MXN" || got.ByMerchant["OXXO"] != 600.5 {
		t.Fatalf("unexpected summary %+v", got)
	}
	if len(got.Priorities) != 2 || got.Priorities[1].Type != "Suscripciones" {
		t.Fatalf("unexpected priorities %+v", got.Priorities)
	}
	if got.Iconic == nil || got.Iconic.Message == nil || *got.Iconic.Message != "Gran compra" {
		t.Fatalf("unexpected iconic purchase %+v", got.Iconic)
	}
}

func TestClientFetchPredictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PredictionsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["id_cliente"] != "c-42" || body["token"] != "secret" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(predictionBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, log.Discard())
	got, err := c.FetchPredictions(context.Background(), "c-42")
	if err != nil {
		t.Fatalf("FetchPredictions: %v", err)
	}
	if got.Total != 414 || len(got.Subscriptions) != 1 || got.Subscriptions[0].Day != 15 {
		t.Fatalf("unexpected predictions %+v", got)
	}
	if got.IconicMerchant != "OXXO" || got.IconicCount != 12 {
		t.Fatalf("unexpected iconic merchant %+v", got)
	}
}

func TestClientNon2xxBodyStillUsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Token inválido", "cliente_id": "x"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, log.Discard())
	got, err := c.FetchSummary(context.Background(), testQuery)
	if err != nil {
		t.Fatalf("non-2xx must not be an error, got %v", err)
	}
	if got.ClientID != "x" {
		t.Fatalf("expected body of the 401 response to be decoded, got %+v", got)
	}
}

func TestClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`Internal Server Error`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second, log.Discard())
	if _, err := c.FetchSummary(context.Background(), testQuery); err == nil {
		t.Fatal("expected decode error for non-JSON body")
	}
}

func TestClientEmptyTokenMakesNoRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, log.Discard())
	if _, err := c.FetchSummary(context.Background(), testQuery); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if _, err := c.FetchPredictions(context.Background(), "c-42"); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests, got %d", hits)
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "secret", time.Second, log.Discard())
	if _, err := c.FetchSummary(context.Background(), testQuery); err == nil {
		t.Fatal("expected transport error against a closed server")
	}
}

func TestClientHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 0, log.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.FetchSummary(ctx, testQuery); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
