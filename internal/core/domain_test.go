package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQueryValidate(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		err  error
	}{
		{"valid", Query{"2020-01-01", "2024-12-31", ModeMerchant}, nil},
		{"same day", Query{"2024-05-01", "2024-05-01", ModeMerchantCategory}, nil},
		{"bad desde", Query{"2020/01/01", "2024-12-31", ModeMerchant}, ErrInvalidDate},
		{"bad hasta", Query{"2020-01-01", "", ModeMerchant}, ErrInvalidDate},
		{"reversed", Query{"2024-12-31", "2020-01-01", ModeMerchant}, ErrInvalidRange},
		{"bad mode", Query{"2020-01-01", "2024-12-31", "tienda"}, ErrInvalidMode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.err == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestQueryKey(t *testing.T) {
	q := Query{"2020-01-01", "2024-12-31", ModeMerchant}
	if q.Key() != "2020-01-01|2024-12-31|comercio" {
		t.Fatalf("unexpected key %q", q.Key())
	}
	other := Query{"2020-01-01", "2024-12-31", ModeMerchantCategory}
	if q.Key() == other.Key() {
		t.Fatal("queries differing by mode must have distinct keys")
	}
}

func TestIconicPurchaseText(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
		ok      bool
	}{
		{"null", `{"comercio": "AMAZON", "mensaje": null}`, "", false},
		{"missing", `{"comercio": "AMAZON"}`, "", false},
		{"empty", `{"comercio": "AMAZON", "mensaje": ""}`, "", true},
		{"text", `{"comercio": "AMAZON", "mensaje": "hola"}`, "hola", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var p IconicPurchase
			if err := json.Unmarshal([]byte(tc.payload), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok := p.Text()
			if got != tc.want || ok != tc.ok {
				t.Fatalf("Text() = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}

	var nilPurchase *IconicPurchase
	if _, ok := nilPurchase.Text(); ok {
		t.Fatal("nil purchase has no message")
	}
}
