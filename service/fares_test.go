package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFetchFares_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tarifas-paradas/ruta/7" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"id": 1, "tipoAsiento": "NORMAL", "aplica": false, "valor": 3},
  {"id": "2", "tipoAsiento": "NORMAL", "aplica": true, "valor": "4.00"},
  {"id": 3, "tipo": "VIP", "aplica": 1, "valor": 6.5}
]`))
	}))
	defer server.Close()

	client := newTestClient(server, nil)

	fares, err := client.FetchFares(context.Background(), "7")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fares) != 3 {
		t.Fatalf("expected 3 fares, got %d", len(fares))
	}
	if fares[1].ID != "2" || !fares[1].Applies || !fares[1].Value.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("unexpected fare: %+v", fares[1])
	}
	if fares[2].SeatType != "VIP" || !fares[2].Applies {
		t.Fatalf("unexpected fare: %+v", fares[2])
	}
}

func TestFetchFares_EmptyRouteSkipsNetwork(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
	}))
	defer server.Close()

	client := newTestClient(server, nil)

	fares, err := client.FetchFares(context.Background(), "  ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fares) != 0 {
		t.Fatalf("expected no fares, got %d", len(fares))
	}
	if attempts != 0 {
		t.Fatalf("expected no request, got %d", attempts)
	}
}

func TestFetchFares_UnknownRouteIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server, nil)

	fares, err := client.FetchFares(context.Background(), "7")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(fares) != 0 {
		t.Fatalf("expected no fares, got %d", len(fares))
	}
}

func TestFetchFares_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server, nil)

	_, err := client.FetchFares(context.Background(), "7")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
