package frankfurter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestClient_Rates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest" || r.URL.Query().Get("from") != "EUR" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2023-10-13","rates":{"USD":1.0533,"GBP":0.8665}}`))
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	client := NewClient(srv.URL+"/", 5*time.Second, log)

	rates, err := client.Rates(context.Background(), "eur")
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if rates["USD"] != 1.0533 || rates["GBP"] != 0.8665 {
		t.Errorf("rates = %v", rates)
	}
}

func TestClient_RatesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, ``},
		{"empty table", http.StatusOK, `{"base":"EUR","rates":{}}`},
		{"malformed body", http.StatusOK, `{"rates":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			log, _ := test.NewNullLogger()
			if _, err := NewClient(srv.URL, time.Second, log).Rates(context.Background(), "EUR"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
