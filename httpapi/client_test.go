package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetSendsAPIKeyAndQuery(t *testing.T) {
	var gotKey, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := New(server.URL, WithAPIKey("secret"))

	var out struct {
		Status string `json:"status"`
	}
	err := client.Get(context.Background(), "/health", map[string]string{
		"ticker": "BTC-100K",
		"empty":  "",
	}, &out)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotKey != "secret" {
		t.Errorf("expected api key header, got %q", gotKey)
	}
	if gotQuery != "ticker=BTC-100K" {
		t.Errorf("empty params should be omitted, got query %q", gotQuery)
	}
	if out.Status != "ok" {
		t.Errorf("unexpected decoded body: %+v", out)
	}
}

func TestPostEncodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		if body["name"] != "test" {
			t.Errorf("unexpected body: %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]bool{"accepted": true})
	}))
	defer server.Close()

	client := New(server.URL)

	var out struct {
		Accepted bool `json:"accepted"`
	}
	if err := client.Post(context.Background(), "/submit", map[string]string{"name": "test"}, &out); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if !out.Accepted {
		t.Error("expected accepted response")
	}
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"bad ticker"}`))
	}))
	defer server.Close()

	client := New(server.URL)

	err := client.Get(context.Background(), "/market/NOPE", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unexpected status: %d", apiErr.StatusCode)
	}
	if apiErr.Body != `{"error":"bad ticker"}` {
		t.Errorf("body not preserved verbatim: %q", apiErr.Body)
	}
}

func TestSetAPIKeyRotation(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, WithAPIKey("old"))
	client.SetAPIKey("new")

	if err := client.Get(context.Background(), "/", nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotKey != "new" {
		t.Errorf("expected rotated key, got %q", gotKey)
	}
}
