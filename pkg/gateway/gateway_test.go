package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDo_AttachesCredentialHeaders(t *testing.T) {
	var gotKey, gotSecret, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotSecret = r.Header.Get("X-API-Secret")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	client := New(ts.URL, Credential{Key: "k123", Secret: "s456"})
	raw, err := client.Do(context.Background(), "GET", "/health", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"status":"ok"}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if gotKey != "k123" || gotSecret != "s456" {
		t.Fatalf("credential headers missing: key=%q secret=%q", gotKey, gotSecret)
	}
	if gotContentType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotContentType)
	}
}

func TestDo_RemoteErrorCarriesMessageAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"user with this email already exists"}`))
	}))
	defer ts.Close()

	client := New(ts.URL, Credential{})
	_, err := client.Do(context.Background(), "POST", "/v1/admin/users", nil, map[string]string{"email": "a@b.com"})
	if err == nil {
		t.Fatal("expected error")
	}

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if re.Status != 409 {
		t.Fatalf("expected status 409, got %d", re.Status)
	}
	if re.Message != "user with this email already exists" {
		t.Fatalf("unexpected message: %q", re.Message)
	}
	if re.RawBody == "" {
		t.Fatal("raw body must be preserved")
	}
}

func TestDo_MissingErrorFieldDegradesToStatusText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	client := New(ts.URL, Credential{})
	_, err := client.Do(context.Background(), "GET", "/v1/admin/users/999", nil, nil)

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if re.Message != "Not Found" {
		t.Fatalf("expected status text fallback, got %q", re.Message)
	}
}

func TestDo_TransportFailureHasStatusZero(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	client := New(ts.URL, Credential{})
	_, err := client.Do(context.Background(), "GET", "/health", nil, nil)
	if err == nil {
		t.Fatal("expected error against a closed server")
	}

	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RemoteError, got %T", err)
	}
	if re.Status != 0 {
		t.Fatalf("transport failures must carry status 0, got %d", re.Status)
	}
	if re.Message == "" {
		t.Fatal("transport failure needs a description")
	}
}
