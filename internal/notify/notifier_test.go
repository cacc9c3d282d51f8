package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(url string) NotifierConfig {
	c := DefaultNotifierConfig(url, "test-secret")
	c.MaxElapsed = 2 * time.Second
	c.RequestTimeout = time.Second
	return c
}

func TestDeliverSignsBody(t *testing.T) {
	var gotSig string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), nil)
	res := n.Deliver(context.Background(), map[string]string{"event": "escalation"})
	if !res.Delivered {
		t.Fatalf("expected delivery, got %+v", res)
	}
	if res.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", res.Attempts)
	}
	if want := Sign(gotBody, "test-secret"); gotSig != want {
		t.Fatalf("signature mismatch: got %q, want %q", gotSig, want)
	}
}

func TestDeliverRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), nil)
	res := n.Deliver(context.Background(), map[string]string{"event": "escalation"})
	if !res.Delivered {
		t.Fatalf("expected eventual delivery, got %+v", res)
	}
	if res.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", res.Attempts)
	}
}

func TestDeliverNeverRetriesClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(testConfig(srv.URL), nil)
	res := n.Deliver(context.Background(), map[string]string{"event": "escalation"})
	if res.Delivered {
		t.Fatal("400 must not count as delivered")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("4xx must not retry, server saw %d calls", got)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 recorded, got %d", res.StatusCode)
	}
	if res.LastError == "" {
		t.Fatal("expected LastError populated")
	}
}

func TestDeliverReportsUnreachableTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cfg := testConfig(url)
	cfg.MaxAttempts = 2
	cfg.MaxElapsed = time.Second
	n := NewNotifier(cfg, nil)

	res := n.Deliver(context.Background(), map[string]string{"event": "escalation"})
	if res.Delivered {
		t.Fatal("delivery to a closed server must fail")
	}
	if res.Attempts == 0 {
		t.Fatal("expected at least one attempt")
	}
	if res.LastError == "" {
		t.Fatal("expected LastError populated")
	}
}

func TestSignIsStable(t *testing.T) {
	a := Sign([]byte(`{"x":1}`), "s")
	b := Sign([]byte(`{"x":1}`), "s")
	if a != b {
		t.Fatal("signature must be deterministic")
	}
	if Sign([]byte(`{"x":1}`), "other") == a {
		t.Fatal("different secrets must produce different signatures")
	}
	if len(a) != len("sha256=")+64 {
		t.Fatalf("unexpected signature shape: %q", a)
	}
}
