package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	body := []byte("%PDF-1.4 test content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	fetcher := NewSourceFetcher(5 * time.Second)
	data, err := fetcher.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(body) {
		t.Fatalf("unexpected body: %q", data)
	}
}

func TestFetchNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewSourceFetcher(5 * time.Second)
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", fe.StatusCode)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	fetcher := NewSourceFetcher(time.Second)
	_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/missing.pdf")
	if err == nil {
		t.Fatal("expected connection error")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewSourceFetcher(5 * time.Second)
	if _, err := fetcher.Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
