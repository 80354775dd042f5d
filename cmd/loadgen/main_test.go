package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// mockTransport records the last request and returns a configurable status.
type mockTransport struct {
	mu         sync.Mutex
	status     int
	lastURL    string
	lastMethod string
	reqCount   int
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.lastURL = req.URL.String()
	m.lastMethod = req.Method
	m.reqCount++
	m.mu.Unlock()
	return &http.Response{
		StatusCode: m.status,
		Body:       http.NoBody,
		Header:     make(http.Header),
	}, nil
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	validPath := filepath.Join(dir, "valid.json")
	if err := os.WriteFile(validPath, []byte(`{"keywords":["bakery"," ","florist"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	emptyPath := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(emptyPath, []byte(`{"keywords":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	badJSONPath := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(badJSONPath, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		path     string
		wantErr  bool
		keywords int
	}{
		{"valid", validPath, false, 2},
		{"missing", filepath.Join(dir, "missing.json"), true, 0},
		{"empty keywords", emptyPath, true, 0},
		{"invalid json", badJSONPath, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig() err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(cfg.Keywords) != tt.keywords {
				t.Errorf("len(Keywords) = %d, want %d", len(cfg.Keywords), tt.keywords)
			}
			if tt.name == "empty keywords" && !errors.Is(err, errNoKeywords) {
				t.Errorf("empty keywords: err = %v, want errNoKeywords", err)
			}
		})
	}
}

func TestSubmitKeyword(t *testing.T) {
	transport := &mockTransport{status: http.StatusAccepted}
	client := &http.Client{Transport: transport}
	baseURL, _ := url.Parse("http://api.test")

	if !submitKeyword(context.Background(), client, baseURL, "restaurants in Zurich", zerolog.Nop()) {
		t.Fatal("expected keyword to be accepted")
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if transport.lastMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", transport.lastMethod)
	}
	parsed, _ := url.Parse(transport.lastURL)
	wantQuery := url.Values{"keyword": {"restaurants in Zurich"}}.Encode()
	if parsed.Path != "/scrape" || parsed.RawQuery != wantQuery {
		t.Errorf("url = %s (path=%q query=%q), want path=/scrape query=%q", transport.lastURL, parsed.Path, parsed.RawQuery, wantQuery)
	}
}

func TestSubmitKeyword_nonAccepted(t *testing.T) {
	transport := &mockTransport{status: http.StatusTooManyRequests}
	client := &http.Client{Transport: transport}
	baseURL, _ := url.Parse("http://api.test")
	if submitKeyword(context.Background(), client, baseURL, "bakery", zerolog.Nop()) {
		t.Fatal("expected rejection")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "keywords.json")
	if err := os.WriteFile(configPath, []byte(`{"keywords":["a","b","c"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	transport := &mockTransport{status: http.StatusAccepted}
	client := &http.Client{Transport: transport}

	if err := run(context.Background(), configPath, "http://api.test", 2, client, zerolog.Nop()); err != nil {
		t.Fatalf("run() err = %v", err)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if transport.reqCount != 3 {
		t.Errorf("request count = %d, want 3", transport.reqCount)
	}
}

func TestRun_badConfigPath(t *testing.T) {
	if err := run(context.Background(), "/nonexistent/config.json", "http://localhost:8080", 1, nil, zerolog.Nop()); err == nil {
		t.Fatal("run() expected error for missing config")
	}
}

func TestRun_invalidAPIBase(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "keywords.json")
	if err := os.WriteFile(configPath, []byte(`{"keywords":["a"]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), configPath, "://invalid", 1, nil, zerolog.Nop()); err == nil {
		t.Fatal("run() expected error for invalid api base")
	}
}
