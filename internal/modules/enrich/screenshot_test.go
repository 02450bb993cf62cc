package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appcfg "github.com/folio-space/core/internal/config"
	"go.uber.org/zap"
)

func TestValidateWebsiteURL(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"https://alice.dev", true},
		{"http://alice.dev/portfolio", true},
		{"  https://alice.dev  ", true},
		{"ftp://alice.dev", false},
		{"alice.dev", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		_, err := validateWebsiteURL(tt.raw)
		if (err == nil) != tt.ok {
			t.Errorf("validateWebsiteURL(%q) err = %v, want ok=%v", tt.raw, err, tt.ok)
		}
	}
}

func TestResolveInvalidURL(t *testing.T) {
	r := NewScreenshotResolver(appcfg.ScreenshotConfig{}, zap.NewNop())
	got, err := r.Resolve(context.Background(), "not a url")
	if !errors.Is(err, errInvalidWebsiteURL) {
		t.Fatalf("err = %v, want errInvalidWebsiteURL", err)
	}
	if got.Available() {
		t.Errorf("result should be unavailable, got %+v", got)
	}
}

func TestResolvePrimarySucceeds(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("primary provider should receive POST, got %s", r.Method)
		}
		fmt.Fprint(w, `{"screenshot_url":"https://cdn.example/shot.png"}`)
	}))
	defer primary.Close()

	r := NewScreenshotResolver(appcfg.ScreenshotConfig{
		Primary: appcfg.ScreenshotProvider{Endpoint: primary.URL, APIKey: "k"},
	}, zap.NewNop())

	got, err := r.Resolve(context.Background(), "https://alice.dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != ScreenshotPrimary {
		t.Errorf("Source = %q, want primary", got.Source)
	}
	if got.Reference != "https://cdn.example/shot.png" {
		t.Errorf("Reference = %q", got.Reference)
	}
}

func TestResolveFallsBackToSecondary(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("block_ads") != "true" || q.Get("block_cookie_banners") != "true" || q.Get("block_trackers") != "true" {
			t.Errorf("missing blocking params: %v", q)
		}
		if q.Get("delay") != "2" {
			t.Errorf("delay = %q, want 2", q.Get("delay"))
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer secondary.Close()

	r := NewScreenshotResolver(appcfg.ScreenshotConfig{
		Primary:   appcfg.ScreenshotProvider{Endpoint: primary.URL, APIKey: "k"},
		Secondary: appcfg.ScreenshotProvider{Endpoint: secondary.URL, APIKey: "k2"},
	}, zap.NewNop())

	got, err := r.Resolve(context.Background(), "https://alice.dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Source != ScreenshotSecondary {
		t.Errorf("Source = %q, want secondary", got.Source)
	}
	if !strings.HasPrefix(got.Reference, "data:image/png;base64,") {
		t.Errorf("Reference = %q, want a png data url", got.Reference)
	}
}

func TestResolveBothProvidersFailIsUnavailableNotError(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	// Secondary has no credential configured.
	r := NewScreenshotResolver(appcfg.ScreenshotConfig{
		Primary: appcfg.ScreenshotProvider{Endpoint: primary.URL, APIKey: "k"},
	}, zap.NewNop())

	got, err := r.Resolve(context.Background(), "https://alice.dev")
	if err != nil {
		t.Fatalf("both providers failing must not surface an error, got %v", err)
	}
	if got.Source != ScreenshotUnavailable || got.Reference != "" {
		t.Errorf("got %+v, want unavailable with empty reference", got)
	}
}
