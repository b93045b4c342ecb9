package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/health-planner/internal/config"
)

func TestCORS_Preflight(t *testing.T) {
	tests := []struct {
		name        string
		origins     []string
		origin      string
		wantAllowed bool
	}{
		{"allowed origin", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"trailing slash in config", []string{"https://app.example.com/"}, "https://app.example.com", true},
		{"wildcard", []string{"*"}, "https://any.example.org", true},
		{"disallowed origin", []string{"https://app.example.com"}, "https://evil.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{CORSAllowedOrigins: tt.origins}
			handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not be called for preflight")
			}))

			req := httptest.NewRequest(http.MethodOptions, "/v1/scenarios/generate", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d", rr.Code)
			}

			gotOrigin := rr.Header().Get("Access-Control-Allow-Origin")
			if tt.wantAllowed {
				if gotOrigin != tt.origin {
					t.Errorf("expected Allow-Origin=%s, got %q", tt.origin, gotOrigin)
				}
				if rr.Header().Get("Access-Control-Allow-Methods") != corsAllowMethods {
					t.Error("expected Allow-Methods header to be set")
				}
				if got := rr.Header().Get("Access-Control-Max-Age"); got != "600" {
					t.Errorf("expected Max-Age=600, got %q", got)
				}
			} else if gotOrigin != "" {
				t.Errorf("expected no Allow-Origin header, got %q", gotOrigin)
			}
		})
	}
}

func TestCORS_AllowedOriginOnNormalRequest(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins:   []string{"https://app.example.com"},
		CORSAllowCredentials: true,
	}

	handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/reports", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected Allow-Credentials=true, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != corsExposeHeaders {
		t.Errorf("expected Expose-Headers for downloads, got %q", got)
	}
}

func TestCORS_PassThroughWithoutCORSHeaders(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"https://app.example.com"}}

	for _, origin := range []string{"", "https://evil.com"} {
		innerCalled := false
		handler := CORSMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			innerCalled = true
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/v1/profiles", nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !innerCalled {
			t.Errorf("origin %q: expected inner handler to be called", origin)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("origin %q: expected no Allow-Origin header, got %q", origin, got)
		}
	}
}
