package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/health-planner/internal/auth"
	"github.com/fdg312/health-planner/internal/config"
	"github.com/fdg312/health-planner/internal/profiles"
	"github.com/fdg312/health-planner/internal/reports"
	"github.com/fdg312/health-planner/internal/scenarios"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                   8080,
		AuthMode:               "none",
		JWTSecret:              "test-secret",
		JWTIssuer:              "health-planner",
		JWTTTLMinutes:          60,
		ReportsMaxPerProfile:   50,
		PlannerMaxCustomMonths: 60,
		Blob:                   config.BlobConfig{Mode: config.BlobModeLocal},
	}
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func ownerProfileID(t *testing.T, h http.Handler, token string) string {
	t.Helper()

	w := do(t, h, http.MethodGet, "/v1/profiles", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list profiles: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp profiles.ProfilesResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode profiles: %v", err)
	}
	for _, p := range resp.Profiles {
		if p.Type == "owner" {
			return p.ID.String()
		}
	}
	t.Fatal("owner profile not found")
	return ""
}

func biometricsBody(profileID string) map[string]interface{} {
	return map[string]interface{}{
		"profile_id":     profileID,
		"full_name":      "Alex",
		"age":            30,
		"gender":         "male",
		"height_feet":    5,
		"height_inches":  10,
		"weight":         200,
		"activity_level": 1.55,
	}
}

func goalBody(profileID string) map[string]interface{} {
	return map[string]interface{}{
		"profile_id":          profileID,
		"primary_goal":        "weight_loss",
		"goal_weight":         180,
		"timeline":            "6",
		"sustainable_deficit": 300,
		"aggressive_deficit":  750,
		"workout_frequencies": []int{3},
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig())

	w := do(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" || resp["storage"] != "memory" || resp["blob"] != config.BlobModeLocal {
		t.Errorf("unexpected healthz response %v", resp)
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(testConfig())

	w := do(t, srv.Handler(), http.MethodPost, "/healthz", "", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestPlanningFlow(t *testing.T) {
	h := New(testConfig()).Handler()
	profileID := ownerProfileID(t, h, "")

	// Сценарии без снимка метрик невозможны
	if w := do(t, h, http.MethodPost, "/v1/scenarios/generate", "", goalBody(profileID)); w.Code != http.StatusConflict {
		t.Fatalf("generate without snapshot: expected 409, got %d", w.Code)
	}

	if w := do(t, h, http.MethodPost, "/v1/biometrics/calculate", "", biometricsBody(profileID)); w.Code != http.StatusOK {
		t.Fatalf("calculate: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w := do(t, h, http.MethodGet, "/v1/biometrics/summary?profile_id="+profileID, "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Alex") {
		t.Fatalf("summary: expected 200 with name, got %d: %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/v1/scenarios/generate", "", goalBody(profileID))
	if w.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var run scenarios.RunDTO
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if len(run.Scenarios) != 4 || run.Recommended == nil {
		t.Fatalf("expected 4 scenarios with a recommendation, got %+v", run.Result)
	}

	if w := do(t, h, http.MethodGet, "/v1/scenarios/current?profile_id="+profileID, "", nil); w.Code != http.StatusOK {
		t.Fatalf("current: expected 200, got %d", w.Code)
	}

	w = do(t, h, http.MethodPost, "/v1/reports", "", map[string]string{"profile_id": profileID, "format": "csv"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create report: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var report reports.ReportDTO
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	w = do(t, h, http.MethodGet, "/v1/reports/"+report.ID.String()+"/download", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), run.Recommended.Name) {
		t.Fatalf("expected recommended scenario in CSV, got %s", w.Body.String())
	}

	if w := do(t, h, http.MethodDelete, "/v1/reports/"+report.ID.String(), "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete report: expected 204, got %d", w.Code)
	}
}

func TestAuthRequiredFlow(t *testing.T) {
	cfg := testConfig()
	cfg.AuthMode = "dev"
	cfg.AuthEnabled = true
	cfg.AuthRequired = true
	h := New(cfg).Handler()

	if w := do(t, h, http.MethodGet, "/v1/profiles", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	login := func(userID string) auth.DevAuthResponse {
		w := do(t, h, http.MethodPost, "/v1/auth/dev", "", map[string]string{"user_id": userID})
		if w.Code != http.StatusOK {
			t.Fatalf("dev auth: expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp auth.DevAuthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode auth: %v", err)
		}
		return resp
	}

	alice := login("alice")
	bob := login("bob")

	if got := ownerProfileID(t, h, alice.AccessToken); got != alice.OwnerProfileID.String() {
		t.Fatalf("expected alice owner profile %s, got %s", alice.OwnerProfileID, got)
	}

	// Чужой профиль выглядит как несуществующий
	w := do(t, h, http.MethodPost, "/v1/biometrics/calculate", bob.AccessToken, biometricsBody(alice.OwnerProfileID.String()))
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign calculate: expected 404, got %d", w.Code)
	}

	if w := do(t, h, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz must stay public, got %d", w.Code)
	}
}

func TestRateLimitAppliesToRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	h := New(cfg).Handler()

	do(t, h, http.MethodGet, "/healthz", "", nil)
	if w := do(t, h, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}
