package scenarios

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/health-planner/internal/biometrics"
	"github.com/fdg312/health-planner/internal/sessionctx"
	"github.com/fdg312/health-planner/internal/storage/memory"
	"github.com/google/uuid"
)

type testEnv struct {
	handler *Handler
	metrics *biometrics.Service
	store   *memory.MemoryStorage
	ownerID uuid.UUID
}

func setupEnv(t *testing.T) testEnv {
	t.Helper()
	store := memory.New()
	metrics := biometrics.NewService(store, store)

	profiles, _ := store.ListProfiles(context.Background())
	return testEnv{
		handler: NewHandler(NewService(store, store, metrics, 60)),
		metrics: metrics,
		store:   store,
		ownerID: profiles[0].ID,
	}
}

func testBiometrics() *biometrics.Input {
	return &biometrics.Input{
		FullName:      "Alex",
		Age:           30,
		Gender:        biometrics.GenderMale,
		HeightFeet:    5,
		HeightInches:  10,
		Weight:        200,
		ActivityLevel: 1.55,
	}
}

func testGoalRequest(profileID uuid.UUID) GoalRequest {
	goalWeight := 180.0
	return GoalRequest{
		ProfileID:          profileID,
		PrimaryGoal:        "weight_loss",
		GoalWeight:         &goalWeight,
		Timeline:           "6",
		SustainableDeficit: intPtr(300),
		AggressiveDeficit:  intPtr(750),
		WorkoutFrequencies: []int{3},
	}
}

func doGenerate(t *testing.T, h *Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/v1/scenarios/generate", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.HandleGenerate(w, req)
	return w
}

func doCurrent(h *Handler, profileID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/scenarios/current?profile_id="+profileID, nil)
	w := httptest.NewRecorder()
	h.HandleCurrent(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	return resp.Error.Code
}

func TestHandleGenerate_WithInlineBiometrics(t *testing.T) {
	env := setupEnv(t)

	req := testGoalRequest(env.ownerID)
	req.Biometrics = testBiometrics()

	w := doGenerate(t, env.handler, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RunDTO
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Scenarios) != 4 {
		t.Fatalf("expected 4 scenarios, got %d", len(resp.Scenarios))
	}
	if resp.RecommendationStatus != RecommendationSelected || resp.Recommended == nil {
		t.Fatalf("expected recommendation, got %+v", resp.Result)
	}
	if resp.Recommended.Name != "Sustainable + 3x/week Exercise" {
		t.Errorf("unexpected recommendation %q", resp.Recommended.Name)
	}
	if resp.Goal.CurrentWeight != 200 || resp.Goal.TargetMonths != 6 {
		t.Errorf("unexpected goal summary %+v", resp.Goal)
	}

	session, _ := env.store.GetSession(context.Background(), env.ownerID)
	if session == nil || len(session.Result) == 0 || session.GeneratedAt == nil {
		t.Fatal("expected run to be stored")
	}
	if strings.Contains(string(session.Goal), "biometrics") {
		t.Errorf("stored goal must not embed biometrics: %s", session.Goal)
	}
}

func TestHandleGenerate_UsesStoredSnapshot(t *testing.T) {
	env := setupEnv(t)

	if _, err := env.metrics.Calculate(context.Background(), biometrics.CalculateRequest{
		ProfileID: env.ownerID,
		Input:     *testBiometrics(),
	}); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	req := testGoalRequest(env.ownerID)
	req.Timeline = "custom"
	req.CustomMonths = intPtr(1)

	w := doGenerate(t, env.handler, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RunDTO
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Recommended == nil || resp.Recommended.RecommendationReason != ReasonFastestSustainable {
		t.Errorf("expected fastest sustainable fallback, got %+v", resp.Recommended)
	}
}

func TestHandleGenerate_SnapshotRequired(t *testing.T) {
	env := setupEnv(t)

	w := doGenerate(t, env.handler, testGoalRequest(env.ownerID))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "snapshot_required" {
		t.Errorf("expected snapshot_required, got %s", code)
	}
}

func TestHandleGenerate_InvalidGoal(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GoalRequest)
	}{
		{"missing sustainable deficit", func(r *GoalRequest) { r.SustainableDeficit = nil }},
		{"missing goal weight", func(r *GoalRequest) { r.GoalWeight = nil }},
		{"unknown timeline", func(r *GoalRequest) { r.Timeline = "5" }},
		{"custom too long", func(r *GoalRequest) { r.Timeline = "custom"; r.CustomMonths = intPtr(61) }},
		{"bad frequency", func(r *GoalRequest) { r.WorkoutFrequencies = []int{7} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(t)
			req := testGoalRequest(env.ownerID)
			req.Biometrics = testBiometrics()
			tt.mutate(&req)

			w := doGenerate(t, env.handler, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if code := errorCode(t, w); code != "invalid_goal" {
				t.Errorf("expected invalid_goal, got %s", code)
			}

			// Неверная цель не должна пересчитывать снимок
			session, _ := env.store.GetSession(context.Background(), env.ownerID)
			if session != nil {
				t.Error("invalid goal must not touch the session")
			}
		})
	}
}

func TestHandleGenerate_ZeroDeficitIsAllowed(t *testing.T) {
	env := setupEnv(t)

	req := testGoalRequest(env.ownerID)
	req.Biometrics = testBiometrics()
	req.SustainableDeficit = intPtr(0)

	w := doGenerate(t, env.handler, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp RunDTO
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Excluded) != 1 || resp.Excluded[0].Name != "Diet Only (Sustainable)" {
		t.Errorf("expected the zero deficit diet plan to be excluded, got %+v", resp.Excluded)
	}
}

func TestHandleGenerate_InvalidBiometrics(t *testing.T) {
	env := setupEnv(t)

	req := testGoalRequest(env.ownerID)
	req.Biometrics = testBiometrics()
	req.Biometrics.Weight = 0

	w := doGenerate(t, env.handler, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "invalid_input" {
		t.Errorf("expected invalid_input, got %s", code)
	}
}

func TestHandleGenerate_InvalidJSON(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/scenarios/generate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	env.handler.HandleGenerate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestHandleGenerate_ForeignProfile(t *testing.T) {
	env := setupEnv(t)

	req := testGoalRequest(env.ownerID)
	req.Biometrics = testBiometrics()
	raw, _ := json.Marshal(req)

	r := httptest.NewRequest(http.MethodPost, "/v1/scenarios/generate", bytes.NewReader(raw))
	r = r.WithContext(sessionctx.WithOwnerID(r.Context(), "someone-else"))
	w := httptest.NewRecorder()
	env.handler.HandleGenerate(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestHandleCurrent(t *testing.T) {
	env := setupEnv(t)
	id := env.ownerID.String()

	if w := doCurrent(env.handler, id); w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 without snapshot, got %d", w.Code)
	}

	env.metrics.Calculate(context.Background(), biometrics.CalculateRequest{ProfileID: env.ownerID, Input: *testBiometrics()})

	w := doCurrent(env.handler, id)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before generation, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "run_not_found" {
		t.Errorf("expected run_not_found, got %s", code)
	}

	doGenerate(t, env.handler, testGoalRequest(env.ownerID))

	w = doCurrent(env.handler, id)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp RunDTO
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.ProfileID != env.ownerID || len(resp.Scenarios) != 4 {
		t.Errorf("unexpected run %+v", resp)
	}
}

func TestHandleCurrent_RecalculationClearsRun(t *testing.T) {
	env := setupEnv(t)

	req := testGoalRequest(env.ownerID)
	req.Biometrics = testBiometrics()
	if w := doGenerate(t, env.handler, req); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	env.metrics.Calculate(context.Background(), biometrics.CalculateRequest{ProfileID: env.ownerID, Input: *testBiometrics()})

	if w := doCurrent(env.handler, env.ownerID.String()); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 after recalculation, got %d", w.Code)
	}
}

func TestHandleCurrent_BadQuery(t *testing.T) {
	env := setupEnv(t)

	for _, id := range []string{"", "not-a-uuid"} {
		if w := doCurrent(env.handler, id); w.Code != http.StatusBadRequest {
			t.Errorf("profile_id=%q: expected status 400, got %d", id, w.Code)
		}
	}
	if w := doCurrent(env.handler, uuid.New().String()); w.Code != http.StatusNotFound {
		t.Errorf("unknown profile: expected status 404, got %d", w.Code)
	}
}
