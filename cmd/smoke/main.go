package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultAPIBase = "http://localhost:8080"
)

var (
	apiBase    string
	token      string
	profileID  string
	client     = &http.Client{Timeout: 30 * time.Second}
	createdIDs = make(map[string]string)
)

func main() {
	fmt.Println("=== Health Planner E2E Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimSuffix(getEnv("API_BASE_URL", defaultAPIBase), "/")
	token = getEnv("SMOKE_TOKEN", "")
	profileID = getEnv("SMOKE_PROFILE_ID", "")

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Token: %s\n", maskString(token))
	fmt.Printf("Profile ID: %s\n", maskString(profileID))
	fmt.Println()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Healthz", testHealthz},
		{"Dev Auth (optional)", testDevAuth},
		{"Get Profile ID", testGetProfileID},
		{"Calculate Biometrics", testCalculate},
		{"Ideal Weight", testIdealWeight},
		{"Generate Scenarios", testGenerateScenarios},
		{"Current Scenarios", testCurrentScenarios},
		{"Create Report (PDF)", testCreateReport},
		{"List Reports", testListReports},
		{"Download Report", testDownloadReport},
		{"Delete Report", testDeleteReport},
	}

	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	fmt.Println()
	if failed {
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz() error {
	return call("GET", "/healthz", nil, http.StatusOK, nil)
}

// testDevAuth получает токен через /v1/auth/dev, если SMOKE_TOKEN не задан.
// 404 означает, что сервер запущен с AUTH_MODE=none.
func testDevAuth() error {
	if token != "" {
		return nil
	}

	resp, err := send("POST", "/v1/auth/dev", map[string]string{"user_id": "smoke-user"})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	var result struct {
		AccessToken    string `json:"access_token"`
		OwnerProfileID string `json:"owner_profile_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}
	token = result.AccessToken
	if profileID == "" {
		profileID = result.OwnerProfileID
	}
	return nil
}

func testGetProfileID() error {
	if profileID != "" {
		return nil
	}

	var result struct {
		Profiles []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"profiles"`
	}
	if err := call("GET", "/v1/profiles", nil, http.StatusOK, &result); err != nil {
		return err
	}

	if len(result.Profiles) == 0 {
		return fmt.Errorf("no profiles found")
	}

	for _, p := range result.Profiles {
		if p.Type == "owner" {
			profileID = p.ID
			return nil
		}
	}

	profileID = result.Profiles[0].ID
	return nil
}

func testCalculate() error {
	payload := map[string]interface{}{
		"profile_id":     profileID,
		"full_name":      "Smoke Test",
		"age":            35,
		"gender":         "male",
		"height_feet":    5,
		"height_inches":  10,
		"weight":         200,
		"activity_level": 1.55,
		"body_fat":       24,
	}

	var result struct {
		Snapshot struct {
			BMI float64 `json:"bmi"`
			RMR float64 `json:"rmr"`
		} `json:"snapshot"`
	}
	if err := call("POST", "/v1/biometrics/calculate", payload, http.StatusOK, &result); err != nil {
		return err
	}
	if result.Snapshot.BMI <= 0 || result.Snapshot.RMR <= 0 {
		return fmt.Errorf("unexpected snapshot bmi=%.1f rmr=%.0f", result.Snapshot.BMI, result.Snapshot.RMR)
	}
	return nil
}

func testIdealWeight() error {
	payload := map[string]interface{}{"height_feet": 5, "height_inches": 10}
	return call("POST", "/v1/biometrics/ideal-weight", payload, http.StatusOK, nil)
}

func testGenerateScenarios() error {
	payload := map[string]interface{}{
		"profile_id":          profileID,
		"primary_goal":        "weight_loss",
		"goal_weight":         180,
		"timeline":            "6",
		"sustainable_deficit": 300,
		"aggressive_deficit":  750,
		"workout_frequencies": []int{3, 5},
	}

	var result struct {
		Scenarios []struct {
			Name string `json:"name"`
		} `json:"scenarios"`
		RecommendationStatus string `json:"recommendation_status"`
	}
	if err := call("POST", "/v1/scenarios/generate", payload, http.StatusOK, &result); err != nil {
		return err
	}
	if len(result.Scenarios) == 0 {
		return fmt.Errorf("no scenarios returned")
	}
	if result.RecommendationStatus == "" {
		return fmt.Errorf("recommendation_status is empty")
	}
	return nil
}

func testCurrentScenarios() error {
	return call("GET", "/v1/scenarios/current?profile_id="+profileID, nil, http.StatusOK, nil)
}

func testCreateReport() error {
	payload := map[string]interface{}{
		"profile_id": profileID,
		"format":     "pdf",
	}

	var result struct {
		ID        string `json:"id"`
		SizeBytes int64  `json:"size_bytes"`
	}
	if err := call("POST", "/v1/reports", payload, http.StatusCreated, &result); err != nil {
		return err
	}

	if result.SizeBytes < 10 {
		return fmt.Errorf("report size is %d bytes (too small)", result.SizeBytes)
	}

	createdIDs["report"] = result.ID
	return nil
}

func testListReports() error {
	var result struct {
		Reports []struct {
			ID string `json:"id"`
		} `json:"reports"`
		Total int `json:"total"`
	}
	if err := call("GET", "/v1/reports?profile_id="+profileID, nil, http.StatusOK, &result); err != nil {
		return err
	}

	if len(result.Reports) == 0 || result.Total == 0 {
		return fmt.Errorf("no reports found")
	}
	return nil
}

func testDownloadReport() error {
	reportID := createdIDs["report"]
	if reportID == "" {
		return fmt.Errorf("no report ID to download")
	}

	req, err := http.NewRequest("GET", apiBase+"/v1/reports/"+reportID+"/download", nil)
	if err != nil {
		return err
	}
	addAuth(req)

	// Redirect проверяем сами, чтобы не отправить Authorization в S3
	noRedirect := *client
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return checkPDF(resp.Body)

	case http.StatusFound:
		location := resp.Header.Get("Location")
		if location == "" {
			return fmt.Errorf("redirect without Location header")
		}

		getResp, err := client.Get(location)
		if err != nil {
			return fmt.Errorf("failed to follow redirect: %w", err)
		}
		defer getResp.Body.Close()

		if getResp.StatusCode != http.StatusOK {
			return fmt.Errorf("redirect failed: %w", statusError(getResp))
		}
		return checkPDF(getResp.Body)

	default:
		return statusError(resp)
	}
}

func testDeleteReport() error {
	reportID := createdIDs["report"]
	if reportID == "" {
		return fmt.Errorf("no report ID to delete")
	}

	return call("DELETE", "/v1/reports/"+reportID, nil, http.StatusNoContent, nil)
}

// Helper functions

func send(method, path string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	addAuth(req)

	return client.Do(req)
}

// call выполняет запрос, проверяет статус и декодирует JSON в out (если out != nil)
func call(method, path string, payload interface{}, wantStatus int, out interface{}) error {
	resp, err := send(method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
}

func checkPDF(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return fmt.Errorf("downloaded file is not a PDF (%d bytes)", len(data))
	}
	return nil
}

func addAuth(req *http.Request) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
