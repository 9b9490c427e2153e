package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	// the upload base must be in place before initDB creates it
	t.Setenv("UPLOAD_BASE", t.TempDir())
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Register admin
	regBody, _ := json.Marshal(map[string]string{"name": "Admin Two", "email": "admin2@solar.local", "password": "pass123"})
	resp := performRequest(r, http.MethodPost, "/api/admin/register", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("admin register failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Admin login
	loginBody, _ := json.Marshal(map[string]string{"email": "admin2@solar.local", "password": "pass123"})
	resp = performRequest(r, http.MethodPost, "/api/admin/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("admin login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 3. Submit a contact (public)
	contactBody, _ := json.Marshal(map[string]string{"name": "Visitor", "email": "v@example.com", "phone": "9999", "message": "call me"})
	resp = performRequest(r, http.MethodPost, "/api/add", bytes.NewBuffer(contactBody), "", "application/json")
	if resp.Code != 201 {
		t.Fatalf("submit contact failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. Manual calculation (public)
	calcBody, _ := json.Marshal(map[string]any{"usage": 300, "tariff": 8})
	resp = performRequest(r, http.MethodPost, "/api/calculate", bytes.NewBuffer(calcBody), "", "application/json")
	if resp.Code != 201 {
		t.Fatalf("calculate failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var calcResp struct {
		Breakdown struct {
			MonthlyCost    float64 `json:"monthlyCost"`
			MonthlySavings float64 `json:"monthlySavings"`
			YearlySavings  float64 `json:"yearlySavings"`
		} `json:"breakdown"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &calcResp)
	if calcResp.Breakdown.MonthlyCost != 2400 || calcResp.Breakdown.MonthlySavings != 10800 {
		t.Fatalf("unexpected breakdown: %+v", calcResp.Breakdown)
	}

	// 5. Invalid calculation input is rejected with the offending field
	badBody, _ := json.Marshal(map[string]any{"usage": 300, "tariff": 8, "sunlight": 0})
	resp = performRequest(r, http.MethodPost, "/api/calculate", bytes.NewBuffer(badBody), "", "application/json")
	if resp.Code != 400 {
		t.Fatalf("expected 400 for zero sunlight got %d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Admin list + stats
	resp = performRequest(r, http.MethodGet, "/api/calculate", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list calculations failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/calculate/stats", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("stats failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/add", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list contacts failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/api/calculate", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
