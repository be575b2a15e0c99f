package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/commitment"
	httpH "github.com/yungbote/pulsenet-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulsenet-backend/internal/http/middleware"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/registry"
	"github.com/yungbote/pulsenet-backend/internal/services"
	"github.com/yungbote/pulsenet-backend/internal/store"
)

const (
	testSecret  = "router-test-secret"
	wallet      = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	otherWallet = "0x0000000000000000000000000000000000000b0b"
	device      = "device-fingerprint-0000000000000000000001"
	otherDevice = "device-fingerprint-0000000000000000000002"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details string          `json:"details"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	log := logger.Nop()
	metrics := observability.NewMetrics()

	st, err := store.Open(ctx, store.NewMemoryLog(), log)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	reg, err := registry.Open(ctx, registry.NewMemoryBackend(), log)
	if err != nil {
		t.Fatalf("registry.Open: %v", err)
	}
	relay := ledger.Unavailable{}

	submissions := services.NewSubmissionService(log, commitment.NewSimulatedScheme(), st, relay, nil, metrics, services.SubmissionConfig{RelayTimeout: time.Second})
	stats := services.NewStatsService(log, st, relay, nil, metrics, time.Second)

	return NewRouter(RouterConfig{
		Log:             log,
		MaxRequestBytes: maxBytes,
		Metrics:         metrics,
		MetricsEnabled:  true,
		AdminAuth:       httpMW.NewAdminAuthMiddleware(log, testSecret),
		DataHandler:     httpH.NewDataHandler(log, submissions, stats),
		UserHandler:     httpH.NewUserHandler(log, services.NewRegistrationService(log, reg, metrics)),
		RewardsHandler:  httpH.NewRewardsHandler(log, services.NewRewardsService(log, st, relay, metrics, time.Second)),
		HealthHandler:   httpH.NewHealthHandler(services.NewHealthService(st, relay), "test"),
	})
}

func do(t *testing.T, r *gin.Engine, method, path, body string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestSubmitDegradesWithoutChain(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	body := `{"userAddress":"` + wallet + `","heartRate":72,"sleepHours":7.5,"steps":8000}`
	w, env := do(t, r, http.MethodPost, "/api/data/submit", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got=%d want=%d body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	if !env.Success || env.Message != "Health data submitted successfully" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	var res services.SubmitResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !res.Degraded || res.Blockchain.Success || res.User.SubmissionCount != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.HasPrefix(res.ZKProof.Proof, "zkp-"+res.DataHash[2:10]) {
		t.Fatalf("proof %q does not carry hash prefix of %q", res.ZKProof.Proof, res.DataHash)
	}

	w, env = do(t, r, http.MethodGet, "/api/data/stats", "", nil)
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("stats: status=%d body=%s", w.Code, w.Body.String())
	}
	var stats services.StatsResult
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Platform.TotalSubmissions != 1 || stats.Platform.AverageMetrics == nil {
		t.Fatalf("unexpected platform stats: %+v", stats.Platform)
	}
}

func TestSubmitRejections(t *testing.T) {
	r := newTestRouter(t, 256)

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed json", `{"userAddress":`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing field", `{"userAddress":"` + wallet + `","heartRate":72,"sleepHours":7.5}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"out of range", `{"userAddress":"` + wallet + `","heartRate":20,"sleepHours":7.5,"steps":8000}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad address", `{"userAddress":"0x123","heartRate":72,"sleepHours":7.5,"steps":8000}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"too large", `{"userAddress":"` + strings.Repeat("a", 512) + `"}`, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	}
	for _, tc := range tests {
		w, env := do(t, r, http.MethodPost, "/api/data/submit", tc.body, nil)
		if w.Code != tc.want || env.Code != tc.code || env.Success {
			t.Fatalf("%s: got=%d/%s want=%d/%s body=%s", tc.name, w.Code, env.Code, tc.want, tc.code, w.Body.String())
		}
	}
}

func TestVerifyProofEndpoint(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	w, env := do(t, r, http.MethodPost, "/api/data/verify", `{"proof":"zkp-1"}`, nil)
	if w.Code != http.StatusBadRequest || env.Error != "Missing proof or dataHash" {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodPost, "/api/data/verify", `{"proof":"zkp-abcdef12-1-verified","dataHash":"0xabcdef1234"}`, nil)
	var res services.VerifyResult
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &res) != nil || !res.Valid {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRegistrationEndpoints(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	register := func(w, d string) (*httptest.ResponseRecorder, envelope) {
		return do(t, r, http.MethodPost, "/api/user/register", `{"walletAddress":"`+w+`","deviceFingerprint":"`+d+`"}`, nil)
	}

	w, env := register(wallet, device)
	if w.Code != http.StatusOK || env.Message != "User registered successfully" {
		t.Fatalf("register: got=%d body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), device) {
		t.Fatalf("response leaks the device fingerprint: %s", w.Body.String())
	}

	w, env = register(wallet, device)
	if w.Code != http.StatusOK || env.Message != "User already registered" {
		t.Fatalf("repeat register: got=%d body=%s", w.Code, w.Body.String())
	}

	w, env = register(otherWallet, device)
	if w.Code != http.StatusConflict || env.Code != "DEVICE_ALREADY_REGISTERED" {
		t.Fatalf("device conflict: got=%d body=%s", w.Code, w.Body.String())
	}
	w, env = register(wallet, otherDevice)
	if w.Code != http.StatusConflict || env.Code != "WALLET_ALREADY_REGISTERED" {
		t.Fatalf("wallet conflict: got=%d body=%s", w.Code, w.Body.String())
	}
	w, env = register(otherWallet, "short")
	if w.Code != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("short fingerprint: got=%d body=%s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodPost, "/api/user/verify", `{"walletAddress":"`+wallet+`","deviceFingerprint":"`+otherDevice+`"}`, nil)
	if w.Code != http.StatusForbidden || env.Code != "DEVICE_MISMATCH" {
		t.Fatalf("verify mismatch: got=%d body=%s", w.Code, w.Body.String())
	}
	w, env = do(t, r, http.MethodPost, "/api/user/verify", `{"walletAddress":"`+otherWallet+`","deviceFingerprint":"`+device+`"}`, nil)
	if w.Code != http.StatusNotFound || env.Code != "USER_NOT_FOUND" {
		t.Fatalf("verify unknown: got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodPost, "/api/user/verify", `{"walletAddress":"`+strings.ToLower(wallet)+`","deviceFingerprint":"`+device+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: got=%d body=%s", w.Code, w.Body.String())
	}

	w, _ = do(t, r, http.MethodGet, "/api/user/"+wallet, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: got=%d body=%s", w.Code, w.Body.String())
	}
	w, env = do(t, r, http.MethodGet, "/api/user/"+otherWallet, "", nil)
	if w.Code != http.StatusNotFound || env.Code != "USER_NOT_FOUND" {
		t.Fatalf("get unknown: got=%d body=%s", w.Code, w.Body.String())
	}

	w, env = do(t, r, http.MethodGet, "/api/user/stats/summary", "", nil)
	var sum services.RegistrationSummary
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &sum) != nil || sum.TotalUsers != 1 || sum.TotalDevices != 1 {
		t.Fatalf("summary: got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRegisterAcceptsExponentTimestamp(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	body := `{"walletAddress":"` + wallet + `","deviceFingerprint":"` + device + `","timestamp":1.7e12}`
	w, env := do(t, r, http.MethodPost, "/api/user/register", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
	var reg struct {
		RegisteredAt time.Time `json:"registeredAt"`
	}
	if err := json.Unmarshal(env.Data, &reg); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if got := reg.RegisteredAt.UnixMilli(); got != 1_700_000_000_000 {
		t.Fatalf("registeredAt: got=%d want=%d", got, int64(1_700_000_000_000))
	}

	body = `{"walletAddress":"` + otherWallet + `","deviceFingerprint":"` + otherDevice + `","timestamp":1.5}`
	w, env = do(t, r, http.MethodPost, "/api/user/register", body, nil)
	if w.Code != http.StatusBadRequest || env.Code != "VALIDATION_ERROR" {
		t.Fatalf("fractional timestamp: got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRewardsEndpoints(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	w, env := do(t, r, http.MethodGet, "/api/rewards/balance/"+wallet, "", nil)
	var bal services.BalanceResult
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &bal) != nil || bal.Balance != "0" {
		t.Fatalf("balance: got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/api/rewards/balance/nope", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("balance bad address: got=%d", w.Code)
	}

	w, _ = do(t, r, http.MethodGet, "/api/rewards/leaderboard?limit=0", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("leaderboard bad limit: got=%d", w.Code)
	}
	w, env = do(t, r, http.MethodGet, "/api/rewards/leaderboard", "", nil)
	var board services.LeaderboardResult
	if w.Code != http.StatusOK || json.Unmarshal(env.Data, &board) != nil || len(board.Leaderboard) != 0 {
		t.Fatalf("leaderboard: got=%d body=%s", w.Code, w.Body.String())
	}

	body := `{"userAddress":"` + wallet + `","amount":"5"}`
	w, _ = do(t, r, http.MethodPost, "/api/rewards/manual", body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("manual without token: got=%d", w.Code)
	}

	token, err := httpMW.SignAdminToken(testSecret, "ops", time.Minute)
	if err != nil {
		t.Fatalf("SignAdminToken: %v", err)
	}
	auth := http.Header{"Authorization": []string{"Bearer " + token}}

	w, env = do(t, r, http.MethodPost, "/api/rewards/manual", `{"userAddress":"`+wallet+`"}`, auth)
	if w.Code != http.StatusBadRequest || env.Error != "Missing userAddress or amount" {
		t.Fatalf("manual missing amount: got=%d body=%s", w.Code, w.Body.String())
	}
	w, env = do(t, r, http.MethodPost, "/api/rewards/manual", body, auth)
	if w.Code != http.StatusBadGateway || env.Code != "BLOCKCHAIN_UNAVAILABLE" {
		t.Fatalf("manual without chain: got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	w, _ := do(t, r, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"PulseNet Backend"`) {
		t.Fatalf("health: got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/api/health/detailed", "", nil)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Fatalf("detailed: got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/api/status", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"environment":"test"`) {
		t.Fatalf("status: got=%d body=%s", w.Code, w.Body.String())
	}
	w, _ = do(t, r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "pulsenet_api_requests_total") {
		t.Fatalf("metrics: got=%d", w.Code)
	}
}

func TestNoRoute(t *testing.T) {
	r := newTestRouter(t, 1<<20)

	w, env := do(t, r, http.MethodGet, "/api/unknown", "", nil)
	if w.Code != http.StatusNotFound || env.Error != "Route not found" || env.Message != "Cannot GET /api/unknown" {
		t.Fatalf("got=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get(httpMW.HeaderRequestID) == "" {
		t.Fatalf("request id header not set")
	}
}
