package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/grant"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/app"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/prometheus"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/web"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
	"github.com/lk2023060901/coinbot/pkg/web/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID uint64 = 900000000000000001

type testServer struct {
	t      *testing.T
	router *gin.Engine
	jwt    *security.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Admin.UserIDs = []uint64{adminID}
	provider, err := config.NewStatic(cfg)
	require.NoError(t, err)

	client, err := prometheus.New(&prometheus.Config{Namespace: "test"})
	require.NoError(t, err)
	m, err := metrics.New(client)
	require.NoError(t, err)

	l := logger.NewNoop()
	deps := service.NewDeps(
		repository.NewMemoryRepository(l),
		service.NewLocalLocker(),
		provider,
		service.NewPolicyAuthorizer(provider, l),
		&event.Recorder{},
		m,
	)
	ids := idgen.NewSequence(0)
	sources := engine.SeededSourceFactory(1)

	h := NewEconomyHandler(Services{
		Ledger:      service.NewLedgerService(l, deps),
		Daily:       service.NewDailyService(l, deps),
		Slot:        service.NewSlotService(l, deps, sources),
		Shop:        service.NewShopService(l, deps, ids),
		Gacha:       service.NewGachaService(l, deps, ids, grant.NewNoop(l), sources),
		Leaderboard: service.NewLeaderboardService(l, deps, nil),
		Status:      service.NewStatusService(app.NewLifecycle("test"), nil),
	}, l)

	jm, err := security.NewJWTManager(&security.JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	r := gin.New()
	h.Register(r, middleware.Auth(jm))
	return &testServer{t: t, router: r, jwt: jm}
}

type result struct {
	status int
	resp   web.Response
	data   map[string]any
}

func (s *testServer) do(method, path string, userID uint64, body any) result {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.serve(req, userID)
}

func (s *testServer) serve(req *http.Request, userID uint64) result {
	s.t.Helper()

	if userID != 0 {
		token, err := s.jwt.GenerateToken(&security.Claims{
			Payload: security.Caller{UserID: userID, GuildID: 7}.Payload(),
		})
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	res := result{status: w.Code}
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &res.resp), w.Body.String())
	res.data, _ = res.resp.Data.(map[string]any)
	return res
}

func TestHandler_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodGet, "/api/v1/balance", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, errors.CodeUnAuthorized, res.resp.Code)

	res = s.do(http.MethodGet, "/api/v1/status", 0, nil)
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "test", res.data["instance_id"])
}

func TestHandler_BalanceAndSlot(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodGet, "/api/v1/balance", 42, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "42", res.data["user_id"])
	assert.Equal(t, 1000.0, res.data["balance"])

	res = s.do(http.MethodPost, "/api/v1/slot", 42, SlotRequest{Bet: 0})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, errors.CodeInvalidAmount, res.resp.Code)

	res = s.do(http.MethodPost, "/api/v1/slot", 42, SlotRequest{Bet: 5000})
	assert.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.Equal(t, errors.CodeInsufficientFunds, res.resp.Code)
	assert.Equal(t, 1000.0, res.data["balance"])
	assert.Equal(t, 5000.0, res.data["required"])

	res = s.do(http.MethodPost, "/api/v1/slot", 42, SlotRequest{Bet: 10})
	require.Equal(t, http.StatusOK, res.status)
	assert.Len(t, res.data["reels"], 3)
}

func TestHandler_DailyTwice(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/api/v1/daily", 42, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, 1500.0, res.data["new_balance"])

	res = s.do(http.MethodPost, "/api/v1/daily", 42, nil)
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, errors.CodeAlreadyClaimedToday, res.resp.Code)
	assert.NotEmpty(t, res.data["next_eligible"])
}

func TestHandler_ShopFlow(t *testing.T) {
	s := newTestServer(t)
	item := map[string]any{"name": "Hat", "emoji": "🎩", "price": 300, "stock": 1}

	res := s.do(http.MethodPost, "/api/v1/admin/items", 42, item)
	assert.Equal(t, http.StatusForbidden, res.status)

	res = s.do(http.MethodPost, "/api/v1/admin/items", adminID, item)
	require.Equal(t, http.StatusOK, res.status)
	id := int64(res.data["id"].(float64))

	res = s.do(http.MethodPost, "/api/v1/shop/buy", 42, BuyRequest{ItemID: id})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, 700.0, res.data["new_balance"])

	res = s.do(http.MethodPost, "/api/v1/shop/buy", 42, BuyRequest{ItemID: id})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, errors.CodeOutOfStock, res.resp.Code)

	res = s.do(http.MethodPut, "/api/v1/admin/items/abc/stock", adminID, map[string]any{"stock": 3})
	assert.Equal(t, errors.CodeInvalidParams, res.resp.Code)

	res = s.do(http.MethodDelete, "/api/v1/admin/items/999", adminID, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, errors.CodeItemNotFound, res.resp.Code)
}

func TestHandler_GachaAndAdminMoney(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/api/v1/gacha", 42, nil)
	assert.Equal(t, errors.CodeEmptyPool, res.resp.Code)

	res = s.do(http.MethodPost, "/api/v1/gacha", 42, map[string]any{"mode": "lottery"})
	assert.Equal(t, errors.CodeInvalidParams, res.resp.Code)

	res = s.do(http.MethodPost, "/api/v1/admin/rewards", adminID, map[string]any{
		"role_ref": "role-vip", "name": "VIP", "weight": 100,
	})
	require.Equal(t, http.StatusOK, res.status)

	res = s.do(http.MethodPost, "/api/v1/gacha", 42, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "won", res.data["outcome"])

	res = s.do(http.MethodPost, "/api/v1/admin/money", adminID, map[string]any{"user_id": "42", "amount": 100})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, 1000.0, res.data["balance"])

	res = s.do(http.MethodPut, "/api/v1/admin/balance", adminID, map[string]any{"user_id": "42", "balance": 0})
	require.Equal(t, http.StatusOK, res.status)

	res = s.do(http.MethodGet, "/api/v1/leaderboard", 42, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Empty(t, res.resp.Data)
}

func TestHandler_GachaChunkedBody(t *testing.T) {
	s := newTestServer(t)

	res := s.do(http.MethodPost, "/api/v1/admin/rewards", adminID, map[string]any{
		"role_ref": "role-vip", "name": "VIP", "weight": 100,
	})
	require.Equal(t, http.StatusOK, res.status)
	res = s.do(http.MethodPost, "/api/v1/admin/rewards", adminID, map[string]any{
		"role_ref": "role-gold", "name": "Gold", "weight": 100, "price": 5000,
	})
	require.Equal(t, http.StatusOK, res.status)

	chunked := func(body string) *http.Request {
		// 未知长度的 reader 不设置 Content-Length，等同于分块传输
		req := httptest.NewRequest(http.MethodPost, "/api/v1/gacha", io.MultiReader(strings.NewReader(body)))
		req.Header.Set("Content-Type", "application/json")
		require.Equal(t, int64(-1), req.ContentLength)
		return req
	}

	res = s.serve(chunked(`{"price":1}`), 42)
	assert.Equal(t, errors.CodeEmptyPool, res.resp.Code)

	res = s.serve(chunked(`{"price":5000}`), 42)
	assert.Equal(t, errors.CodeInsufficientFunds, res.resp.Code)

	res = s.serve(chunked(`{"mode":"lottery"}`), 42)
	assert.Equal(t, errors.CodeInvalidParams, res.resp.Code)

	res = s.serve(chunked(""), 42)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "won", res.data["outcome"])
	assert.Equal(t, 100.0, res.data["cost"])
}
