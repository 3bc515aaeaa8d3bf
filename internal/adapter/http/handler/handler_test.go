package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sweeps-casino/internal/adapter/http/dto"
	"sweeps-casino/internal/adapter/http/middleware"
	"sweeps-casino/internal/core/domain"
	"sweeps-casino/internal/core/ports"
	"sweeps-casino/internal/core/ports/mocks"
	"sweeps-casino/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// authedContext builds a test context carrying the authenticated owner id,
// as the JWT middleware would have set it.
func authedContext(t *testing.T, owner uuid.UUID, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.CtxOwnerID, owner)
	return c, w
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// --- Round Handler Tests ---

func TestStartRound_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	owner := uuid.New()
	roundID := uuid.New()
	mockRound.EXPECT().Start(gomock.Any(), ports.StartRoundRequest{
		OwnerID:    owner,
		GameCode:   "slot-neon-heist",
		Currency:   domain.CurrencySC,
		Amount:     100,
		ClientSeed: "demo",
	}).Return(&ports.StartRoundResult{
		RoundID:        roundID,
		ServerSeedHash: "ffe054fe7ae0cb6dc65c3af9b61d5209f439851db43d0ba5997337df154668eb",
		Nonce:          1,
	}, nil)

	body, _ := json.Marshal(dto.StartRoundRequest{
		GameCode:   "slot-neon-heist",
		Currency:   "SC",
		Amount:     100,
		ClientSeed: "demo",
	})

	c, w := authedContext(t, owner, http.MethodPost, "/api/v1/rounds", body)
	h.Start(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, roundID.String(), data["round_id"])
	assert.Equal(t, "ffe054fe7ae0cb6dc65c3af9b61d5209f439851db43d0ba5997337df154668eb", data["server_seed_hash"])
	assert.Equal(t, float64(1), data["nonce"])
}

func TestStartRound_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	cases := []dto.StartRoundRequest{
		{GameCode: "", Currency: "SC", Amount: 100, ClientSeed: "demo"},
		{GameCode: "slot-neon-heist", Currency: "EUR", Amount: 100, ClientSeed: "demo"},
		{GameCode: "slot-neon-heist", Currency: "SC", Amount: -5, ClientSeed: "demo"},
		{GameCode: "slot-neon-heist", Currency: "SC", Amount: 100, ClientSeed: "bad seed!"},
	}
	for _, req := range cases {
		body, _ := json.Marshal(req)
		c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/rounds", body)
		h.Start(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "request: %+v", req)
	}
}

func TestStartRound_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	mockRound.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	body, _ := json.Marshal(dto.StartRoundRequest{
		GameCode:   "slot-neon-heist",
		Currency:   "SC",
		Amount:     1_000_000,
		ClientSeed: "demo",
	})

	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/rounds", body)
	h.Start(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_002", resp["error_code"])
}

func TestResolveRound_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	owner := uuid.New()
	roundID := uuid.New()
	mockRound.EXPECT().Resolve(gomock.Any(), owner, roundID).Return(&ports.ResolveRoundResult{
		Outcome: &domain.Outcome{
			Stops:  []int{2, 2, 2, 2, 2},
			Grid:   [][]string{{"M", "D", "C"}, {"M", "D", "C"}, {"M", "D", "C"}, {"M", "D", "C"}, {"M", "D", "C"}},
			Lines:  []int64{200, 100, 60, 0, 0},
			Payout: 1800,
		},
		Payout:     1800,
		ServerSeed: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}, nil)

	c, w := authedContext(t, owner, http.MethodPost, "/api/v1/rounds/"+roundID.String()+"/resolve", nil)
	c.Params = gin.Params{{Key: "id", Value: roundID.String()}}
	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := responseData(t, w)
	assert.Equal(t, roundID.String(), data["round_id"])
	assert.Equal(t, float64(1800), data["payout"])
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", data["server_seed"])
	assert.Len(t, data["stops"], 5)
	assert.Len(t, data["lines"], 5)
}

func TestResolveRound_BadRoundID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/rounds/not-a-uuid/resolve", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	h.Resolve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolveRound_AlreadyResolved(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRound := mocks.NewMockRoundService(ctrl)
	h := NewRoundHandler(mockRound)

	roundID := uuid.New()
	mockRound.EXPECT().Resolve(gomock.Any(), gomock.Any(), roundID).
		Return(nil, apperror.ErrInvalidState("round"))

	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/rounds/"+roundID.String()+"/resolve", nil)
	c.Params = gin.Params{{Key: "id", Value: roundID.String()}}
	h.Resolve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RND_002", resp["error_code"])
}

// --- Wallet Handler Tests ---

func TestBalances_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, nil, nil, nil)

	owner := uuid.New()
	mockWallet.EXPECT().Balances(gomock.Any(), owner).Return([]domain.Wallet{
		{ID: uuid.New(), OwnerID: &owner, Currency: domain.CurrencyGC, Subtype: domain.SubtypeAvailable, Balance: 50_000},
		{ID: uuid.New(), OwnerID: &owner, Currency: domain.CurrencySC, Subtype: domain.SubtypeAvailable, Balance: 300},
	}, nil)

	c, w := authedContext(t, owner, http.MethodGet, "/api/v1/wallets/balances", nil)
	h.Balances(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "GC", first["currency"])
	assert.Equal(t, "AVAILABLE", first["subtype"])
	assert.Equal(t, float64(50_000), first["balance"])
}

func TestBalances_MissingAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet, nil, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/balances", nil)

	h.Balances(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimDailyGrant_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGrant := mocks.NewMockGrantService(ctrl)
	h := NewWalletHandler(nil, mockGrant, nil, nil)

	owner := uuid.New()
	mockGrant.EXPECT().ClaimDaily(gomock.Any(), owner).Return(int64(100), nil)

	c, w := authedContext(t, owner, http.MethodPost, "/api/v1/grants/daily", nil)
	h.ClaimDailyGrant(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, float64(100), data["amount"])
	assert.Equal(t, "SC", data["currency"])
}

func TestClaimDailyGrant_AlreadyClaimed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGrant := mocks.NewMockGrantService(ctrl)
	h := NewWalletHandler(nil, mockGrant, nil, nil)

	mockGrant.EXPECT().ClaimDaily(gomock.Any(), gomock.Any()).
		Return(int64(0), apperror.ErrGrantAlreadyClaimed())

	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/grants/daily", nil)
	h.ClaimDailyGrant(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_005", resp["error_code"])
}

func TestPurchase_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewWalletHandler(nil, nil, mockPurchase, nil)

	owner := uuid.New()
	txID := uuid.New()
	walletID := uuid.New()
	mockPurchase.EXPECT().Checkout(gomock.Any(), owner, "gc_999").Return(&domain.Transaction{
		ID:   txID,
		Type: domain.TransactionTypeGCPurchase,
		Entries: []domain.Entry{
			{WalletID: uuid.New(), Direction: domain.DirectionDebit, Amount: 100_000},
			{WalletID: walletID, Direction: domain.DirectionCredit, Amount: 100_000},
		},
		CreatedAt: time.Now().UTC(),
	}, nil)

	body, _ := json.Marshal(dto.PurchaseRequest{PackageID: "gc_999"})
	c, w := authedContext(t, owner, http.MethodPost, "/api/v1/store/purchase", body)
	h.Purchase(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, txID.String(), data["id"])
	assert.Equal(t, "GC_PURCHASE", data["type"])
	entries := data["entries"].([]interface{})
	require.Len(t, entries, 2)
}

func TestPurchase_UnknownPackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewWalletHandler(nil, nil, mockPurchase, nil)

	mockPurchase.EXPECT().Checkout(gomock.Any(), gomock.Any(), "gc_bogus").
		Return(nil, apperror.ErrUnknownPackage())

	body, _ := json.Marshal(dto.PurchaseRequest{PackageID: "gc_bogus"})
	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/store/purchase", body)
	h.Purchase(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_004", resp["error_code"])
}

func TestLockRedemption_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRedemption := mocks.NewMockRedemptionService(ctrl)
	h := NewWalletHandler(nil, nil, nil, mockRedemption)

	owner := uuid.New()
	redemptionID := uuid.New()
	mockRedemption.EXPECT().Lock(gomock.Any(), owner, int64(500)).Return(&domain.Redemption{
		ID:        redemptionID,
		OwnerID:   owner,
		AmountSC:  500,
		Status:    domain.RedemptionStatusPending,
		CreatedAt: time.Now().UTC(),
	}, nil)

	body, _ := json.Marshal(dto.RedemptionLockRequest{Amount: 500})
	c, w := authedContext(t, owner, http.MethodPost, "/api/v1/redemptions", body)
	h.LockRedemption(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, redemptionID.String(), data["id"])
	assert.Equal(t, float64(500), data["amount_sc"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestLockRedemption_NegativeAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRedemption := mocks.NewMockRedemptionService(ctrl)
	h := NewWalletHandler(nil, nil, nil, mockRedemption)

	body, _ := json.Marshal(dto.RedemptionLockRequest{Amount: -10})
	c, w := authedContext(t, uuid.New(), http.MethodPost, "/api/v1/redemptions", body)
	h.LockRedemption(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health Handler Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(stubChecker{name: "postgresql"}, stubChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
	)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	redis := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redis["status"])
}

// --- Router / Middleware Tests ---

func TestRouter_RejectsMissingToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := SetupRouter(RouterDeps{
		TokenSvc: mocks.NewMockTokenService(ctrl),
		Logger:   zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/balances", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthenticatedRequestFlowsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	mockToken := mocks.NewMockTokenService(ctrl)
	mockToken.EXPECT().Validate("good-token").Return(owner, nil)

	mockWallet := mocks.NewMockWalletService(ctrl)
	mockWallet.EXPECT().Balances(gomock.Any(), owner).Return([]domain.Wallet{}, nil)

	r := SetupRouter(RouterDeps{
		WalletSvc: mockWallet,
		TokenSvc:  mockToken,
		Logger:    zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/balances", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_InvalidTokenRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockToken := mocks.NewMockTokenService(ctrl)
	mockToken.EXPECT().Validate("expired").Return(uuid.Nil, apperror.ErrInvalidToken())

	r := SetupRouter(RouterDeps{
		TokenSvc: mockToken,
		Logger:   zerolog.Nop(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/grants/daily", nil)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
