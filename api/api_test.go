package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/paw-chain/pawswap/app"
	"github.com/paw-chain/pawswap/pkg/blockclock"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

type APITestSuite struct {
	suite.Suite

	ctx    context.Context
	app    *app.App
	clock  *blockclock.Manual
	server *Server
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = blockclock.NewManual(1)

	a, err := app.New(s.ctx, log.NewNopLogger(), app.DefaultConfig(), app.WithClock(s.clock))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = a.Close(context.Background()) })

	gs := app.NewDefaultGenesisState()
	gs.Token.Tokens = append(app.DefaultTokens(),
		tokentypes.Token{ID: "uatom", Symbol: "ATOM", Decimals: 6, Price: math.LegacyNewDec(10)},
	)
	gs.Dex.Params.MinimumLiquidity = math.NewInt(10)
	s.Require().NoError(a.InitGenesis(s.ctx, gs))
	s.app = a

	server, err := NewServer(log.NewNopLogger(), a, DefaultConfig())
	s.Require().NoError(err)
	s.server = server
}

func (s *APITestSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](s *APITestSuite, w *httptest.ResponseRecorder) T {
	var out T
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *APITestSuite) requireError(w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	s.Require().Equal(status, w.Code, w.Body.String())
	resp := decode[ErrorResponse](s, w)
	s.Require().Equal(code, resp.Code)
	return resp
}

// seedPool creates uatom/upaw with 1000/1000 of liquidity from "lp".
func (s *APITestSuite) seedPool() uint64 {
	w := s.do(http.MethodPost, "/api/v1/pools", CreatePoolRequest{TokenA: "uatom", TokenB: "upaw"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	pool := decode[PoolResponse](s, w)
	s.Require().Equal("lp/1", pool.LPToken)

	w = s.do(http.MethodPost, "/api/v1/pool/add-liquidity", AddLiquidityRequest{
		PoolID: pool.ID, UserID: "lp", Amount0: "1000", Amount1: "1000",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	tx := decode[dextypes.LiquidityTransaction](s, w)
	s.Require().Equal("990", tx.LpShares.String())
	return pool.ID
}

func (s *APITestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal("ok", decode[map[string]interface{}](s, w)["status"])

	w = s.do(http.MethodGet, "/health/ready", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *APITestSuite) TestCreatePoolTwiceReturnsExisting() {
	s.seedPool()
	w := s.do(http.MethodPost, "/api/v1/pools", CreatePoolRequest{TokenA: "upaw", TokenB: "uatom"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal(uint64(1), decode[PoolResponse](s, w).ID)

	w = s.do(http.MethodGet, "/api/v1/pools/1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	pool := decode[PoolResponse](s, w)
	s.Require().Equal("1000", pool.Reserve0.String())
	// 1000 uatom at 10 plus 1000 upaw at 1, in display units
	s.Require().Equal("0.011000000000000000", pool.TVL)
}

func (s *APITestSuite) TestQuoteAndSwap() {
	s.seedPool()

	w := s.do(http.MethodGet, "/api/v1/swap/quote?tokenIn=uatom&tokenOut=upaw&amount=100", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	quote := decode[QuoteResponse](s, w)
	s.Require().Equal("90", quote.AmountOut.String())
	s.Require().False(quote.MultiHop)

	swap := SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: "100", MinAmountOut: "90", UserID: "trader"}
	w = s.do(http.MethodPost, "/api/v1/swap", swap)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	tx := decode[dextypes.SwapTransaction](s, w)
	s.Require().Equal("90", tx.AmountOut.String())
	s.Require().Equal("trader", tx.UserID)

	// the same trade now returns less than the stale minimum
	resp := s.requireError(s.do(http.MethodPost, "/api/v1/swap", swap), http.StatusConflict, "SLIPPAGE_EXCEEDED")
	s.Require().True(resp.Retryable)
}

func (s *APITestSuite) TestSwapExactOut() {
	s.seedPool()

	w := s.do(http.MethodGet, "/api/v1/swap/quote?tokenIn=uatom&tokenOut=upaw&amount=90&exactOut=true", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	quote := decode[QuoteResponse](s, w)
	s.Require().Equal("90", quote.AmountOut.String())

	w = s.do(http.MethodPost, "/api/v1/swap/exact-out", SwapExactOutRequest{
		TokenIn: "uatom", TokenOut: "upaw", AmountOut: "90", MaxAmountIn: quote.AmountIn.String(), UserID: "trader",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	tx := decode[dextypes.SwapTransaction](s, w)
	s.Require().Equal("90", tx.AmountOut.String())
	s.Require().Equal(quote.AmountIn.String(), tx.AmountIn.String())
}

func (s *APITestSuite) TestMultiHopFallback() {
	s.seedPool()
	w := s.do(http.MethodPost, "/api/v1/tokens", RegisterTokenRequest{ID: "uosmo", Symbol: "OSMO", Decimals: 6})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/pools", CreatePoolRequest{TokenA: "upaw", TokenB: "uosmo"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/pool/add-liquidity", AddLiquidityRequest{
		PoolID: 2, UserID: "lp", Amount0: "1000", Amount1: "1000",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/swap/quote?tokenIn=uatom&tokenOut=uosmo&amount=100", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	quote := decode[QuoteResponse](s, w)
	s.Require().True(quote.MultiHop)
	s.Require().Len(quote.Route.Hops, 2)

	w = s.do(http.MethodPost, "/api/v1/swap/route", RouteSwapRequest{
		Route: quote.Route, AmountIn: "100", MinAmountOut: quote.AmountOut.String(), UserID: "trader",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	tx := decode[dextypes.SwapTransaction](s, w)
	s.Require().Equal(quote.AmountOut.String(), tx.AmountOut.String())
	s.Require().Len(tx.Hops, 2)
}

func (s *APITestSuite) TestErrorMapping() {
	s.seedPool()

	testCases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown pool", http.MethodGet, "/api/v1/pools/99", nil, http.StatusNotFound, "POOL_NOT_FOUND"},
		{"bad pool id", http.MethodGet, "/api/v1/pools/abc", nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed json", http.MethodPost, "/api/v1/swap", "{", http.StatusBadRequest, "INVALID_REQUEST"},
		{
			"negative amount", http.MethodPost, "/api/v1/swap",
			SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: "-5", UserID: "u"},
			http.StatusBadRequest, "VALIDATION_ERROR",
		},
		{
			"amount beyond 128 bits", http.MethodPost, "/api/v1/swap",
			SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: strings.Repeat("9", 78), UserID: "u"},
			http.StatusBadRequest, "VALIDATION_ERROR",
		},
		{
			"zero amount", http.MethodPost, "/api/v1/swap",
			SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: "0", UserID: "u"},
			http.StatusBadRequest, "INVALID_AMOUNT",
		},
		{
			"too many shares", http.MethodPost, "/api/v1/pool/remove-liquidity",
			RemoveLiquidityRequest{PoolID: 1, UserID: "lp", LpShares: "991"},
			http.StatusUnprocessableEntity, "INSUFFICIENT_SHARES",
		},
		{
			"no position", http.MethodGet, "/api/v1/pools/1/positions/nobody", nil,
			http.StatusNotFound, "POSITION_NOT_FOUND",
		},
		{
			"unknown token", http.MethodGet, "/api/v1/tokens/nope", nil,
			http.StatusNotFound, "TOKEN_NOT_FOUND",
		},
		{
			"fee above max", http.MethodPost, "/api/v1/pools",
			map[string]interface{}{"tokenA": "uatom", "tokenB": "lp/1", "feeRateBps": 100000},
			http.StatusBadRequest, "INVALID_FEE",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			w := s.do(tc.method, tc.path, tc.body)
			s.Require().Equal(tc.status, w.Code, w.Body.String())
			resp := decode[ErrorResponse](s, w)
			s.Require().Equal(tc.code, resp.Code)
			s.Require().False(resp.Retryable)
		})
	}

	// state is unchanged by the rejected removal
	w := s.do(http.MethodGet, "/api/v1/pools/1/positions/lp", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal("990", decode[dextypes.LiquidityPosition](s, w).LpShares.String())
}

func (s *APITestSuite) TestHaltedPool() {
	poolID := s.seedPool()

	w := s.do(http.MethodPost, "/api/v1/pools/1/halt", HaltPoolRequest{Reason: "maintenance"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().True(decode[PoolResponse](s, w).Halted)

	s.requireError(s.do(http.MethodPost, "/api/v1/swap", SwapRequest{
		TokenIn: "uatom", TokenOut: "upaw", AmountIn: "100", UserID: "trader",
	}), http.StatusServiceUnavailable, "POOL_HALTED")

	w = s.do(http.MethodGet, "/api/v1/status/circuit-breakers", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	status := decode[app.CircuitBreakerStatus](s, w)
	s.Require().True(status.AnyOpen)
	s.Require().Equal(poolID, status.HaltedPools[0].PoolID)

	w = s.do(http.MethodPost, "/api/v1/pools/1/resume", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().False(decode[PoolResponse](s, w).Halted)
}

func (s *APITestSuite) TestTokens() {
	w := s.do(http.MethodPost, "/api/v1/tokens", RegisterTokenRequest{ID: "uosmo", Symbol: "OSMO", Decimals: 6, Price: "0.5"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/tokens", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal(3, decode[TokensResponse](s, w).Count)

	w = s.do(http.MethodPut, "/api/v1/tokens/uosmo/price", SetPriceRequest{Price: "0.75"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().Equal("0.750000000000000000", decode[tokentypes.Token](s, w).Price.String())

	s.requireError(s.do(http.MethodPut, "/api/v1/tokens/uosmo/price", SetPriceRequest{Price: "abc"}), http.StatusBadRequest, "INVALID_PRICE")
	s.requireError(s.do(http.MethodPut, "/api/v1/tokens/nope/price", SetPriceRequest{Price: "1"}), http.StatusNotFound, "TOKEN_NOT_FOUND")
}

func (s *APITestSuite) TestFarmFlow() {
	s.seedPool()

	w := s.do(http.MethodPost, "/api/v1/farms", CreateFarmRequest{
		StakeToken: "uatom", RewardToken: "upaw", RewardPerBlock: "10", RewardBudget: "1000",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/farm/stake", FarmActionRequest{FarmID: 1, UserID: "alice", Amount: "100"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	s.clock.Advance(5)

	w = s.do(http.MethodGet, "/api/v1/farm/1/pending/alice", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().Equal("50", decode[PendingRewardResponse](s, w).Pending.String())

	w = s.do(http.MethodPost, "/api/v1/farm/harvest", FarmActionRequest{FarmID: 1, UserID: "alice"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().Equal("50", decode[map[string]interface{}](s, w)["reward"])

	s.requireError(s.do(http.MethodPost, "/api/v1/farm/harvest", FarmActionRequest{FarmID: 1, UserID: "alice"}),
		http.StatusUnprocessableEntity, "NOTHING_TO_HARVEST")
	s.requireError(s.do(http.MethodPost, "/api/v1/farm/stake", FarmActionRequest{FarmID: 1, UserID: "alice"}),
		http.StatusBadRequest, "VALIDATION_ERROR")
	s.requireError(s.do(http.MethodPost, "/api/v1/farm/unstake", FarmActionRequest{FarmID: 1, UserID: "alice", Amount: "101"}),
		http.StatusUnprocessableEntity, "INSUFFICIENT_STAKE")
	s.requireError(s.do(http.MethodPost, "/api/v1/farm/compound", FarmActionRequest{FarmID: 1, UserID: "alice"}),
		http.StatusUnprocessableEntity, "COMPOUND_UNSUPPORTED")

	w = s.do(http.MethodGet, "/api/v1/users/alice/positions", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	positions := decode[UserPositionsResponse](s, w)
	s.Require().Len(positions.Farms, 1)
	s.Require().Empty(positions.Liquidity)

	w = s.do(http.MethodPost, "/api/v1/farm/unstake", FarmActionRequest{FarmID: 1, UserID: "alice", Amount: "100"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.requireError(s.do(http.MethodGet, "/api/v1/farm/1/pending/alice", nil), http.StatusNotFound, "POSITION_NOT_FOUND")

	w = s.do(http.MethodPost, "/api/v1/farms/1/fund", FundFarmRequest{Amount: "500"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/v1/farms/1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Equal("1500", decode[map[string]interface{}](s, w)["rewardBudget"])

	s.requireError(s.do(http.MethodGet, "/api/v1/farms/7", nil), http.StatusNotFound, "FARM_NOT_FOUND")
}

func (s *APITestSuite) TestTransactions() {
	s.seedPool()
	w := s.do(http.MethodPost, "/api/v1/swap", SwapRequest{TokenIn: "uatom", TokenOut: "upaw", AmountIn: "100", UserID: "trader"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	swapID := decode[dextypes.SwapTransaction](s, w).ID

	w = s.do(http.MethodGet, "/api/v1/transactions?kind=swap&userId=trader", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	page := decode[TransactionsResponse](s, w)
	s.Require().Equal(1, page.Count)

	var logged dextypes.SwapTransaction
	s.Require().NoError(page.Transactions[0].Decode(&logged))
	s.Require().Equal(swapID, logged.ID)

	w = s.do(http.MethodGet, "/api/v1/transactions/"+page.Transactions[0].ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/transactions?kind=liquidity&limit=1", nil)
	s.Require().Equal(1, decode[TransactionsResponse](s, w).Count)

	s.requireError(s.do(http.MethodGet, "/api/v1/transactions?kind=bogus", nil), http.StatusBadRequest, "VALIDATION_ERROR")
	s.requireError(s.do(http.MethodGet, "/api/v1/transactions/missing", nil), http.StatusNotFound, "TRANSACTION_NOT_FOUND")
}

func (s *APITestSuite) TestRequestIDAndCORS() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	s.Require().Equal("req-123", w.Header().Get(RequestIDHeader))
	s.Require().Equal("nosniff", w.Header().Get("X-Content-Type-Options"))

	w = s.do(http.MethodGet, "/health", nil)
	s.Require().NotEmpty(w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/swap", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	s.server.Handler().ServeHTTP(w, req)
	s.Require().Equal("http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *APITestSuite) TestRequestTooLarge() {
	body := `{"tokenIn":"` + strings.Repeat("a", int(MaxRequestSize)) + `"}`
	s.requireError(s.do(http.MethodPost, "/api/v1/swap", body), http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE")
}

func (s *APITestSuite) TestWebSocketStream() {
	s.seedPool()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.server.Hub().Run(ctx)

	ts := httptest.NewServer(s.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?channels=dex"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	defer conn.Close()
	s.Require().Eventually(func() bool { return s.server.Hub().GetConnectedClients() == 1 }, time.Second, 10*time.Millisecond)

	_, err = s.app.DexKeeper.ExecuteSwap(s.ctx, "uatom", "upaw", math.NewInt(100), math.ZeroInt(), "trader")
	s.Require().NoError(err)

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	for {
		var msg WSMessage
		s.Require().NoError(conn.ReadJSON(&msg))
		s.Require().Equal(dextypes.ModuleName, msg.Channel)
		if msg.Type == dextypes.EventTypeSwap {
			break
		}
	}
}

func TestNewServerRejectsInvalidConfig(t *testing.T) {
	a, err := app.New(context.Background(), nil, app.DefaultConfig())
	require.NoError(t, err)
	defer a.Close(context.Background())

	cfg := DefaultConfig()
	cfg.ListenAddr = ""
	_, err = NewServer(nil, a, cfg)
	require.ErrorContains(t, err, "listen address")

	cfg = DefaultConfig()
	cfg.RateLimit.WhitelistCIDRs = []string{"not-a-cidr"}
	_, err = NewServer(nil, a, cfg)
	require.ErrorContains(t, err, "whitelist cidr")
}
