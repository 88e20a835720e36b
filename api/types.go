package api

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pawswap/pkg/audit"
	dextypes "github.com/paw-chain/pawswap/x/dex/types"
	farmtypes "github.com/paw-chain/pawswap/x/farm/types"
	tokentypes "github.com/paw-chain/pawswap/x/token/types"
)

// Amounts travel as base-10 integer strings in every request body.

// ==================== Swap Types ====================

// SwapRequest sells an exact amountIn.
type SwapRequest struct {
	TokenIn      string `json:"tokenIn" binding:"required"`
	TokenOut     string `json:"tokenOut" binding:"required"`
	AmountIn     string `json:"amountIn" binding:"required"`
	MinAmountOut string `json:"minAmountOut"`
	UserID       string `json:"userId" binding:"required"`
}

// SwapExactOutRequest buys an exact amountOut.
type SwapExactOutRequest struct {
	TokenIn     string `json:"tokenIn" binding:"required"`
	TokenOut    string `json:"tokenOut" binding:"required"`
	AmountOut   string `json:"amountOut" binding:"required"`
	MaxAmountIn string `json:"maxAmountIn" binding:"required"`
	UserID      string `json:"userId" binding:"required"`
}

// RouteSwapRequest executes a caller-chosen route.
type RouteSwapRequest struct {
	Route        dextypes.Route `json:"route"`
	AmountIn     string         `json:"amountIn" binding:"required"`
	MinAmountOut string         `json:"minAmountOut"`
	UserID       string         `json:"userId" binding:"required"`
}

// QuoteResponse is a quote plus whether it came from the multi-hop search.
type QuoteResponse struct {
	dextypes.Quote
	MultiHop bool `json:"multiHop"`
}

// ==================== Token Types ====================

// RegisterTokenRequest adds a token to the registry.
type RegisterTokenRequest struct {
	ID       string `json:"id" binding:"required"`
	Symbol   string `json:"symbol" binding:"required"`
	Name     string `json:"name"`
	Decimals uint32 `json:"decimals"`
	// Price is an optional decimal reference price.
	Price string `json:"price"`
}

// SetPriceRequest updates a token's reference price.
type SetPriceRequest struct {
	Price string `json:"price" binding:"required"`
}

// ==================== Pool Types ====================

// CreatePoolRequest opens a pool. FeeRateBps defaults to the module default.
type CreatePoolRequest struct {
	TokenA     string  `json:"tokenA" binding:"required"`
	TokenB     string  `json:"tokenB" binding:"required"`
	FeeRateBps *uint32 `json:"feeRateBps"`
}

// AddLiquidityRequest deposits both sides of a pool.
type AddLiquidityRequest struct {
	PoolID     uint64 `json:"poolId" binding:"required"`
	UserID     string `json:"userId" binding:"required"`
	Amount0    string `json:"amount0" binding:"required"`
	Amount1    string `json:"amount1" binding:"required"`
	AutoAdjust bool   `json:"autoAdjust"`
}

// RemoveLiquidityRequest burns LP shares.
type RemoveLiquidityRequest struct {
	PoolID     uint64 `json:"poolId" binding:"required"`
	UserID     string `json:"userId" binding:"required"`
	LpShares   string `json:"lpShares" binding:"required"`
	MinAmount0 string `json:"minAmount0"`
	MinAmount1 string `json:"minAmount1"`
}

// PoolResponse is a pool with its LP token id and TVL.
type PoolResponse struct {
	dextypes.Pool
	LPToken string `json:"lpToken"`
	// TVL is empty when a token has no reference price.
	TVL string `json:"tvl,omitempty"`
}

// ==================== Farm Types ====================

// CreateFarmRequest opens a farm.
type CreateFarmRequest struct {
	StakeToken     string `json:"stakeToken" binding:"required"`
	RewardToken    string `json:"rewardToken" binding:"required"`
	RewardPerBlock string `json:"rewardPerBlock" binding:"required"`
	StartBlock     uint64 `json:"startBlock"`
	RewardBudget   string `json:"rewardBudget" binding:"required"`
}

// FundFarmRequest tops up a farm's reward budget.
type FundFarmRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SetRewardRateRequest changes a farm's emission rate.
type SetRewardRateRequest struct {
	RewardPerBlock string `json:"rewardPerBlock" binding:"required"`
}

// FarmActionRequest drives stake, unstake, harvest and compound. Amount is
// required for stake and unstake only.
type FarmActionRequest struct {
	FarmID uint64 `json:"farmId" binding:"required"`
	UserID string `json:"userId" binding:"required"`
	Amount string `json:"amount"`
}

// PendingRewardResponse reports a user's unharvested reward.
type PendingRewardResponse struct {
	FarmID  uint64   `json:"farmId"`
	UserID  string   `json:"userId"`
	Pending math.Int `json:"pending"`
}

// ==================== Account Types ====================

// UserPositionsResponse lists every position a user holds.
type UserPositionsResponse struct {
	UserID    string                       `json:"userId"`
	Liquidity []dextypes.LiquidityPosition `json:"liquidity"`
	Farms     []farmtypes.FarmPosition     `json:"farms"`
}

// TransactionsResponse is a page of the audit log.
type TransactionsResponse struct {
	Transactions []audit.Record `json:"transactions"`
	Count        int            `json:"count"`
}

// TokensResponse lists registered tokens.
type TokensResponse struct {
	Tokens []tokentypes.Token `json:"tokens"`
	Count  int                `json:"count"`
}
