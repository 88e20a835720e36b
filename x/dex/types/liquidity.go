package types

import (
	"time"

	"cosmossdk.io/math"
)

// LiquidityAction names a liquidity mutation.
type LiquidityAction string

const (
	LiquidityAdd      LiquidityAction = "add"
	LiquidityRemove   LiquidityAction = "remove"
	LiquidityTransfer LiquidityAction = "transfer"
)

// LiquidityTransaction is the audit record of a deposit, withdrawal or share transfer.
type LiquidityTransaction struct {
	ID            string          `json:"id"`
	Action        LiquidityAction `json:"action"`
	PoolID        uint64          `json:"poolId"`
	UserID        string          `json:"userId"`
	Counterparty  string          `json:"counterparty,omitempty"`
	Amount0       math.Int        `json:"amount0"`
	Amount1       math.Int        `json:"amount1"`
	LpShares      math.Int        `json:"lpShares"`
	Burned        math.Int        `json:"burned"`
	Reserve0After math.Int        `json:"reserve0After"`
	Reserve1After math.Int        `json:"reserve1After"`
	TotalLpShares math.Int        `json:"totalLpShares"`
	PositionAfter math.Int        `json:"positionAfter"`
	BlockHeight   uint64          `json:"blockHeight"`
	Timestamp     time.Time       `json:"timestamp"`
}
