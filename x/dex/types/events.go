package types

// Event types for the DEX module
const (
	EventTypePoolCreated        = "pool_created"
	EventTypeSwap               = "swap"
	EventTypeAddLiquidity       = "add_liquidity"
	EventTypeRemoveLiquidity    = "remove_liquidity"
	EventTypeTransferShares     = "transfer_shares"
	EventTypePoolHalted         = "pool_halted"
	EventTypePoolResumed        = "pool_resumed"
	EventTypeInvariantViolation = "invariant_violation"
)

// Event attribute keys
const (
	AttributeKeyPoolID    = "poolId"
	AttributeKeyUser      = "user"
	AttributeKeyTokenIn   = "tokenIn"
	AttributeKeyTokenOut  = "tokenOut"
	AttributeKeyAmountIn  = "amountIn"
	AttributeKeyAmountOut = "amountOut"
	AttributeKeyShares    = "shares"
	AttributeKeyReason    = "reason"
	AttributeKeyTxID      = "txId"
)
