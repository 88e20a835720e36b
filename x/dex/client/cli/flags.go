package cli

// Flag constants for dex CLI commands
const (
	// Pool creation flags
	FlagFeeBps = "fee-bps"

	// Liquidity flags
	FlagAutoAdjust = "auto-adjust"
	FlagMinAmount0 = "min-amount0"
	FlagMinAmount1 = "min-amount1"

	// Swap flags
	FlagMinAmountOut = "min-amount-out"
	FlagMaxAmountIn  = "max-amount-in"
	FlagExactOut     = "exact-out"
)
