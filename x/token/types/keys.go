package types

const (
	// ModuleName defines the module name
	ModuleName = "token"

	// MaxDecimals bounds the base-unit scale of a token.
	MaxDecimals = 36

	// MaxSymbolLength bounds ticker symbols.
	MaxSymbolLength = 32
)
