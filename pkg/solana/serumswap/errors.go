package serumswap

import (
	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// Anchor user errors start at 6000.
const (
	// The tokens being swapped must have different mints
	SwapTokensCannotMatch solana.CustomError = iota + 0x1770

	// Slippage tolerance exceeded
	SlippageExceeded

	// No tokens received when swapping
	ZeroSwap
)
