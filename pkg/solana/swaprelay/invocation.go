package swaprelay

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
	"github.com/code-payments/serum-swap-relay/pkg/solana/serumswap"
)

// TradeParameters are the arguments forwarded to the swap program.
type TradeParameters struct {
	Side            serumswap.Side
	Amount          uint64
	MinExchangeRate serumswap.ExchangeRate
}

// tradeDefaults reads everything but the amount from config.
func (c *conf) tradeDefaults(ctx context.Context) (*TradeParameters, error) {
	side, err := serumswap.ParseSide(c.side.Get(ctx))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	fromDecimals := c.fromDecimals.Get(ctx)
	quoteDecimals := c.quoteDecimals.Get(ctx)
	if fromDecimals > math.MaxUint8 || quoteDecimals > math.MaxUint8 {
		return nil, errors.Wrapf(ErrInvalidConfig, "decimals out of range: %d, %d", fromDecimals, quoteDecimals)
	}

	return &TradeParameters{
		Side: side,
		MinExchangeRate: serumswap.ExchangeRate{
			Rate:          c.minExchangeRate.Get(ctx),
			FromDecimals:  uint8(fromDecimals),
			QuoteDecimals: uint8(quoteDecimals),
			Strict:        c.strictExchangeRate.Get(ctx),
		},
	}, nil
}

// NewSwapInvocation builds the nested Swap call against the bundle's swap
// program and takes the authority's signer seeds for it. The authority can't
// be used again afterwards.
func NewSwapInvocation(bundle *AccountBundle, params *TradeParameters, authority *DerivedAuthority) (solana.Instruction, [][]byte, error) {
	ix, err := serumswap.NewSwapInstruction(
		bundle.SwapProgram.Key,
		&serumswap.SwapInstructionAccounts{
			Market:                 bundle.Market.Key,
			OpenOrders:             bundle.OpenOrders.Key,
			RequestQueue:           bundle.RequestQueue.Key,
			EventQueue:             bundle.EventQueue.Key,
			Bids:                   bundle.Bids.Key,
			Asks:                   bundle.Asks.Key,
			OrderPayerTokenAccount: bundle.OrderPayerTokenAccount.Key,
			CoinVault:              bundle.CoinVault.Key,
			PcVault:                bundle.PcVault.Key,
			VaultSigner:            bundle.VaultSigner.Key,
			CoinWallet:             bundle.CoinWallet.Key,
			Authority:              bundle.Authority.Key,
			PcWallet:               bundle.PcWallet.Key,
			DexProgram:             bundle.DexProgram.Key,
			TokenProgram:           bundle.TokenProgram.Key,
			Rent:                   bundle.Rent.Key,
		},
		&serumswap.SwapInstructionArgs{
			Side:            params.Side,
			Amount:          params.Amount,
			MinExchangeRate: params.MinExchangeRate,
		},
	)
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	seeds, err := authority.consume()
	if err != nil {
		return solana.Instruction{}, nil, err
	}

	return ix, seeds, nil
}
