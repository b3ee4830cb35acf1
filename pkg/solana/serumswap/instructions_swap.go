package serumswap

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

var swapInstructionDiscriminator = []byte{
	0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8,
}

const (
	SwapInstructionArgsSize = (1 + // Side
		8 + // Amount
		8 + // MinExchangeRate.Rate
		1 + // MinExchangeRate.FromDecimals
		1 + // MinExchangeRate.QuoteDecimals
		1) // MinExchangeRate.Strict

	SwapInstructionAccountsSize = 16
)

type SwapInstructionArgs struct {
	Side            Side
	Amount          uint64
	MinExchangeRate ExchangeRate
}

type SwapInstructionAccounts struct {
	Market                 ed25519.PublicKey
	OpenOrders             ed25519.PublicKey
	RequestQueue           ed25519.PublicKey
	EventQueue             ed25519.PublicKey
	Bids                   ed25519.PublicKey
	Asks                   ed25519.PublicKey
	OrderPayerTokenAccount ed25519.PublicKey
	CoinVault              ed25519.PublicKey
	PcVault                ed25519.PublicKey
	VaultSigner            ed25519.PublicKey
	CoinWallet             ed25519.PublicKey
	Authority              ed25519.PublicKey
	PcWallet               ed25519.PublicKey
	DexProgram             ed25519.PublicKey
	TokenProgram           ed25519.PublicKey
	Rent                   ed25519.PublicKey
}

// swapArgsLayout is the borsh layout of the anchor Swap arguments.
type swapArgsLayout struct {
	Side          uint8
	Amount        uint64
	Rate          uint64
	FromDecimals  uint8
	QuoteDecimals uint8
	Strict        bool
}

// NewSwapInstruction builds a Swap instruction against the provided deployment
// of the swap program. Use PROGRAM_ID for the canonical one.
func NewSwapInstruction(
	program ed25519.PublicKey,
	accounts *SwapInstructionAccounts,
	args *SwapInstructionArgs,
) (solana.Instruction, error) {
	encoded, err := borsh.Serialize(swapArgsLayout{
		Side:          uint8(args.Side),
		Amount:        args.Amount,
		Rate:          args.MinExchangeRate.Rate,
		FromDecimals:  args.MinExchangeRate.FromDecimals,
		QuoteDecimals: args.MinExchangeRate.QuoteDecimals,
		Strict:        args.MinExchangeRate.Strict,
	})
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error serializing swap args")
	}

	var offset int

	// Serialize instruction arguments
	data := make([]byte, len(swapInstructionDiscriminator)+len(encoded))
	putDiscriminator(data, swapInstructionDiscriminator, &offset)
	copy(data[offset:], encoded)

	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(accounts.Market, false),
			solana.NewAccountMeta(accounts.OpenOrders, false),
			solana.NewAccountMeta(accounts.RequestQueue, false),
			solana.NewAccountMeta(accounts.EventQueue, false),
			solana.NewAccountMeta(accounts.Bids, false),
			solana.NewAccountMeta(accounts.Asks, false),
			solana.NewAccountMeta(accounts.OrderPayerTokenAccount, false),
			solana.NewAccountMeta(accounts.CoinVault, false),
			solana.NewAccountMeta(accounts.PcVault, false),
			solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
			solana.NewAccountMeta(accounts.CoinWallet, false),
			solana.NewReadonlyAccountMeta(accounts.Authority, true),
			solana.NewAccountMeta(accounts.PcWallet, false),
			solana.NewReadonlyAccountMeta(accounts.DexProgram, false),
			solana.NewReadonlyAccountMeta(accounts.TokenProgram, false),
			solana.NewReadonlyAccountMeta(accounts.Rent, false),
		},
	}, nil
}

// DecodeSwapInstruction is the inverse of NewSwapInstruction. The program id
// is not checked so that alternate deployments can be decoded.
func DecodeSwapInstruction(ix solana.Instruction) (*SwapInstructionAccounts, *SwapInstructionArgs, error) {
	if len(ix.Data) != len(swapInstructionDiscriminator)+SwapInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(ix.Accounts) != SwapInstructionAccountsSize {
		return nil, nil, ErrInvalidAccounts
	}

	var offset int
	var discriminator []byte
	getDiscriminator(ix.Data, &discriminator, &offset)
	if !bytes.Equal(discriminator, swapInstructionDiscriminator) {
		return nil, nil, ErrInvalidInstructionData
	}

	var layout swapArgsLayout
	if err := borsh.Deserialize(&layout, ix.Data[offset:]); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}
	if Side(layout.Side) != Bid && Side(layout.Side) != Ask {
		return nil, nil, ErrInvalidInstructionData
	}

	keys := make([]ed25519.PublicKey, len(ix.Accounts))
	for i, account := range ix.Accounts {
		keys[i] = account.PublicKey
	}

	var accounts SwapInstructionAccounts
	offset = 0
	getKey(keys, &accounts.Market, &offset)
	getKey(keys, &accounts.OpenOrders, &offset)
	getKey(keys, &accounts.RequestQueue, &offset)
	getKey(keys, &accounts.EventQueue, &offset)
	getKey(keys, &accounts.Bids, &offset)
	getKey(keys, &accounts.Asks, &offset)
	getKey(keys, &accounts.OrderPayerTokenAccount, &offset)
	getKey(keys, &accounts.CoinVault, &offset)
	getKey(keys, &accounts.PcVault, &offset)
	getKey(keys, &accounts.VaultSigner, &offset)
	getKey(keys, &accounts.CoinWallet, &offset)
	getKey(keys, &accounts.Authority, &offset)
	getKey(keys, &accounts.PcWallet, &offset)
	getKey(keys, &accounts.DexProgram, &offset)
	getKey(keys, &accounts.TokenProgram, &offset)
	getKey(keys, &accounts.Rent, &offset)

	if !ix.Accounts[11].IsSigner {
		return nil, nil, ErrInvalidAccounts
	}

	return &accounts, &SwapInstructionArgs{
		Side:   Side(layout.Side),
		Amount: layout.Amount,
		MinExchangeRate: ExchangeRate{
			Rate:          layout.Rate,
			FromDecimals:  layout.FromDecimals,
			QuoteDecimals: layout.QuoteDecimals,
			Strict:        layout.Strict,
		},
	}, nil
}
