package swaprelay

import (
	"crypto/ed25519"
	"math"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

type SwapInstructionArgs struct {
	// Amount is rejected above 255 rather than truncated.
	Amount uint64
	Nonce  uint8
}

type SwapInstructionAccounts struct {
	Market                 ed25519.PublicKey
	RequestQueue           ed25519.PublicKey
	EventQueue             ed25519.PublicKey
	Bids                   ed25519.PublicKey
	Asks                   ed25519.PublicKey
	CoinVault              ed25519.PublicKey
	PcVault                ed25519.PublicKey
	VaultSigner            ed25519.PublicKey
	OpenOrders             ed25519.PublicKey
	OrderPayerTokenAccount ed25519.PublicKey
	CoinWallet             ed25519.PublicKey
	PcWallet               ed25519.PublicKey
	Authority              ed25519.PublicKey
	DexProgram             ed25519.PublicKey
	TokenProgram           ed25519.PublicKey
	SwapProgram            ed25519.PublicKey
	Rent                   ed25519.PublicKey
	DerivedAuthority       ed25519.PublicKey
	SeedProgram            ed25519.PublicKey
}

// NewSwapInstruction builds a relay instruction for the relay deployed at
// program. The authority signs the transaction unless it is the derived
// authority itself, in which case the relay signs for it.
func NewSwapInstruction(
	program ed25519.PublicKey,
	accounts *SwapInstructionAccounts,
	args *SwapInstructionArgs,
) (solana.Instruction, error) {
	if args.Amount > math.MaxUint8 {
		return solana.Instruction{}, ErrAmountOutOfRange
	}

	data := (&InstructionData{
		Amount: uint8(args.Amount),
		Nonce:  args.Nonce,
	}).Marshal()

	authorityIsSigner := !solana.KeysEqual(accounts.Authority, accounts.DerivedAuthority)

	return solana.Instruction{
		Program: program,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(accounts.Market, false),
			solana.NewAccountMeta(accounts.RequestQueue, false),
			solana.NewAccountMeta(accounts.EventQueue, false),
			solana.NewAccountMeta(accounts.Bids, false),
			solana.NewAccountMeta(accounts.Asks, false),
			solana.NewAccountMeta(accounts.CoinVault, false),
			solana.NewAccountMeta(accounts.PcVault, false),
			solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
			solana.NewAccountMeta(accounts.OpenOrders, false),
			solana.NewAccountMeta(accounts.OrderPayerTokenAccount, false),
			solana.NewAccountMeta(accounts.CoinWallet, false),
			solana.NewAccountMeta(accounts.PcWallet, false),
			solana.NewReadonlyAccountMeta(accounts.Authority, authorityIsSigner),
			solana.NewReadonlyAccountMeta(accounts.DexProgram, false),
			solana.NewReadonlyAccountMeta(accounts.TokenProgram, false),
			solana.NewReadonlyAccountMeta(accounts.SwapProgram, false),
			solana.NewReadonlyAccountMeta(accounts.Rent, false),
			solana.NewReadonlyAccountMeta(accounts.DerivedAuthority, false),
			solana.NewReadonlyAccountMeta(accounts.SeedProgram, false),
		},
	}, nil
}
