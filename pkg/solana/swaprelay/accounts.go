package swaprelay

import (
	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// NumAccounts is the number of accounts a relay instruction carries. The
// order of AccountBundle's fields is the wire order and must not change.
const NumAccounts = 19

// AccountBundle names the accounts of a relay instruction. Fields reference
// the host's accounts directly.
type AccountBundle struct {
	Market                 *solana.AccountInfo
	RequestQueue           *solana.AccountInfo
	EventQueue             *solana.AccountInfo
	Bids                   *solana.AccountInfo
	Asks                   *solana.AccountInfo
	CoinVault              *solana.AccountInfo
	PcVault                *solana.AccountInfo
	VaultSigner            *solana.AccountInfo
	OpenOrders             *solana.AccountInfo
	OrderPayerTokenAccount *solana.AccountInfo
	CoinWallet             *solana.AccountInfo
	PcWallet               *solana.AccountInfo
	Authority              *solana.AccountInfo
	DexProgram             *solana.AccountInfo
	TokenProgram           *solana.AccountInfo
	SwapProgram            *solana.AccountInfo
	Rent                   *solana.AccountInfo
	DerivedAuthority       *solana.AccountInfo
	SeedProgram            *solana.AccountInfo
}

// BindAccounts assigns roles to the first NumAccounts accounts. Trailing
// accounts are ignored and no account contents are inspected.
func BindAccounts(accounts []*solana.AccountInfo) (*AccountBundle, error) {
	if len(accounts) < NumAccounts {
		return nil, solana.ErrNotEnoughAccountKeys
	}

	var b AccountBundle
	for i, field := range b.fields() {
		*field = accounts[i]
	}
	return &b, nil
}

// ValidateWallets rejects wallets that are left as EMPTY_ADDRESS.
func (b *AccountBundle) ValidateWallets() error {
	for name, wallet := range map[string]*solana.AccountInfo{
		"order payer token account": b.OrderPayerTokenAccount,
		"coin wallet":               b.CoinWallet,
		"pc wallet":                 b.PcWallet,
	} {
		if IsEmptyAddress(wallet.Key) {
			return errors.Wrapf(solana.ErrInvalidArgument, "%s is the empty address", name)
		}
	}
	return nil
}

// fields returns pointers to the bundle's fields in wire order.
func (b *AccountBundle) fields() []**solana.AccountInfo {
	return []**solana.AccountInfo{
		&b.Market,
		&b.RequestQueue,
		&b.EventQueue,
		&b.Bids,
		&b.Asks,
		&b.CoinVault,
		&b.PcVault,
		&b.VaultSigner,
		&b.OpenOrders,
		&b.OrderPayerTokenAccount,
		&b.CoinWallet,
		&b.PcWallet,
		&b.Authority,
		&b.DexProgram,
		&b.TokenProgram,
		&b.SwapProgram,
		&b.Rent,
		&b.DerivedAuthority,
		&b.SeedProgram,
	}
}
