package swaprelay

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime"
	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime/memory"
	"github.com/code-payments/serum-swap-relay/pkg/solana/serumswap"
	"github.com/code-payments/serum-swap-relay/pkg/testutil"
)

// crossedMarket in the first byte of a market's data makes the test swap
// program fail the swap.
const crossedMarket = 0xcc

type recordedSwap struct {
	program  ed25519.PublicKey
	accounts *serumswap.SwapInstructionAccounts
	args     *serumswap.SwapInstructionArgs
}

type testEnv struct {
	ctx    context.Context
	ledger *memory.Ledger

	relayID   ed25519.PublicKey
	authority ed25519.PrivateKey
	accounts  *SwapInstructionAccounts
	nonce     uint8

	swaps []recordedSwap
}

func setup(t *testing.T) *testEnv {
	return setupWithOverrides(t, defaultTestOverrides())
}

func setupWithOverrides(t *testing.T, overrides *testOverrides) *testEnv {
	env := &testEnv{
		ctx:       context.Background(),
		ledger:    memory.New(),
		relayID:   testutil.GenerateSolanaKey(t),
		authority: testutil.GenerateSolanaKeypair(t),
	}

	seedProgram := testutil.GenerateSolanaKey(t)
	derived, nonce, err := GetDerivedAuthorityAddress(env.relayID, seedProgram)
	require.NoError(t, err)
	env.nonce = nonce

	env.accounts = &SwapInstructionAccounts{
		Market:                 testutil.GenerateSolanaKey(t),
		RequestQueue:           testutil.GenerateSolanaKey(t),
		EventQueue:             testutil.GenerateSolanaKey(t),
		Bids:                   testutil.GenerateSolanaKey(t),
		Asks:                   testutil.GenerateSolanaKey(t),
		CoinVault:              testutil.GenerateSolanaKey(t),
		PcVault:                testutil.GenerateSolanaKey(t),
		VaultSigner:            testutil.GenerateSolanaKey(t),
		OpenOrders:             testutil.GenerateSolanaKey(t),
		OrderPayerTokenAccount: testutil.GenerateSolanaKey(t),
		CoinWallet:             testutil.GenerateSolanaKey(t),
		PcWallet:               testutil.GenerateSolanaKey(t),
		Authority:              public(env.authority),
		DexProgram:             serumswap.DEX_PROGRAM_ID,
		TokenProgram:           serumswap.SPL_TOKEN_PROGRAM_ID,
		SwapProgram:            testutil.GenerateSolanaKey(t),
		Rent:                   serumswap.SYSVAR_RENT_PUBKEY,
		DerivedAuthority:       derived,
		SeedProgram:            seedProgram,
	}

	require.NoError(t, env.ledger.RegisterProgram(env.relayID, NewProgram(withManualTestOverrides(overrides))))
	require.NoError(t, env.ledger.RegisterProgram(env.accounts.SwapProgram, runtime.ProgramFunc(env.processSwap)))

	for _, key := range []ed25519.PublicKey{
		env.accounts.Market,
		env.accounts.RequestQueue,
		env.accounts.EventQueue,
		env.accounts.Bids,
		env.accounts.Asks,
		env.accounts.CoinVault,
		env.accounts.PcVault,
		env.accounts.VaultSigner,
		env.accounts.OpenOrders,
		env.accounts.OrderPayerTokenAccount,
		env.accounts.CoinWallet,
		env.accounts.PcWallet,
		env.accounts.Authority,
		env.accounts.DexProgram,
		env.accounts.TokenProgram,
		env.accounts.Rent,
		env.accounts.DerivedAuthority,
		env.accounts.SeedProgram,
	} {
		env.ledger.SetAccount(&solana.AccountInfo{Key: key, Lamports: 1})
	}

	return env
}

// processSwap stands in for the swap program. It records the decoded swap and
// credits the amount to the coin wallet before checking the market.
func (e *testEnv) processSwap(_ context.Context, invocation *runtime.Context) error {
	metas := make([]solana.AccountMeta, len(invocation.Accounts))
	for i, account := range invocation.Accounts {
		metas[i] = account.Meta()
	}

	accounts, args, err := serumswap.DecodeSwapInstruction(solana.Instruction{
		Program:  invocation.ProgramID,
		Accounts: metas,
		Data:     invocation.Data,
	})
	if err != nil {
		return solana.ErrInvalidInstructionData
	}

	e.swaps = append(e.swaps, recordedSwap{
		program:  invocation.ProgramID,
		accounts: accounts,
		args:     args,
	})

	coinWallet, _ := invocation.Account(accounts.CoinWallet)
	coinWallet.Data = append(coinWallet.Data, byte(args.Amount))

	market, _ := invocation.Account(accounts.Market)
	if len(market.Data) > 0 && market.Data[0] == crossedMarket {
		return serumswap.SlippageExceeded
	}
	return nil
}

func (e *testEnv) relayInstruction(t *testing.T, amount uint64) solana.Instruction {
	ix, err := NewSwapInstruction(e.relayID, e.accounts, &SwapInstructionArgs{
		Amount: amount,
		Nonce:  e.nonce,
	})
	require.NoError(t, err)
	return ix
}

func (e *testEnv) relay(t *testing.T, amount uint64) error {
	return e.ledger.ExecuteTransaction(e.ctx, []ed25519.PublicKey{public(e.authority)}, e.relayInstruction(t, amount))
}

func (e *testEnv) data(t *testing.T, key ed25519.PublicKey) []byte {
	account, ok := e.ledger.GetAccount(key)
	require.True(t, ok)
	return account.Data
}

// expectedSwapAccounts is the account layout the swap program must see.
func (e *testEnv) expectedSwapAccounts() *serumswap.SwapInstructionAccounts {
	return &serumswap.SwapInstructionAccounts{
		Market:                 e.accounts.Market,
		OpenOrders:             e.accounts.OpenOrders,
		RequestQueue:           e.accounts.RequestQueue,
		EventQueue:             e.accounts.EventQueue,
		Bids:                   e.accounts.Bids,
		Asks:                   e.accounts.Asks,
		OrderPayerTokenAccount: e.accounts.OrderPayerTokenAccount,
		CoinVault:              e.accounts.CoinVault,
		PcVault:                e.accounts.PcVault,
		VaultSigner:            e.accounts.VaultSigner,
		CoinWallet:             e.accounts.CoinWallet,
		Authority:              e.accounts.Authority,
		PcWallet:               e.accounts.PcWallet,
		DexProgram:             e.accounts.DexProgram,
		TokenProgram:           e.accounts.TokenProgram,
		Rent:                   e.accounts.Rent,
	}
}

type invokeCall struct {
	ix    solana.Instruction
	seeds [][][]byte
}

type recordingInvoker struct {
	calls []invokeCall
	err   error
}

func (r *recordingInvoker) InvokeSigned(_ context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	r.calls = append(r.calls, invokeCall{ix: ix, seeds: signerSeeds})
	return r.err
}

// accountInfos turns an instruction's metas into the accounts a program
// would be handed for it.
func accountInfos(ix solana.Instruction) []*solana.AccountInfo {
	infos := make([]*solana.AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		infos[i] = &solana.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}
	}
	return infos
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}
