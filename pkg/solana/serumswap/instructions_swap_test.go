package serumswap

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

func TestSwapInstruction_Discriminator(t *testing.T) {
	h := sha256.Sum256([]byte("global:swap"))
	assert.Equal(t, h[:8], swapInstructionDiscriminator)
}

func TestSwapInstruction_Encoding(t *testing.T) {
	accounts := generateAccounts(t)
	args := &SwapInstructionArgs{
		Side:   Ask,
		Amount: 0x0102030405060708,
		MinExchangeRate: ExchangeRate{
			Rate:          1,
			FromDecimals:  2,
			QuoteDecimals: 6,
			Strict:        true,
		},
	}

	ix, err := NewSwapInstruction(PROGRAM_ID, accounts, args)
	require.NoError(t, err)

	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	require.Len(t, ix.Data, 8+SwapInstructionArgsSize)
	assert.Equal(t, swapInstructionDiscriminator, ix.Data[:8])
	assert.Equal(t, []byte{
		1,                                              // side
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // amount
		1, 0, 0, 0, 0, 0, 0, 0, // rate
		2, // from decimals
		6, // quote decimals
		1, // strict
	}, ix.Data[8:])

	require.Len(t, ix.Accounts, SwapInstructionAccountsSize)
	for i, expected := range []ed25519.PublicKey{
		accounts.Market,
		accounts.OpenOrders,
		accounts.RequestQueue,
		accounts.EventQueue,
		accounts.Bids,
		accounts.Asks,
		accounts.OrderPayerTokenAccount,
		accounts.CoinVault,
		accounts.PcVault,
		accounts.VaultSigner,
		accounts.CoinWallet,
		accounts.Authority,
		accounts.PcWallet,
		accounts.DexProgram,
		accounts.TokenProgram,
		accounts.Rent,
	} {
		assert.EqualValues(t, expected, ix.Accounts[i].PublicKey, i)
		assert.Equal(t, i == 11, ix.Accounts[i].IsSigner, i)
	}
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.False(t, ix.Accounts[11].IsWritable)
	assert.False(t, ix.Accounts[15].IsWritable)
}

func TestSwapInstruction_Decode(t *testing.T) {
	accounts := generateAccounts(t)
	args := &SwapInstructionArgs{
		Side:   Bid,
		Amount: 42,
		MinExchangeRate: ExchangeRate{
			Rate:          1,
			FromDecimals:  2,
			QuoteDecimals: 2,
		},
	}

	program := generateKey(t)
	ix, err := NewSwapInstruction(program, accounts, args)
	require.NoError(t, err)

	decodedAccounts, decodedArgs, err := DecodeSwapInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, accounts, decodedAccounts)
	assert.Equal(t, args, decodedArgs)
}

func TestSwapInstruction_DecodeInvalid(t *testing.T) {
	ix, err := NewSwapInstruction(PROGRAM_ID, generateAccounts(t), &SwapInstructionArgs{Side: Bid, Amount: 1})
	require.NoError(t, err)

	truncated := ix
	truncated.Data = ix.Data[:len(ix.Data)-1]
	_, _, err = DecodeSwapInstruction(truncated)
	assert.Equal(t, ErrInvalidInstructionData, err)

	wrongDiscriminator := ix
	wrongDiscriminator.Data = append([]byte{}, ix.Data...)
	wrongDiscriminator.Data[0] ^= 0xff
	_, _, err = DecodeSwapInstruction(wrongDiscriminator)
	assert.Equal(t, ErrInvalidInstructionData, err)

	badSide := ix
	badSide.Data = append([]byte{}, ix.Data...)
	badSide.Data[8] = 2
	_, _, err = DecodeSwapInstruction(badSide)
	assert.Equal(t, ErrInvalidInstructionData, err)

	missingAccount := ix
	missingAccount.Accounts = ix.Accounts[:SwapInstructionAccountsSize-1]
	_, _, err = DecodeSwapInstruction(missingAccount)
	assert.Equal(t, ErrInvalidAccounts, err)

	unsigned := ix
	unsigned.Accounts = append([]solana.AccountMeta{}, ix.Accounts...)
	unsigned.Accounts[11].IsSigner = false
	_, _, err = DecodeSwapInstruction(unsigned)
	assert.Equal(t, ErrInvalidAccounts, err)
}

func TestSide(t *testing.T) {
	for _, tc := range []struct {
		value    string
		expected Side
	}{
		{"bid", Bid},
		{"Ask", Ask},
	} {
		actual, err := ParseSide(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual)
	}

	_, err := ParseSide("sell")
	assert.Error(t, err)

	assert.Equal(t, "bid", Bid.String())
	assert.Equal(t, "ask", Ask.String())
	assert.Equal(t, "side(7)", Side(7).String())
}

func TestErrorCodes(t *testing.T) {
	assert.EqualValues(t, 6000, SwapTokensCannotMatch)
	assert.EqualValues(t, 6001, SlippageExceeded)
	assert.EqualValues(t, 6002, ZeroSwap)
	assert.Equal(t, solana.InstructionErrorCustom, solana.ErrorKeyOf(SlippageExceeded))
}

func generateAccounts(t *testing.T) *SwapInstructionAccounts {
	return &SwapInstructionAccounts{
		Market:                 generateKey(t),
		OpenOrders:             generateKey(t),
		RequestQueue:           generateKey(t),
		EventQueue:             generateKey(t),
		Bids:                   generateKey(t),
		Asks:                   generateKey(t),
		OrderPayerTokenAccount: generateKey(t),
		CoinVault:              generateKey(t),
		PcVault:                generateKey(t),
		VaultSigner:            generateKey(t),
		CoinWallet:             generateKey(t),
		Authority:              generateKey(t),
		PcWallet:               generateKey(t),
		DexProgram:             DEX_PROGRAM_ID,
		TokenProgram:           SPL_TOKEN_PROGRAM_ID,
		Rent:                   SYSVAR_RENT_PUBKEY,
	}
}

func generateKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
