package swaprelay

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/serum-swap-relay/pkg/retry"
	"github.com/code-payments/serum-swap-relay/pkg/solana"
	compute_budget "github.com/code-payments/serum-swap-relay/pkg/solana/computebudget"
	"github.com/code-payments/serum-swap-relay/pkg/solana/memo"
	"github.com/code-payments/serum-swap-relay/pkg/testutil"
)

type mockClient struct {
	blockhash    solana.Blockhash
	blockhashErr error
	// blockhashFailures is the number of blockhash requests failing with
	// blockhashErr before one succeeds. Zero fails every request.
	blockhashFailures int
	blockhashCalls    int
	submitErr         error

	submitted []solana.Transaction
}

func (m *mockClient) GetAccountInfo(ed25519.PublicKey, solana.Commitment) (solana.AccountInfo, error) {
	return solana.AccountInfo{}, solana.ErrNoAccountInfo
}

func (m *mockClient) GetLatestBlockhash(solana.Commitment) (solana.Blockhash, error) {
	m.blockhashCalls++
	if m.blockhashErr != nil && (m.blockhashFailures == 0 || m.blockhashCalls <= m.blockhashFailures) {
		return solana.Blockhash{}, m.blockhashErr
	}
	return m.blockhash, nil
}

func (m *mockClient) GetMinimumBalanceForRentExemption(uint64) (uint64, error) {
	return 0, nil
}

func (m *mockClient) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	m.submitted = append(m.submitted, txn)
	return txn.Signatures[0], m.submitErr
}

func TestSubmitSwap(t *testing.T) {
	env := setup(t)
	payer := testutil.GenerateSolanaKeypair(t)

	client := &mockClient{}
	client.blockhash[0] = 1

	ix := env.relayInstruction(t, 12)
	sig, err := SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{env.authority})
	require.NoError(t, err)

	require.Len(t, client.submitted, 1)
	txn := client.submitted[0]
	assert.Equal(t, txn.Signatures[0], sig)
	assert.Equal(t, client.blockhash, txn.Message.RecentBlockhash)

	require.Len(t, txn.Signatures, 2)
	message := txn.Message.Marshal()
	assert.True(t, ed25519.Verify(public(payer), message, txn.Signatures[0][:]))
	assert.True(t, ed25519.Verify(public(env.authority), message, txn.Signatures[1][:]))

	decompiled, err := txn.Message.Decompile()
	require.NoError(t, err)
	require.Len(t, decompiled, 1)
	assert.EqualValues(t, env.relayID, decompiled[0].Program)
	assert.Equal(t, ix.Data, decompiled[0].Data)
	require.Len(t, decompiled[0].Accounts, NumAccounts)
	for i, account := range ix.Accounts {
		assert.EqualValues(t, account.PublicKey, decompiled[0].Accounts[i].PublicKey, i)
	}

	// The submitted transaction executes against the relay
	env.ledger.SetAccount(&solana.AccountInfo{Key: public(payer)})
	require.NoError(t, env.ledger.ProcessTransaction(env.ctx, txn))
	require.Len(t, env.swaps, 1)
}

func TestSubmitSwap_Errors(t *testing.T) {
	env := setup(t)
	payer := testutil.GenerateSolanaKeypair(t)
	ix := env.relayInstruction(t, 1)

	client := &mockClient{blockhashErr: errors.New("unavailable")}
	_, err := SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{env.authority}, WithBlockhashRetryStrategies(retry.Limit(2)))
	assert.Error(t, err)
	assert.Equal(t, 2, client.blockhashCalls)
	assert.Empty(t, client.submitted)

	// Malformed requests are not retried
	client = &mockClient{blockhashErr: &jsonrpc.RPCError{Code: -32602, Message: "invalid params"}}
	_, err = SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{env.authority})
	assert.Error(t, err)
	assert.Equal(t, 1, client.blockhashCalls)
	assert.Empty(t, client.submitted)

	// The authority must sign
	client = &mockClient{}
	_, err = SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{testutil.GenerateSolanaKeypair(t)})
	assert.Error(t, err)
	assert.Empty(t, client.submitted)

	expected := solana.InstructionError{Index: 0, Err: solana.ErrInvalidArgument}
	client = &mockClient{submitErr: expected}
	_, err = SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{env.authority})
	assert.Equal(t, expected, err)
	assert.Len(t, client.submitted, 1)
	assert.Equal(t, 1, client.blockhashCalls)

	client = &mockClient{}
	_, err = SubmitSwap(client, solana.CommitmentConfirmed, payer, ix, []ed25519.PrivateKey{env.authority}, WithMemo(string([]byte{0xff})))
	assert.Equal(t, memo.ErrInvalidMemo, err)
	assert.Empty(t, client.submitted)
}

func TestSubmitSwap_BlockhashRetry(t *testing.T) {
	env := setup(t)
	payer := testutil.GenerateSolanaKeypair(t)

	client := &mockClient{
		blockhashErr:      &jsonrpc.RPCError{Code: 429, Message: "too many requests"},
		blockhashFailures: 2,
	}
	client.blockhash[0] = 2

	_, err := SubmitSwap(
		client,
		solana.CommitmentConfirmed,
		payer,
		env.relayInstruction(t, 3),
		[]ed25519.PrivateKey{env.authority},
		WithBlockhashRetryStrategies(retry.Limit(3), retry.RetriableRPCCodes(429)),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, client.blockhashCalls)
	require.Len(t, client.submitted, 1)
	assert.Equal(t, client.blockhash, client.submitted[0].Message.RecentBlockhash)
}

func TestSubmitSwap_Options(t *testing.T) {
	env := setup(t)
	payer := testutil.GenerateSolanaKeypair(t)
	client := &mockClient{}

	ix := env.relayInstruction(t, 7)
	_, err := SubmitSwap(
		client,
		solana.CommitmentConfirmed,
		payer,
		ix,
		[]ed25519.PrivateKey{env.authority},
		WithComputeUnitLimit(200_000),
		WithComputeUnitPrice(1_000),
		WithMemo("relay"),
	)
	require.NoError(t, err)
	require.Len(t, client.submitted, 1)

	decompiled, err := client.submitted[0].Message.Decompile()
	require.NoError(t, err)
	require.Len(t, decompiled, 4)

	limit, err := compute_budget.ParseSetComputeUnitLimitIxnData(decompiled[0].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 200_000, limit)

	price, err := compute_budget.ParseSetComputeUnitPriceIxnData(decompiled[1].Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000, price)

	assert.EqualValues(t, env.relayID, decompiled[2].Program)
	assert.Equal(t, ix.Data, decompiled[2].Data)

	decodedMemo, err := memo.DecompileMemo(client.submitted[0].Message, 3)
	require.NoError(t, err)
	assert.Equal(t, "relay", string(decodedMemo.Data))

	// The compute budget and memo programs are deployed on the ledger
	env.ledger.SetAccount(&solana.AccountInfo{Key: public(payer)})
	require.NoError(t, env.ledger.ProcessTransaction(env.ctx, client.submitted[0]))
	require.Len(t, env.swaps, 1)
	assert.EqualValues(t, 7, env.swaps[0].args.Amount)
}
