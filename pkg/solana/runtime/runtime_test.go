package runtime

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

func TestContext_Account(t *testing.T) {
	a := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize)).Public().(ed25519.PublicKey)
	b := make(ed25519.PublicKey, ed25519.PublicKeySize)

	invocation := &Context{
		Accounts: []*solana.AccountInfo{
			{Key: a, Lamports: 1},
			{Key: a, Lamports: 2},
		},
	}

	actual, ok := invocation.Account(a)
	require.True(t, ok)
	assert.EqualValues(t, 1, actual.Lamports)

	_, ok = invocation.Account(b)
	assert.False(t, ok)
}

func TestProgramFunc(t *testing.T) {
	expected := errors.New("failure")

	var called *Context
	program := ProgramFunc(func(_ context.Context, invocation *Context) error {
		called = invocation
		return expected
	})

	invocation := &Context{Data: []byte{1}}
	assert.Equal(t, expected, program.Process(context.Background(), invocation))
	assert.Equal(t, invocation, called)
}
