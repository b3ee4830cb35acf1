// Package runtime defines the contract between on-ledger programs and the
// host that executes them.
package runtime

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// MaxInvokeDepth is the deepest a chain of nested calls may go, counting the
// top level instruction.
const MaxInvokeDepth = 4

// Context is everything a program sees for one invocation.
type Context struct {
	ProgramID ed25519.PublicKey

	// Accounts are in the order the caller listed them. Duplicate keys share
	// the same *AccountInfo. Mutations to writable accounts are picked up by
	// the host when the program returns or issues a nested call.
	Accounts []*solana.AccountInfo

	Data []byte

	Invoker Invoker
}

// Account returns the first account in the invocation with the provided key.
func (c *Context) Account(key ed25519.PublicKey) (*solana.AccountInfo, bool) {
	for _, account := range c.Accounts {
		if solana.KeysEqual(account.Key, key) {
			return account, true
		}
	}
	return nil, false
}

// Program is an on-ledger program.
type Program interface {
	// Process executes a single instruction. A non-nil error fails the
	// transaction and reverts every account change it made.
	Process(ctx context.Context, invocation *Context) error
}

// ProgramFunc adapts a function to a Program.
type ProgramFunc func(ctx context.Context, invocation *Context) error

// Process implements Program.Process.
func (f ProgramFunc) Process(ctx context.Context, invocation *Context) error {
	return f(ctx, invocation)
}

// Invoker issues nested calls on behalf of the currently executing program.
type Invoker interface {
	// InvokeSigned calls into another program. Each entry of signerSeeds is
	// the seed set of a program address, derived under the calling program,
	// that the call is signed as. The callee's error is returned unchanged.
	InvokeSigned(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error
}
