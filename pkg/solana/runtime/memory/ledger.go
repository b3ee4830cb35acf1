// Package memory provides an in memory ledger host for running programs in
// tests and local simulations.
package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/serum-swap-relay/pkg/metrics"
	"github.com/code-payments/serum-swap-relay/pkg/solana"
	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime"
)

const (
	metricsStructName = "solana.runtime.memory.ledger"

	transactionFailedEventName = "LedgerTransactionFailed"
)

var (
	ErrProgramAlreadyRegistered = errors.New("program already registered")
)

// Ledger executes transactions against an in memory account store.
//
// Transactions are serialized and atomic: the account store only changes
// when every instruction, including nested calls, succeeds. Programs must not
// call back into the Ledger from Process; they see accounts through their
// runtime.Context only.
type Ledger struct {
	log *logrus.Entry

	mu          sync.Mutex
	accounts    map[string]*solana.AccountInfo
	programs    map[string]runtime.Program
	invocations map[string]int
}

// New returns an empty ledger with the compute budget and memo programs
// deployed.
func New() *Ledger {
	l := &Ledger{
		log:         logrus.StandardLogger().WithField("type", "solana/runtime/memory"),
		accounts:    make(map[string]*solana.AccountInfo),
		programs:    make(map[string]runtime.Program),
		invocations: make(map[string]int),
	}
	l.registerBuiltins()
	return l
}

// SetAccount creates or replaces an account. Signer and writable flags are
// per instruction and are not stored.
func (l *Ledger) SetAccount(account *solana.AccountInfo) {
	cloned := account.Clone()
	cloned.IsSigner = false
	cloned.IsWritable = false

	l.mu.Lock()
	l.accounts[string(account.Key)] = cloned
	l.mu.Unlock()
}

// GetAccount returns a copy of the account's committed state.
func (l *Ledger) GetAccount(key ed25519.PublicKey) (*solana.AccountInfo, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[string(key)]
	if !ok {
		return nil, false
	}
	return account.Clone(), true
}

// RegisterProgram deploys program at id, creating its executable account.
func (l *Ledger) RegisterProgram(id ed25519.PublicKey, program runtime.Program) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[string(id)]; ok {
		return ErrProgramAlreadyRegistered
	}

	l.programs[string(id)] = program
	l.accounts[string(id)] = &solana.AccountInfo{
		Key:        append(ed25519.PublicKey{}, id...),
		Lamports:   1,
		Executable: true,
	}
	return nil
}

// Invocations returns how many times program has been invoked, at the top
// level or through nested calls. Invocations of failed transactions count.
func (l *Ledger) Invocations(program ed25519.PublicKey) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.invocations[string(program)]
}

// ProcessTransaction verifies the transaction's signatures and executes its
// instructions.
func (l *Ledger) ProcessTransaction(ctx context.Context, txn solana.Transaction) error {
	numSignatures := int(txn.Message.Header.NumSignatures)
	if len(txn.Signatures) != numSignatures || len(txn.Message.Accounts) < numSignatures {
		return errors.Wrap(solana.ErrMissingRequiredSignature, "signature count mismatch")
	}

	message := txn.Message.Marshal()
	for i, sig := range txn.Signatures {
		if !ed25519.Verify(txn.Message.Accounts[i], message, sig[:]) {
			return errors.Wrapf(solana.ErrMissingRequiredSignature, "invalid signature for %s", base58.Encode(txn.Message.Accounts[i]))
		}
	}

	instructions, err := txn.Message.Decompile()
	if err != nil {
		return errors.Wrap(err, "error decompiling message")
	}

	return l.ExecuteTransaction(ctx, txn.Message.Accounts[:numSignatures], instructions...)
}

// ExecuteTransaction executes instructions in order as a single atomic
// transaction signed by signers. A failure is returned as a
// solana.InstructionError identifying the failed top level instruction.
func (l *Ledger) ExecuteTransaction(ctx context.Context, signers []ed25519.PublicKey, instructions ...solana.Instruction) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "ExecuteTransaction")
	tracer.AddAttribute("instructions", len(instructions))
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	working := make(map[string]*solana.AccountInfo, len(l.accounts))
	for key, account := range l.accounts {
		working[key] = account.Clone()
	}

	for i, ix := range instructions {
		err := l.executeTopLevel(ctx, working, signers, ix)
		if err == nil {
			continue
		}

		l.log.WithError(err).WithFields(logrus.Fields{
			"instruction": i,
			"program":     base58.Encode(ix.Program),
		}).Debug("transaction failed, reverting account changes")

		metrics.RecordEvent(ctx, transactionFailedEventName, map[string]interface{}{
			"instruction": i,
			"program":     base58.Encode(ix.Program),
			"error":       string(solana.ErrorKeyOf(err)),
		})

		return solana.InstructionError{Index: i, Err: err}
	}

	l.accounts = working
	return nil
}

func (l *Ledger) executeTopLevel(ctx context.Context, working map[string]*solana.AccountInfo, signers []ed25519.PublicKey, ix solana.Instruction) error {
	for _, account := range ix.Accounts {
		if account.IsSigner && !containsKey(signers, account.PublicKey) {
			return errors.Wrapf(solana.ErrMissingRequiredSignature, "account %s", base58.Encode(account.PublicKey))
		}
	}

	return l.execute(ctx, working, ix, 1)
}

// execute runs ix at the provided call depth. Privileges of the instruction's
// account metas must already have been checked by the caller.
func (l *Ledger) execute(ctx context.Context, working map[string]*solana.AccountInfo, ix solana.Instruction, depth int) error {
	program, ok := l.programs[string(ix.Program)]
	if !ok {
		return errors.Wrapf(solana.ErrUnsupportedProgramID, "program %s", base58.Encode(ix.Program))
	}

	f, err := newFrame(l, working, ix, depth)
	if err != nil {
		return err
	}

	l.invocations[string(ix.Program)]++

	invocation := &runtime.Context{
		ProgramID: ix.Program,
		Accounts:  f.accounts,
		Data:      append([]byte{}, ix.Data...),
		Invoker:   f,
	}
	if err := program.Process(ctx, invocation); err != nil {
		return err
	}

	return f.flush()
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
