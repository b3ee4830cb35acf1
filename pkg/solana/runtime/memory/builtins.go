package memory

import (
	"context"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
	compute_budget "github.com/code-payments/serum-swap-relay/pkg/solana/computebudget"
	"github.com/code-payments/serum-swap-relay/pkg/solana/memo"
	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime"
)

// registerBuiltins deploys the native programs a relay transaction may carry
// besides the relay itself. They only validate their instruction data.
func (l *Ledger) registerBuiltins() {
	for id, program := range map[string]runtime.Program{
		string(compute_budget.ProgramKey): runtime.ProgramFunc(processComputeBudget),
		string(memo.ProgramKey):           runtime.ProgramFunc(processMemo),
	} {
		l.programs[id] = program
		l.accounts[id] = &solana.AccountInfo{
			Key:        []byte(id),
			Lamports:   1,
			Executable: true,
		}
	}
}

func processComputeBudget(_ context.Context, invocation *runtime.Context) error {
	if err := compute_budget.Validate(invocation.Data); err != nil {
		return solana.ErrInvalidInstructionData
	}
	return nil
}

func processMemo(_ context.Context, invocation *runtime.Context) error {
	for _, account := range invocation.Accounts {
		if !account.IsSigner {
			return solana.ErrMissingRequiredSignature
		}
	}

	if err := memo.Validate(invocation.Data); err != nil {
		return solana.ErrInvalidInstructionData
	}
	return nil
}
