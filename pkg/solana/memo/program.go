package memo

import (
	"bytes"
	"crypto/ed25519"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// ProgramKey is the address of the memo program.
//
// Current key: Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo
var ProgramKey = ed25519.PublicKey{5, 74, 83, 80, 248, 93, 200, 130, 214, 20, 165, 86, 114, 120, 138, 41, 109, 223, 30, 171, 171, 208, 166, 6, 120, 136, 73, 50, 244, 238, 246, 160}

var ErrInvalidMemo = errors.New("memo is not valid utf-8")

// Instruction returns a memo instruction. Any signers must sign the
// transaction.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/memo/program/src/entrypoint.rs
func Instruction(data string, signers ...ed25519.PublicKey) solana.Instruction {
	accounts := make([]solana.AccountMeta, len(signers))
	for i, signer := range signers {
		accounts[i] = solana.NewReadonlyAccountMeta(signer, true)
	}

	return solana.NewInstruction(
		ProgramKey,
		[]byte(data),
		accounts...,
	)
}

// Validate checks a memo the way the memo program does.
func Validate(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidMemo
	}
	return nil
}

type DecompiledMemo struct {
	Data []byte
}

func DecompileMemo(m solana.Message, index int) (*DecompiledMemo, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	return &DecompiledMemo{Data: i.Data}, nil
}
