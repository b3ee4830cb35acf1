package compute_budget

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

var (
	ErrInvalidLength      = errors.New("invalid compute budget instruction length")
	ErrInvalidInstruction = errors.New("invalid compute budget instruction")
)

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

// SetComputeUnitLimit caps the compute units the transaction may consume.
func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)
	data[0] = commandSetComputeUnitLimit
	binary.LittleEndian.PutUint32(data[1:], computeUnitLimit)

	return solana.NewInstruction(ProgramKey, data)
}

// SetComputeUnitPrice sets the priority fee in micro lamports per compute
// unit.
func SetComputeUnitPrice(computeUnitPrice uint64) solana.Instruction {
	data := make([]byte, 1+8)
	data[0] = commandSetComputeUnitPrice
	binary.LittleEndian.PutUint64(data[1:], computeUnitPrice)

	return solana.NewInstruction(ProgramKey, data)
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 1+4 {
		return 0, ErrInvalidLength
	}
	if data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint32(data[1:]), nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 1+8 {
		return 0, ErrInvalidLength
	}
	if data[0] != commandSetComputeUnitPrice {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint64(data[1:]), nil
}

// Validate checks that data is one of the supported compute budget
// instructions.
func Validate(data []byte) error {
	if len(data) == 0 {
		return ErrInvalidLength
	}

	var err error
	switch data[0] {
	case commandSetComputeUnitLimit:
		_, err = ParseSetComputeUnitLimitIxnData(data)
	case commandSetComputeUnitPrice:
		_, err = ParseSetComputeUnitPriceIxnData(data)
	default:
		err = ErrInvalidInstruction
	}
	return err
}
