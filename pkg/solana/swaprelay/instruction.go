package swaprelay

import (
	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

const InstructionDataSize = (1 + // Amount
	1) // Nonce

// InstructionData is the relay's instruction payload. The amount is a single
// byte on the wire, so at most 255 base units can be swapped per call.
type InstructionData struct {
	Amount uint8
	Nonce  uint8
}

// ParseInstructionData reads the payload positionally. Trailing bytes are
// ignored.
func ParseInstructionData(data []byte) (*InstructionData, error) {
	if len(data) < InstructionDataSize {
		return nil, solana.ErrInvalidInstructionData
	}

	var offset int
	var parsed InstructionData
	getUint8(data, &parsed.Amount, &offset)
	getUint8(data, &parsed.Nonce, &offset)
	return &parsed, nil
}

func (d *InstructionData) Marshal() []byte {
	var offset int
	data := make([]byte, InstructionDataSize)
	putUint8(data, d.Amount, &offset)
	putUint8(data, d.Nonce, &offset)
	return data
}
