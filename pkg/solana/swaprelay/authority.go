package swaprelay

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
)

// seedLength is how much of the seed program's key is used as the derivation
// seed.
const seedLength = 32

// DerivedAuthority is the capability to sign a nested call as the relay's
// program derived address. It only comes from VerifyDerivedAuthority, and its
// signer seeds can be taken once.
type DerivedAuthority struct {
	address  ed25519.PublicKey
	seed     []byte
	nonce    uint8
	consumed bool
}

// VerifyDerivedAuthority checks that claimed is the address derived under
// programID from the seed program's key and nonce. Any failure, including a
// seed and nonce that don't derive an address, is solana.ErrInvalidArgument.
func VerifyDerivedAuthority(programID, seedProgram ed25519.PublicKey, nonce uint8, claimed ed25519.PublicKey) (*DerivedAuthority, error) {
	if len(seedProgram) < seedLength {
		return nil, solana.ErrInvalidArgument
	}

	seed := append([]byte{}, seedProgram[:seedLength]...)

	expected, err := solana.CreateProgramAddress(programID, seed, []byte{nonce})
	if err != nil {
		return nil, errors.Wrap(solana.ErrInvalidArgument, err.Error())
	}

	if !solana.KeysEqual(expected, claimed) {
		return nil, solana.ErrInvalidArgument
	}

	return &DerivedAuthority{
		address: expected,
		seed:    seed,
		nonce:   nonce,
	}, nil
}

func (a *DerivedAuthority) Address() ed25519.PublicKey {
	return append(ed25519.PublicKey{}, a.address...)
}

func (a *DerivedAuthority) Nonce() uint8 {
	return a.nonce
}

// consume marks the authority as spent and returns its signer seeds.
func (a *DerivedAuthority) consume() ([][]byte, error) {
	if a == nil {
		return nil, solana.ErrInvalidArgument
	}
	if a.consumed {
		return nil, ErrAuthorityConsumed
	}
	a.consumed = true

	return [][]byte{
		append([]byte{}, a.seed...),
		{a.nonce},
	}, nil
}

// GetDerivedAuthorityAddress returns the relay authority for seedProgram along
// with the nonce to put in the relay instruction.
func GetDerivedAuthorityAddress(programID, seedProgram ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	if len(seedProgram) < seedLength {
		return nil, 0, solana.ErrInvalidPublicKey
	}

	return solana.FindProgramAddressAndBump(programID, seedProgram[:seedLength])
}
