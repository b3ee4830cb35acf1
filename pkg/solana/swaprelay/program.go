package swaprelay

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrAuthorityConsumed = errors.New("derived authority already consumed")
	ErrAmountOutOfRange  = errors.New("amount does not fit the single byte amount field")
	ErrInvalidConfig     = errors.New("invalid trade parameter config")
)

// EMPTY_ADDRESS is the associated token account of the default public key. It
// marks a wallet that was never filled in, and is never a valid wallet for a
// swap.
var (
	EMPTY_ADDRESS = ed25519.PublicKey(mustBase58Decode("HJt8Tjdsc9ms9i4WCZEzhzr4oyf3ANcdzXrNdLPFqm3M"))
)

// IsEmptyAddress reports whether key is EMPTY_ADDRESS.
func IsEmptyAddress(key ed25519.PublicKey) bool {
	return len(key) == ed25519.PublicKeySize && string(key) == string(EMPTY_ADDRESS)
}
