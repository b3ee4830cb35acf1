package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// AccountInfo is an account as seen by a program during an invocation, and
// as returned by the RPC API (where the signer and writable flags are unset).
type AccountInfo struct {
	Key        ed25519.PublicKey
	IsSigner   bool
	IsWritable bool

	Lamports   uint64
	Data       []byte
	Owner      ed25519.PublicKey
	Executable bool
}

// Clone returns a deep copy of the account.
func (a *AccountInfo) Clone() *AccountInfo {
	cloned := &AccountInfo{
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
		Lamports:   a.Lamports,
		Executable: a.Executable,
	}

	if a.Key != nil {
		cloned.Key = append(ed25519.PublicKey{}, a.Key...)
	}
	if a.Owner != nil {
		cloned.Owner = append(ed25519.PublicKey{}, a.Owner...)
	}
	if a.Data != nil {
		cloned.Data = append([]byte{}, a.Data...)
	}

	return cloned
}

// Meta returns the AccountMeta a nested call would use to forward this
// account with its current privileges.
func (a *AccountInfo) Meta() AccountMeta {
	return AccountMeta{
		PublicKey:  a.Key,
		IsSigner:   a.IsSigner,
		IsWritable: a.IsWritable,
	}
}

func (a *AccountInfo) String() string {
	if a == nil {
		return "<nil>"
	}
	return base58.Encode(a.Key)
}
