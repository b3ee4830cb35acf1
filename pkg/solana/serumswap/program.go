package serumswap

import (
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidAccounts        = errors.New("unexpected instruction accounts")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("22Y43yTVxuUkoRKdm9thyRhQ3SdgQS7c7kB6UNCiaczD")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	DEX_PROGRAM_ID       = ed25519.PublicKey(mustBase58Decode("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)
