package swaprelay

import (
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/serum-swap-relay/pkg/retry"
	"github.com/code-payments/serum-swap-relay/pkg/retry/backoff"
	"github.com/code-payments/serum-swap-relay/pkg/solana"
	compute_budget "github.com/code-payments/serum-swap-relay/pkg/solana/computebudget"
	"github.com/code-payments/serum-swap-relay/pkg/solana/memo"
)

// JSON-RPC codes for malformed requests, which fail the same way on retry.
var nonRetriableRPCCodes = []int{-32600, -32601, -32602}

var defaultBlockhashRetryStrategies = []retry.Strategy{
	retry.Limit(3),
	retry.NonRetriableRPCCodes(nonRetriableRPCCodes...),
	retry.BackoffWithJitter(backoff.BinaryExponential(250*time.Millisecond), 2*time.Second, 0.1),
}

type submitOptions struct {
	computeUnitLimit uint32
	computeUnitPrice uint64
	memo             string

	blockhashRetryStrategies []retry.Strategy
}

// SubmitOption configures the transaction built by SubmitSwap.
type SubmitOption func(*submitOptions)

// WithComputeUnitLimit prepends a compute budget instruction requesting limit
// compute units.
func WithComputeUnitLimit(limit uint32) SubmitOption {
	return func(o *submitOptions) {
		o.computeUnitLimit = limit
	}
}

// WithComputeUnitPrice prepends a compute budget instruction setting the
// priority fee, in micro-lamports per compute unit.
func WithComputeUnitPrice(microLamports uint64) SubmitOption {
	return func(o *submitOptions) {
		o.computeUnitPrice = microLamports
	}
}

// WithMemo appends a memo, signed by the payer, after the relay instruction.
func WithMemo(memo string) SubmitOption {
	return func(o *submitOptions) {
		o.memo = memo
	}
}

// WithBlockhashRetryStrategies replaces the strategies used to retry fetching
// the latest blockhash. Submission itself is never retried.
func WithBlockhashRetryStrategies(strategies ...retry.Strategy) SubmitOption {
	return func(o *submitOptions) {
		o.blockhashRetryStrategies = strategies
	}
}

func (o *submitOptions) instructions(payer ed25519.PublicKey, ix solana.Instruction) ([]solana.Instruction, error) {
	var ixns []solana.Instruction
	if o.computeUnitLimit > 0 {
		ixns = append(ixns, compute_budget.SetComputeUnitLimit(o.computeUnitLimit))
	}
	if o.computeUnitPrice > 0 {
		ixns = append(ixns, compute_budget.SetComputeUnitPrice(o.computeUnitPrice))
	}

	ixns = append(ixns, ix)

	if len(o.memo) > 0 {
		if err := memo.Validate([]byte(o.memo)); err != nil {
			return nil, err
		}
		ixns = append(ixns, memo.Instruction(o.memo, payer))
	}

	return ixns, nil
}

// SubmitSwap sends a relay instruction in a new transaction paid for by payer.
// Additional signers, such as the swap authority, sign after the payer.
//
// Fetching the blockhash is retried. The transaction is not: a caller wanting
// to retry builds a new transaction, since the blockhash of a rejected one may
// have expired.
func SubmitSwap(
	client solana.Client,
	commitment solana.Commitment,
	payer ed25519.PrivateKey,
	ix solana.Instruction,
	signers []ed25519.PrivateKey,
	opts ...SubmitOption,
) (solana.Signature, error) {
	var sig solana.Signature

	o := submitOptions{
		blockhashRetryStrategies: defaultBlockhashRetryStrategies,
	}
	for _, opt := range opts {
		opt(&o)
	}

	payerKey := payer.Public().(ed25519.PublicKey)
	ixns, err := o.instructions(payerKey, ix)
	if err != nil {
		return sig, err
	}

	var blockhash solana.Blockhash
	_, err = retry.Retry(
		func() (err error) {
			blockhash, err = client.GetLatestBlockhash(commitment)
			return err
		},
		o.blockhashRetryStrategies...,
	)
	if err != nil {
		return sig, errors.Wrap(err, "error getting latest blockhash")
	}

	txn := solana.NewTransaction(payerKey, ixns...)
	txn.SetBlockhash(blockhash)
	if err := txn.Sign(append([]ed25519.PrivateKey{payer}, signers...)...); err != nil {
		return sig, errors.Wrap(err, "error signing transaction")
	}

	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"method":       "SubmitSwap",
		"signature":    base58.Encode(txn.Signature()),
		"instructions": len(ixns),
	})

	sig, err = client.SubmitTransaction(txn, commitment)
	if err != nil {
		log.WithError(err).Warn("swap transaction rejected")
		return sig, err
	}

	log.Debug("swap transaction submitted")
	return sig, nil
}
