package solana

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

var (
	ErrNoAccountInfo = errors.New("no account info")
)

// Client provides the subset of the Solana JSON RPC API needed to look up
// relay accounts and submit relay transactions.
//
// Failed requests are not retried. A rejected transaction is resubmitted by
// the caller with a fresh blockhash, never by the client.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetLatestBlockhash(Commitment) (Blockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

type client struct {
	log    *logrus.Entry
	client jsonrpc.RPCClient
}

// New returns a client using the specified endpoint.
func New(endpoint Environment) Client {
	return NewWithRPCOptions(endpoint, nil)
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint Environment, opts *jsonrpc.RPCClientOpts) Client {
	return newWithRPCClient(jsonrpc.NewClientWithOpts(string(endpoint), opts))
}

func newWithRPCClient(rpcClient jsonrpc.RPCClient) *client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "solana/client"),
		client: rpcClient,
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	err := c.client.CallFor(out, method, params...)
	if err == nil {
		return nil
	}

	if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == 429 {
		c.log.WithField("method", method).Warn("rate limited")
	}
	return err
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrapf(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetLatestBlockhash(commitment Commitment) (hash Blockhash, err error) {
	type response struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	var resp response
	// note: the commitment has to be wrapped in an []interface{}, otherwise the
	//       RPC node complains.
	if err := c.call(&resp, "getLatestBlockhash", []interface{}{commitment}); err != nil {
		return hash, errors.Wrapf(err, "getLatestBlockhash() failed to send request")
	}

	decoded, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded blockhash")
	}
	if len(decoded) != len(hash) {
		return hash, errors.Errorf("invalid blockhash size: %d", len(decoded))
	}

	copy(hash[:], decoded)
	return hash, nil
}

func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signatures[0]

	txnBytes := txn.Marshal()
	if len(txnBytes) > MaxTransactionSize {
		return sig, ErrTransactionTooLarge
	}

	config := struct {
		SkipPreflight       bool   `json:"skipPreflight"`
		PreflightCommitment string `json:"preflightCommitment"`
		Encoding            string `json:"encoding"`
	}{
		PreflightCommitment: commitment.Commitment,
		Encoding:            "base64",
	}

	var sigStr string
	err := c.call(&sigStr, "sendTransaction", base64.StdEncoding.EncodeToString(txnBytes), config)
	if err == nil {
		return sig, nil
	}

	jsonRPCErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrapf(err, "sendTransaction() failed to send request")
	}

	txResult, parseErr := ParseRPCError(jsonRPCErr)
	if parseErr != nil || txResult == nil {
		return sig, err
	}

	c.log.WithFields(logrus.Fields{
		"signature": base58.Encode(sig[:]),
		"error":     txResult.Error(),
	}).Debug("transaction rejected in preflight")

	if txResult.instructionError != nil {
		return sig, *txResult.instructionError
	}
	return sig, txResult.transactionError
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (accountInfo AccountInfo, err error) {
	type rpcResponse struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	rpcConfig := struct {
		Commitment string `json:"commitment"`
		Encoding   string `json:"encoding"`
	}{
		Commitment: commitment.Commitment,
		Encoding:   "base64",
	}

	var resp rpcResponse
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account[:]), rpcConfig); err != nil {
		return accountInfo, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return accountInfo, ErrNoAccountInfo
	}

	accountInfo.Key = account

	accountInfo.Owner, err = base58.Decode(resp.Value.Owner)
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(resp.Value.Data) == 0 {
		return accountInfo, errors.New("missing account data")
	}
	accountInfo.Data, err = base64.StdEncoding.DecodeString(resp.Value.Data[0])
	if err != nil {
		return accountInfo, errors.Wrap(err, "invalid base64 encoded data")
	}

	accountInfo.Lamports = resp.Value.Lamports
	accountInfo.Executable = resp.Value.Executable

	return accountInfo, nil
}
