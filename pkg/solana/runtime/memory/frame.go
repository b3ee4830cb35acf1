package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/solana"
	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime"
)

// frame is one program invocation. Programs mutate the frame's copies of
// accounts, which are written back to the transaction's working set when the
// program returns or before it issues a nested call.
type frame struct {
	ledger  *Ledger
	working map[string]*solana.AccountInfo
	depth   int

	programID ed25519.PublicKey
	accounts  []*solana.AccountInfo
	unique    map[string]*solana.AccountInfo
	snapshot  map[string]*solana.AccountInfo
}

func newFrame(l *Ledger, working map[string]*solana.AccountInfo, ix solana.Instruction, depth int) (*frame, error) {
	f := &frame{
		ledger:    l,
		working:   working,
		depth:     depth,
		programID: ix.Program,
		accounts:  make([]*solana.AccountInfo, 0, len(ix.Accounts)),
		unique:    make(map[string]*solana.AccountInfo),
		snapshot:  make(map[string]*solana.AccountInfo),
	}

	for _, meta := range ix.Accounts {
		key := string(meta.PublicKey)

		info, ok := f.unique[key]
		if !ok {
			stored, ok := working[key]
			if !ok {
				return nil, errors.Wrapf(solana.ErrMissingAccount, "account %s", base58.Encode(meta.PublicKey))
			}

			info = stored.Clone()
			info.IsSigner = false
			info.IsWritable = false
			f.unique[key] = info
			f.snapshot[key] = stored.Clone()
		}

		// Duplicate metas share the union of their privileges.
		info.IsSigner = info.IsSigner || meta.IsSigner
		info.IsWritable = info.IsWritable || meta.IsWritable

		f.accounts = append(f.accounts, info)
	}

	return f, nil
}

// InvokeSigned implements runtime.Invoker.InvokeSigned.
func (f *frame) InvokeSigned(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if f.depth+1 > runtime.MaxInvokeDepth {
		return solana.ErrCallDepth
	}

	var derivedSigners []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(f.programID, seeds...)
		if err != nil {
			return errors.Wrap(solana.ErrInvalidSeeds, err.Error())
		}
		derivedSigners = append(derivedSigners, address)
	}

	if _, ok := f.unique[string(ix.Program)]; !ok {
		return errors.Wrapf(solana.ErrMissingAccount, "program %s", base58.Encode(ix.Program))
	}

	for _, meta := range ix.Accounts {
		info, ok := f.unique[string(meta.PublicKey)]
		if !ok {
			return errors.Wrapf(solana.ErrMissingAccount, "account %s", base58.Encode(meta.PublicKey))
		}

		if meta.IsWritable && !info.IsWritable {
			return errors.Wrapf(solana.ErrPrivilegeEscalation, "account %s is not writable", base58.Encode(meta.PublicKey))
		}

		if meta.IsSigner && !info.IsSigner && !containsKey(derivedSigners, meta.PublicKey) {
			return errors.Wrapf(solana.ErrMissingRequiredSignature, "account %s", base58.Encode(meta.PublicKey))
		}
	}

	if err := f.flush(); err != nil {
		return err
	}

	if err := f.ledger.execute(ctx, f.working, ix, f.depth+1); err != nil {
		return err
	}

	f.refresh()
	return nil
}

// flush writes changes to writable accounts back to the working set. Changes
// to readonly accounts fail the invocation.
func (f *frame) flush() error {
	for key, info := range f.unique {
		before := f.snapshot[key]

		if !info.IsWritable {
			if info.Lamports != before.Lamports {
				return errors.Wrapf(solana.ErrReadonlyLamportChange, "account %s", info)
			}
			if !bytes.Equal(info.Data, before.Data) || !bytes.Equal(info.Owner, before.Owner) {
				return errors.Wrapf(solana.ErrReadonlyDataModified, "account %s", info)
			}
			continue
		}

		stored := f.working[key]
		stored.Lamports = info.Lamports
		stored.Data = append([]byte(nil), info.Data...)
		stored.Owner = append(ed25519.PublicKey(nil), info.Owner...)
		f.snapshot[key] = stored.Clone()
	}
	return nil
}

// refresh reloads the frame's accounts after a nested call changed them.
func (f *frame) refresh() {
	for key, info := range f.unique {
		stored := f.working[key]
		info.Lamports = stored.Lamports
		info.Data = append([]byte(nil), stored.Data...)
		info.Owner = append(ed25519.PublicKey(nil), stored.Owner...)
		f.snapshot[key] = stored.Clone()
	}
}
