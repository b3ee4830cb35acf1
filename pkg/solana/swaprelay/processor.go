package swaprelay

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/serum-swap-relay/pkg/solana/runtime"
)

// Program relays a swap to the swap program, signing as the address derived
// from the seed program's key.
type Program struct {
	log  *logrus.Entry
	conf *conf
}

func NewProgram(configProvider ConfigProvider) *Program {
	return &Program{
		log:  logrus.StandardLogger().WithField("program", "swap_relay"),
		conf: configProvider(),
	}
}

// TradeDefaults returns the trade parameters used for every swap, with a zero
// amount.
func (p *Program) TradeDefaults(ctx context.Context) (*TradeParameters, error) {
	return p.conf.tradeDefaults(ctx)
}

// Process implements runtime.Program.Process.
//
// Errors are returned as solana program errors so the host can report them.
// An error from the nested swap is returned unchanged.
func (p *Program) Process(ctx context.Context, invocation *runtime.Context) error {
	log := p.log.WithField("program_id", base58.Encode(invocation.ProgramID))

	bundle, err := BindAccounts(invocation.Accounts)
	if err != nil {
		log.WithError(err).WithField("accounts", len(invocation.Accounts)).Debug("failed to bind accounts")
		return err
	}

	data, err := ParseInstructionData(invocation.Data)
	if err != nil {
		log.WithError(err).Debug("invalid instruction data")
		return err
	}

	log = log.WithFields(logrus.Fields{
		"amount":    data.Amount,
		"nonce":     data.Nonce,
		"authority": bundle.DerivedAuthority.String(),
	})

	authority, err := VerifyDerivedAuthority(invocation.ProgramID, bundle.SeedProgram.Key, data.Nonce, bundle.DerivedAuthority.Key)
	if err != nil {
		log.WithError(err).Debug("derived authority mismatch")
		return err
	}

	if err := bundle.ValidateWallets(); err != nil {
		log.WithError(err).Debug("invalid wallet")
		return err
	}

	params, err := p.TradeDefaults(ctx)
	if err != nil {
		log.WithError(err).Warn("failure loading trade parameters")
		return err
	}
	params.Amount = uint64(data.Amount)

	ix, signerSeeds, err := NewSwapInvocation(bundle, params, authority)
	if err != nil {
		log.WithError(err).Warn("failure building swap invocation")
		return err
	}

	log.WithFields(logrus.Fields{
		"swap_program": bundle.SwapProgram.String(),
		"side":         params.Side.String(),
	}).Debug("invoking swap")

	return invocation.Invoker.InvokeSigned(ctx, ix, signerSeeds)
}
