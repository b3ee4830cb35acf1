package swaprelay

import (
	"github.com/code-payments/serum-swap-relay/pkg/config"
	"github.com/code-payments/serum-swap-relay/pkg/config/env"
	"github.com/code-payments/serum-swap-relay/pkg/config/memory"
	"github.com/code-payments/serum-swap-relay/pkg/config/wrapper"
)

// The trade parameters other than the amount are not part of the relay
// instruction. These defaults reproduce the fixed values the relay has always
// used and can be overridden per deployment.
const (
	envConfigPrefix = "SWAP_RELAY_"

	SideConfigEnvName = envConfigPrefix + "SIDE"
	defaultSide       = "bid"

	MinExchangeRateConfigEnvName = envConfigPrefix + "MIN_EXCHANGE_RATE"
	defaultMinExchangeRate       = 1

	FromDecimalsConfigEnvName = envConfigPrefix + "FROM_DECIMALS"
	defaultFromDecimals       = 2

	QuoteDecimalsConfigEnvName = envConfigPrefix + "QUOTE_DECIMALS"
	defaultQuoteDecimals       = 2

	StrictExchangeRateConfigEnvName = envConfigPrefix + "STRICT_EXCHANGE_RATE"
	defaultStrictExchangeRate       = false
)

type conf struct {
	side               config.String
	minExchangeRate    config.Uint64
	fromDecimals       config.Uint64
	quoteDecimals      config.Uint64
	strictExchangeRate config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			side:               env.NewStringConfig(SideConfigEnvName, defaultSide),
			minExchangeRate:    env.NewUint64Config(MinExchangeRateConfigEnvName, defaultMinExchangeRate),
			fromDecimals:       env.NewUint64Config(FromDecimalsConfigEnvName, defaultFromDecimals),
			quoteDecimals:      env.NewUint64Config(QuoteDecimalsConfigEnvName, defaultQuoteDecimals),
			strictExchangeRate: env.NewBoolConfig(StrictExchangeRateConfigEnvName, defaultStrictExchangeRate),
		}
	}
}

type testOverrides struct {
	side               string
	minExchangeRate    uint64
	fromDecimals       uint64
	quoteDecimals      uint64
	strictExchangeRate bool
}

func defaultTestOverrides() *testOverrides {
	return &testOverrides{
		side:               defaultSide,
		minExchangeRate:    defaultMinExchangeRate,
		fromDecimals:       defaultFromDecimals,
		quoteDecimals:      defaultQuoteDecimals,
		strictExchangeRate: defaultStrictExchangeRate,
	}
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			side:               wrapper.NewStringConfig(memory.NewConfig(overrides.side), defaultSide),
			minExchangeRate:    wrapper.NewUint64Config(memory.NewConfig(overrides.minExchangeRate), defaultMinExchangeRate),
			fromDecimals:       wrapper.NewUint64Config(memory.NewConfig(overrides.fromDecimals), defaultFromDecimals),
			quoteDecimals:      wrapper.NewUint64Config(memory.NewConfig(overrides.quoteDecimals), defaultQuoteDecimals),
			strictExchangeRate: wrapper.NewBoolConfig(memory.NewConfig(overrides.strictExchangeRate), defaultStrictExchangeRate),
		}
	}
}
