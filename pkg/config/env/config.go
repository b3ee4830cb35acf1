package env

import (
	"context"
	"os"
	"strings"

	"github.com/code-payments/serum-swap-relay/pkg/config"
	"github.com/code-payments/serum-swap-relay/pkg/config/wrapper"
)

type conf struct {
	val []byte
}

// NewConfig returns a config sourced from the environment variable named by
// the upper cased key. The variable is read once, at construction. Unset and
// blank variables have no value.
func NewConfig(key string) config.Config {
	c := &conf{}
	if v, ok := os.LookupEnv(strings.ToUpper(key)); ok {
		if v = strings.TrimSpace(v); len(v) > 0 {
			c.val = []byte(v)
		}
	}
	return c
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	if c.val == nil {
		return nil, config.ErrNoValue
	}
	return append([]byte{}, c.val...), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewStringConfig creates a env-based string config
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewBoolConfig creates a env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}
