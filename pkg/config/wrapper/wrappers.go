package wrapper

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/code-payments/serum-swap-relay/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

type converter[T any] func(raw interface{}) (T, error)

// valueConfig adapts an untyped config.Config to a typed one. The last
// successfully observed value is returned when the source fails.
type valueConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newValueConfig[T any](override config.Config, defaultValue T, convert converter[T]) *valueConfig[T] {
	return &valueConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *valueConfig[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)

	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()

	if err == config.ErrNoValue {
		c.setLastValue(c.defaultValue)
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.setLastValue(newValue)
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *valueConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *valueConfig[T]) Shutdown() {
	c.override.Shutdown()
}

func (c *valueConfig[T]) setLastValue(value T) {
	c.stateMu.Lock()
	c.lastValue = value
	c.stateMu.Unlock()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newValueConfig(override, defaultValue, func(raw interface{}) (bool, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(typed))
		case bool:
			return typed, nil
		default:
			return false, ErrUnsuportedConversion
		}
	})
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newValueConfig(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch typed := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(typed), 10, 64)
		case uint64:
			return typed, nil
		case uint8:
			return uint64(typed), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newValueConfig(override, defaultValue, func(raw interface{}) (string, error) {
		switch typed := raw.(type) {
		case []byte:
			return string(typed), nil
		case string:
			return typed, nil
		default:
			return "", ErrUnsuportedConversion
		}
	})
}
