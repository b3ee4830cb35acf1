// Package backoff provides delay strategies for retry.
package backoff

import (
	"math"
	"time"
)

// Strategy provides the amount of time to wait before the next attempt.
// Attempts start at 1.
type Strategy func(attempts uint) time.Duration

// Constant always returns interval.
func Constant(interval time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		return interval
	}
}

// Linear returns baseDelay * attempts.
//
// Ex. Linear(2*time.Second) = 2s, 4s, 6s, 8s, ...
func Linear(baseDelay time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if delay := baseDelay * time.Duration(attempts); delay >= 0 {
			return delay
		}

		return math.MaxInt64
	}
}

// Exponential returns baseDelay * base^(attempts - 1).
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		if delay := baseDelay * time.Duration(math.Pow(base, float64(attempts-1))); delay >= 0 {
			return delay
		}

		return math.MaxInt64
	}
}

// BinaryExponential is Exponential with a base of 2.
//
// Ex. BinaryExponential(2*time.Second) = 2s, 4s, 8s, 16s, ...
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}
