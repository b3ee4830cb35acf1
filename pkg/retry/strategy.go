package retry

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/serum-swap-relay/pkg/retry/backoff"
)

// Strategy determines whether or not an action should be retried. Strategies
// are allowed to delay or cause other side effects.
type Strategy func(attempts uint, err error) bool

// Limit returns a strategy that limits the total number of attempts.
// maxAttempts should be >= 1, since the action is evaluated first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, err error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors returns a strategy that only retries the provided errors,
// wrapped or not.
func RetriableErrors(retriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range retriableErrors {
			if errors.Is(err, e) {
				return true
			}
		}

		return false
	}
}

// NonRetriableErrors returns a strategy that never retries the provided
// errors, wrapped or not.
func NonRetriableErrors(nonRetriableErrors ...error) Strategy {
	return func(attempts uint, err error) bool {
		for _, e := range nonRetriableErrors {
			if errors.Is(err, e) {
				return false
			}
		}

		return true
	}
}

// RetriableRPCCodes returns a strategy that only retries JSON-RPC errors
// carrying one of the provided codes.
func RetriableRPCCodes(retriableCodes ...int) Strategy {
	return func(attempts uint, err error) bool {
		code, ok := rpcCode(err)
		if !ok {
			return false
		}

		for _, c := range retriableCodes {
			if code == c {
				return true
			}
		}

		return false
	}
}

// NonRetriableRPCCodes returns a strategy that never retries JSON-RPC errors
// carrying one of the provided codes. Other errors are retried.
func NonRetriableRPCCodes(nonRetriableCodes ...int) Strategy {
	return func(attempts uint, err error) bool {
		code, ok := rpcCode(err)
		if !ok {
			return true
		}

		for _, c := range nonRetriableCodes {
			if code == c {
				return false
			}
		}

		return true
	}
}

func rpcCode(err error) (int, bool) {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) {
		return 0, false
	}
	return rpcErr.Code, true
}

// Backoff returns a strategy that sleeps before the next attempt, for at most
// maxBackoff.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return func(attempts uint, err error) bool {
		delay := strategy(attempts)
		cappedDelay := time.Duration(math.Min(float64(maxBackoff), float64(delay)))
		sleeperImpl.Sleep(cappedDelay)
		return true
	}
}

// BackoffWithJitter returns a strategy similar to Backoff, with the capped
// delay randomly shifted by up to jitter (a fraction of the delay) either way.
// A capped delay of 100ms with a jitter of 0.1 results in 100ms +/- 10ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, jitter float64) Strategy {
	return func(attempts uint, err error) bool {
		delay := strategy(attempts)
		cappedDelay := time.Duration(math.Min(float64(maxBackoff), float64(delay)))

		cappedDelayWithJitter := time.Duration(float64(cappedDelay) * (1 + (rand.Float64()*jitter*2 - jitter)))
		sleeperImpl.Sleep(cappedDelayWithJitter)
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (r *realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = &realSleeper{}
