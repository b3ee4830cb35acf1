package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that retries actions based off of the provided
// strategies. With no strategies, actions are retried until they succeed.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry executes action until it succeeds or one of the strategies indicates
// no further attempt should be made. It returns the number of attempts and
// the last error.
//
// Strategies run in order, so any that sleep should be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	for i := uint(1); ; i++ {
		err := action()
		if err == nil {
			return i, nil
		}

		for _, s := range strategies {
			if !s(i, err) {
				return i, err
			}
		}
	}
}
