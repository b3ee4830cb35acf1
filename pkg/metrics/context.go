package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type contextKey struct{}

// NewRelicContextKey is the context key under which the New Relic application
// is stored for custom events and metrics.
var NewRelicContextKey = contextKey{}

// NewContext returns a context carrying the New Relic application. Passing a
// nil application returns ctx unchanged.
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}
