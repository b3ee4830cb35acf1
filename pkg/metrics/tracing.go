package metrics

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer is a segment within the New Relic transaction carried by a
// context. A nil tracer is valid and does nothing, which is what callers get
// when no transaction is in progress.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// TraceMethodCall starts a segment named after the struct or package and the
// method being traced.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	return &MethodTracer{
		txn: txn,
		seg: txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName)),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

func (t *MethodTracer) AddAttributes(attributes map[string]interface{}) {
	for key, value := range attributes {
		t.AddAttribute(key, value)
	}
}

// OnError notices err on the enclosing transaction. Nil errors are ignored.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}
	t.txn.NoticeError(err)
}

func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
}
