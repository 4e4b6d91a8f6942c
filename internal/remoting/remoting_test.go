package remoting

import (
	"context"
	"testing"
	"time"
)

type echoDispatcher struct{}

func (echoDispatcher) Invoke(target, method string, args []Arg) (Arg, error) {
	return Arg{Kind: KindString, Str: target + "::" + method}, nil
}

func TestMessageQueueEnqueueDispatchesAndReturns(t *testing.T) {
	q := NewMessageQueue()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Listen(ctx, q, echoDispatcher{})

	result, err := q.Enqueue(context.Background(), "obj-1", "greet", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Str != "obj-1::greet" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestMessageQueueEnqueueTimesOutWithNoListener(t *testing.T) {
	q := NewMessageQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := q.Enqueue(ctx, "obj-1", "greet", nil); err == nil {
		t.Fatalf("expected timeout error with no consumer running")
	}
}

func TestExportedObjectsRoundTrip(t *testing.T) {
	e := NewExportedObjects()
	name := e.Export(42)
	obj, ok := e.Lookup(name)
	if !ok || obj.(int) != 42 {
		t.Fatalf("expected to look up exported object, got %v %v", obj, ok)
	}
	e.Revoke(name)
	if _, ok := e.Lookup(name); ok {
		t.Fatalf("expected revoked name to no longer resolve")
	}
}

func TestSplitOnceSeparatesNiceNameFromPayload(t *testing.T) {
	nice, payload := splitOnce("Animal|{\"sound\":\"bark\"}", '|')
	if nice != "Animal" || payload != `{"sound":"bark"}` {
		t.Fatalf("unexpected split: %q %q", nice, payload)
	}
}
