package remoting

import (
	"context"
	"fmt"

	"github.com/skizo-lang/skizo/internal/config"
)

// Dispatcher resolves a target exported object's method via its vtable
// and invokes the server stub the emitter generated for it (§4.9: "the
// server thread's listen loop dequeues the message, resolves the method
// via the target object's vtable, invokes the server stub"). Supplied by
// the owning domain — this package only owns the queueing/transport.
type Dispatcher interface {
	Invoke(targetObject, methodName string, args []Arg) (Arg, error)
}

// call is one pending cross-domain invocation: many senders enqueue
// concurrently, but result is a per-sender wait object (§5 "a wait object
// per sender") the sender alone blocks on.
type call struct {
	targetObject string
	methodName   string
	args         []Arg
	result       chan callResult
}

type callResult struct {
	value Arg
	err   error
}

// MessageQueue is the single-producer-single-consumer channel §5
// describes: many sender goroutines (one per inbound gRPC handler) feed
// it, and exactly one listen loop (the target domain's own goroutine)
// drains it, preserving the domain's single-threaded execution model —
// the queue, not the dispatcher, is what may be touched from other
// threads.
type MessageQueue struct {
	ch chan call
}

// NewMessageQueue returns an unbounded-enough (size 64) queue; a larger
// backlog than that indicates the consuming domain has stalled, which is
// a domain-abort condition the caller surfaces via context timeout
// instead of this package growing without bound.
func NewMessageQueue() *MessageQueue {
	return &MessageQueue{ch: make(chan call, 64)}
}

// Enqueue submits a call and blocks on its own wait object until the
// listen loop has dequeued and resolved it, or ctx is done first. Enqueue
// applies no timeout of its own; QueueContext builds a ctx bounded by
// MessageQueueTimeout.
func (q *MessageQueue) Enqueue(ctx context.Context, targetObject, methodName string, args []Arg) (Arg, error) {
	c := call{targetObject: targetObject, methodName: methodName, args: args, result: make(chan callResult, 1)}

	select {
	case q.ch <- c:
	case <-ctx.Done():
		return Arg{}, fmt.Errorf("remoting: message queue full, submit timed out: %w", ctx.Err())
	}

	select {
	case r := <-c.result:
		return r.value, r.err
	case <-ctx.Done():
		return Arg{}, fmt.Errorf("remoting: call to %s timed out: %w", methodName, ctx.Err())
	}
}

// Listen runs the target domain's single consumer loop: dequeue, dispatch,
// reply. Intended to run on the domain's own OS thread (§5 "one domain
// per OS thread"), returning when ctx is canceled.
func Listen(ctx context.Context, q *MessageQueue, d Dispatcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-q.ch:
			value, err := d.Invoke(c.targetObject, c.methodName, c.args)
			c.result <- callResult{value: value, err: err}
		}
	}
}

// CallContext builds a context bounded by RemoteCallTimeout, the default
// a cross-domain synchronous call is allowed to block for (§5).
func CallContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, config.RemoteCallTimeout)
}

// QueueContext builds a context bounded by MessageQueueTimeout, used for
// the enqueue-side poll (§5).
func QueueContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, config.MessageQueueTimeout)
}
