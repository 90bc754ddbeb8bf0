// Package middleware implements the five process-wide named channels that
// mediate between external gateways and the trading-engine fleet: a typed
// registration slot with at-most-one bound receiver, readable without
// tearing from any number of concurrent senders.
package middleware

import (
	"errors"
	"sync/atomic"
)

// ErrChannelUnbound is returned by Send/Emit when no receiver is currently
// bound to the channel.
var ErrChannelUnbound = errors.New("middleware: channel unbound")

// Receiver handles a request and produces a reply.
type Receiver[Req, Reply any] func(Req) Reply

// Listener handles an event with no reply.
type Listener[Event any] func(Event)

// Channel is a request/reply mediator slot. Bind/Release are lifecycle
// operations meant to run on the startup/shutdown path; Send is invoked
// concurrently from many goroutines and only ever loads the slot.
type Channel[Req, Reply any] struct {
	receiver atomic.Pointer[Receiver[Req, Reply]]
}

// Bind replaces the current binding with r. Binding is not stacked: a
// second Bind simply overwrites the first.
func (c *Channel[Req, Reply]) Bind(r Receiver[Req, Reply]) {
	c.receiver.Store(&r)
}

// Release clears the current binding. Calling Release when nothing is
// bound is a no-op.
func (c *Channel[Req, Reply]) Release() {
	c.receiver.Store(nil)
}

// Send invokes the bound receiver with req. Returns ErrChannelUnbound if no
// receiver is currently bound.
func (c *Channel[Req, Reply]) Send(req Req) (Reply, error) {
	var zero Reply
	p := c.receiver.Load()
	if p == nil {
		return zero, ErrChannelUnbound
	}
	return (*p)(req), nil
}

// Bound reports whether a receiver is currently bound.
func (c *Channel[Req, Reply]) Bound() bool {
	return c.receiver.Load() != nil
}

// EventChannel is an emit-only mediator slot for fire-and-forget events.
type EventChannel[Event any] struct {
	listener atomic.Pointer[Listener[Event]]
}

// Bind replaces the current listener with l.
func (c *EventChannel[Event]) Bind(l Listener[Event]) {
	c.listener.Store(&l)
}

// Release clears the current listener.
func (c *EventChannel[Event]) Release() {
	c.listener.Store(nil)
}

// Emit invokes the bound listener with evt. Returns ErrChannelUnbound if no
// listener is currently bound.
func (c *EventChannel[Event]) Emit(evt Event) error {
	p := c.listener.Load()
	if p == nil {
		return ErrChannelUnbound
	}
	(*p)(evt)
	return nil
}

// Bound reports whether a listener is currently bound.
func (c *EventChannel[Event]) Bound() bool {
	return c.listener.Load() != nil
}
