// Package notify implements the engine's single notification callback
// slot (spec §6 "Engine notification callback. A single registered
// function (void* userdata, bytes message) invoked on the pump thread").
//
// Go has no direct analogue of a `(void*, bytes)` C callback; Register
// takes a typed func(msgqueue.Message) instead, since the pump thread
// already decodes the out-messages queue into typed entries before
// dispatch and a raw-bytes-plus-userdata signature would just make the
// caller redo that decode.
package notify

import (
	"sync/atomic"

	"github.com/rimewave/audioproc/pkg/msgqueue"
)

// Callback receives one decoded out-message. Invoked only on the pump
// thread (spec §6); may allocate and block per spec §5's thread table.
type Callback func(msgqueue.Message)

// Bus holds the engine's single registered notification callback behind
// an atomic pointer, since Register may be called from a control-thread
// goroutine while the pump thread is concurrently dispatching. Grounded
// on pkg/framework/debug/profiler.go concurrency style
// (a field read by a different goroutine than the one that sets it),
// generalized from a mutex-guarded map to a single swappable callback.
type Bus struct {
	cb atomic.Pointer[Callback]
}

// NewBus returns a Bus with no callback registered; Dispatch is then a
// no-op until Register is called.
func NewBus() *Bus { return &Bus{} }

// Register installs cb as the engine's single notification callback,
// replacing any previous registration (spec §6: "a single registered
// function"). Safe to call concurrently with Dispatch.
func (b *Bus) Register(cb Callback) { b.cb.Store(&cb) }

// Dispatch invokes the registered callback once per message, in order.
// A nil registration is a silent no-op.
func (b *Bus) Dispatch(msgs []msgqueue.Message) {
	cb := b.cb.Load()
	if cb == nil {
		return
	}
	for _, m := range msgs {
		(*cb)(m)
	}
}
