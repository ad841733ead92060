// Package msgqueue implements the engine's out-of-band notification
// channel: a growable byte buffer of packed, typed messages handed from
// the RT thread to the pump thread (spec §3 "MessageQueue", §4.3).
//
// Grounded on pkg/midi/queue.go (append-by-bump-pointer,
// explicit growth only off the hot path), generalized from a typed Event
// slice to a raw packed byte buffer because MessageQueue must carry
// several unrelated POD payload kinds (engine load, perf stats, player
// state, per-node messages) behind one {type,size} header instead of one
// Go interface type.
package msgqueue

import (
	"encoding/binary"

	"github.com/rimewave/audioproc/internal/rtguard"
)

// Kind identifies a message's payload layout (spec §4.3).
type Kind uint32

const (
	KindEngineLoad Kind = iota
	KindPerfStats
	KindPlayerState
	KindNodeMessage
	// KindNodeStateChange and KindDeviceManagerMessage supplement the
	// spec's message kinds with two payloads the original engine emits
	// that the distillation dropped (SPEC_FULL.md SUPPLEMENTED FEATURES):
	// a processor's lifecycle-state transition, and a device hotplug/error
	// notification from the backend's device manager.
	KindNodeStateChange
	KindDeviceManagerMessage
)

const headerSize = 8 // type:u32, size:u32, 4-byte aligned (spec §3)

// Message is a decoded view into one entry of a Queue: Kind plus the raw
// payload bytes (still in the type's own wire format).
type Message struct {
	Kind    Kind
	Payload []byte
}

// Queue is a growable byte buffer holding a packed sequence of messages.
// Push bumps an end pointer; Grow is the only path that reallocates and is
// marked RT-unsafe (spec §3: "resize is explicitly marked RT-unsafe").
type Queue struct {
	data []byte
	end  int
}

// New creates a queue with the given initial capacity. Size the initial
// capacity generously from the control thread so steady-state Push never
// triggers a Grow.
func New(initialCapacity int) *Queue {
	return &Queue{data: make([]byte, initialCapacity)}
}

// Len reports how many bytes are currently used.
func (q *Queue) Len() int { return q.end }

// Cap reports the buffer's total capacity.
func (q *Queue) Cap() int { return len(q.data) }

// IsEmpty reports whether any messages have been pushed since the last Clear.
func (q *Queue) IsEmpty() bool { return q.end == 0 }

// Push appends one message. If the buffer lacks room, it grows first —
// calling Push from the RT thread when this happens is a real-time-safety
// violation (spec §3), reported via rtguard rather than silently eaten.
func (q *Queue) Push(kind Kind, payload []byte) {
	need := headerSize + len(payload)
	if q.end+need > len(q.data) {
		q.grow(q.end + need)
	}
	binary.LittleEndian.PutUint32(q.data[q.end:q.end+4], uint32(kind))
	binary.LittleEndian.PutUint32(q.data[q.end+4:q.end+8], uint32(len(payload)))
	copy(q.data[q.end+headerSize:], payload)
	q.end += need
}

// grow doubles the buffer until it can hold `need` bytes. Marked
// RT-unsafe: the render thread must size queues so this path is never hit
// during steady-state block processing.
func (q *Queue) grow(need int) {
	rtguard.Violation("msgqueue.Queue.grow")
	newCap := len(q.data)
	if newCap == 0 {
		newCap = 64
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, newCap)
	copy(grown, q.data[:q.end])
	q.data = grown
}

// Clear empties the queue without releasing its backing array, so the
// same Queue can be reused for the next block (spec §4.3 triple-buffering:
// the pump "clears the queue, and hands the empty queue back").
func (q *Queue) Clear() { q.end = 0 }

// Messages decodes every message currently in the queue. Called from the
// pump thread (spec §4.3), never the RT thread, so the allocation here is
// fine.
func (q *Queue) Messages() []Message {
	var out []Message
	off := 0
	for off+headerSize <= q.end {
		kind := Kind(binary.LittleEndian.Uint32(q.data[off : off+4]))
		size := int(binary.LittleEndian.Uint32(q.data[off+4 : off+8]))
		off += headerSize
		if off+size > q.end {
			break
		}
		out = append(out, Message{Kind: kind, Payload: q.data[off : off+size]})
		off += size
	}
	return out
}
