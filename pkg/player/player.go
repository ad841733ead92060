// Package player implements Player: the musical transport a Realm
// optionally owns, draining control-thread mutations into per-block
// SampleTime entries the VM's opcodes read (spec §3 "Player", §4.8).
//
// Grounded on pkg/framework/voice/allocator.go (a small
// stateful machine mutated by discrete control events and consumed once
// per block by the render path) generalized from note-on/note-off events
// to transport mutations, and on pkg/midi/queue.go's bump-pointer queue
// idiom for the bounded mutation queue (reimplemented lock-free in
// queue.go since the consumer runs on the RT thread). The PlayerState
// wire payload follows the same manual {presence-bit, fixed-field}
// encoding msgqueue/payloads.go already uses for MessageQueue's own PODs,
// rather than introducing a protobuf/flatbuffers dependency neither the
// teacher nor the rest of the pack actually need (SPEC_FULL.md's domain
// stack never calls for a general serialization library).
package player

import (
	"fmt"

	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/musictime"
)

// mutationQueueCapacity is the Player's SPSC mutation queue size (spec
// §5: "capacity ≥ 128").
const mutationQueueCapacity = 128

// Mutation is one transport change, with presence bits mirroring the
// proto's optional fields (spec §4.8 "packs a PlayerStateMutation with
// set_* presence bits").
type Mutation struct {
	SetPlaying bool
	Playing    bool

	SetCurrentTime bool
	CurrentTime    musictime.Time

	SetLoopEnabled bool
	LoopEnabled    bool

	SetLoopStartTime bool
	LoopStartTime    musictime.Time

	SetLoopEndTime bool
	LoopEndTime    musictime.Time
}

// State is the Player's current transport snapshot.
type State struct {
	Playing       bool
	CurrentTime   musictime.Time
	LoopEnabled   bool
	LoopStartTime musictime.Time
	LoopEndTime   musictime.Time
}

// Player is a Realm's optional musical transport.
type Player struct {
	RealmName string

	mutations *mutationQueue
	state     State
}

// New constructs a stopped Player at time zero with no loop bounds set
// (spec §4.8's "loop_start_time ≥ 0" / "loop_end_time ≥ 0" checks treat an
// unset bound as the StoppedTime sentinel).
func New(realmName string) *Player {
	return &Player{
		RealmName: realmName,
		mutations: newMutationQueue(mutationQueueCapacity),
		state: State{
			CurrentTime:   musictime.ZeroTime,
			LoopStartTime: musictime.StoppedTime,
			LoopEndTime:   musictime.StoppedTime,
		},
	}
}

// UpdateState pushes a transport mutation into the bounded SPSC queue
// (spec §4.8 "update_state"). Control-thread only. Reports an error
// rather than blocking when the queue is full (spec §5).
func (p *Player) UpdateState(m Mutation) error {
	if !p.mutations.push(m) {
		return fmt.Errorf("player %s: mutation queue full", p.RealmName)
	}
	return nil
}

// State returns the Player's current transport snapshot.
func (p *Player) State() State { return p.state }

func (p *Player) applyMutation(m Mutation) {
	if m.SetPlaying {
		p.state.Playing = m.Playing
	}
	if m.SetCurrentTime {
		p.state.CurrentTime = m.CurrentTime
	}
	if m.SetLoopEnabled {
		p.state.LoopEnabled = m.LoopEnabled
	}
	if m.SetLoopStartTime {
		p.state.LoopStartTime = m.LoopStartTime
	}
	if m.SetLoopEndTime {
		p.state.LoopEndTime = m.LoopEndTime
	}
}

// effectiveLoopBounds computes {loop_start, loop_end} per spec §4.8:
// "loop_start = loop_enabled && loop_start_time ≥ 0 ? loop_start_time : 0;
// loop_end = loop_enabled && loop_end_time ≥ 0 ? loop_end_time :
// time_mapper.end_time()". Each bound is gated by loop_enabled and its
// own sign independently of the other (SPEC_FULL.md Open Question
// Decision 1: implemented exactly as observed, not "fixed").
func (p *Player) effectiveLoopBounds(tm *musictime.TimeMapper) (start, end musictime.Time) {
	start, end = musictime.ZeroTime, tm.EndTime()
	if !p.state.LoopEnabled {
		return start, end
	}
	if !p.state.LoopStartTime.IsStopped() {
		start = p.state.LoopStartTime
	}
	if !p.state.LoopEndTime.IsStopped() {
		end = p.state.LoopEndTime
	}
	return start, end
}

// FillTimeMap drains the mutation queue into the Player's state, then
// fills timeMap[0:len(timeMap)] (one entry per sample) per spec §4.8's
// per-block algorithm, finally pushing a PlayerStateMessage into
// outMessages. Called once per block from the RT thread; drains a
// lock-free queue and writes into a caller-owned slice, so it never
// allocates.
func (p *Player) FillTimeMap(tm *musictime.TimeMapper, timeMap []musictime.SampleTime, outMessages *msgqueue.Queue) {
	for {
		m, ok := p.mutations.pop()
		if !ok {
			break
		}
		p.applyMutation(m)
	}

	if !p.state.Playing {
		for i := range timeMap {
			timeMap[i] = musictime.StoppedSampleTime
		}
		p.pushState(outMessages)
		return
	}

	loopStart, loopEnd := p.effectiveLoopBounds(tm)
	it := tm.Find(p.state.CurrentTime)

	for i := range timeMap {
		prev := p.state.CurrentTime
		next := it.Next()
		if loopEnd.Less(next) {
			next = loopEnd
		}
		p.state.CurrentTime = next
		timeMap[i] = musictime.SampleTime{Start: prev, End: next}

		if !next.Less(loopEnd) {
			if !p.state.LoopEnabled {
				p.state.CurrentTime = loopEnd
				p.state.Playing = false
				for j := i + 1; j < len(timeMap); j++ {
					timeMap[j] = musictime.StoppedSampleTime
				}
				break
			}
			p.state.CurrentTime = loopStart
			it = tm.Find(loopStart)
		}
	}

	p.pushState(outMessages)
}

func (p *Player) pushState(outMessages *msgqueue.Queue) {
	if outMessages == nil {
		return
	}
	outMessages.PushPlayerState(msgqueue.PlayerState{
		RealmName:     p.RealmName,
		Playing:       p.state.Playing,
		CurrentTime:   p.state.CurrentTime,
		LoopEnabled:   p.state.LoopEnabled,
		LoopStartTime: p.state.LoopStartTime,
		LoopEndTime:   p.state.LoopEndTime,
	})
}
