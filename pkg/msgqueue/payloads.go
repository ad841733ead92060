package msgqueue

import (
	"encoding/binary"

	"github.com/rimewave/audioproc/pkg/musictime"
	"github.com/rimewave/audioproc/pkg/perf"
)

// EngineLoad is the ratio of block-render wall time to block duration
// (spec §4.9 step 8: "load = loop_duration_us / block_duration_us").
type EngineLoad struct {
	Load float64
}

func (e EngineLoad) encode() []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, floatBits(e.Load))
	return b
}

// DecodeEngineLoad parses an EngineLoad payload.
func DecodeEngineLoad(payload []byte) EngineLoad {
	return EngineLoad{Load: floatFromBits(binary.LittleEndian.Uint64(payload[0:8]))}
}

// PushEngineLoad encodes and pushes an EngineLoad message.
func (q *Queue) PushEngineLoad(load float64) {
	q.Push(KindEngineLoad, EngineLoad{Load: load}.encode())
}

// realmNameSize bounds PlayerState's fixed-size realm name field (spec
// §4.3: "realm_name[N]").
const realmNameSize = 64

// PlayerState mirrors a Player's transport snapshot (spec §4.3).
type PlayerState struct {
	RealmName     string
	Playing       bool
	CurrentTime   musictime.Time
	LoopEnabled   bool
	LoopStartTime musictime.Time
	LoopEndTime   musictime.Time
}

func encodeTime(b []byte, t musictime.Time) {
	binary.LittleEndian.PutUint64(b[0:8], uint64(t.Numerator()))
	binary.LittleEndian.PutUint64(b[8:16], uint64(t.Denominator()))
}

func decodeTime(b []byte) musictime.Time {
	return musictime.NewTime(int64(binary.LittleEndian.Uint64(b[0:8])), int64(binary.LittleEndian.Uint64(b[8:16])))
}

func (p PlayerState) encode() []byte {
	b := make([]byte, realmNameSize+1+16+1+16+16)
	n := copy(b[0:realmNameSize], p.RealmName)
	_ = n
	off := realmNameSize
	if p.Playing {
		b[off] = 1
	}
	off++
	encodeTime(b[off:off+16], p.CurrentTime)
	off += 16
	if p.LoopEnabled {
		b[off] = 1
	}
	off++
	encodeTime(b[off:off+16], p.LoopStartTime)
	off += 16
	encodeTime(b[off:off+16], p.LoopEndTime)
	return b
}

// DecodePlayerState parses a PlayerState payload.
func DecodePlayerState(payload []byte) PlayerState {
	off := realmNameSize
	end := off
	for end > 0 && payload[end-1] == 0 {
		end--
	}
	name := string(payload[0:end])
	playing := payload[off] != 0
	off++
	current := decodeTime(payload[off : off+16])
	off += 16
	loopEnabled := payload[off] != 0
	off++
	loopStart := decodeTime(payload[off : off+16])
	off += 16
	loopEnd := decodeTime(payload[off : off+16])
	return PlayerState{
		RealmName:     name,
		Playing:       playing,
		CurrentTime:   current,
		LoopEnabled:   loopEnabled,
		LoopStartTime: loopStart,
		LoopEndTime:   loopEnd,
	}
}

// PushPlayerState encodes and pushes a PlayerState message.
func (q *Queue) PushPlayerState(p PlayerState) {
	q.Push(KindPlayerState, p.encode())
}

// PushPerfStats encodes s directly into the queue's backing array (spec
// §4.9 engine loop step 3: "push a PerfStats message"). Grounded on
// pkg/perf/codec.go's own EncodedSize/Encode split, which exists precisely
// so this call site can size and grow once, then have Encode write in
// place rather than building an intermediate payload slice.
func (q *Queue) PushPerfStats(s *perf.Stats) {
	size := s.EncodedSize()
	need := headerSize + size
	if q.end+need > len(q.data) {
		q.grow(q.end + need)
	}
	binary.LittleEndian.PutUint32(q.data[q.end:q.end+4], uint32(KindPerfStats))
	binary.LittleEndian.PutUint32(q.data[q.end+4:q.end+8], uint32(size))
	s.Encode(q.data[q.end+headerSize : q.end+headerSize+size])
	q.end += need
}

// nodeIDSize bounds NodeMessage's fixed-size node id field (spec §4.3:
// "node_id[256]").
const nodeIDSize = 256

// NodeMessage carries an opaque, processor-interpreted atom addressed to
// one node (spec §4.3, §6 "Per-node messaging").
type NodeMessage struct {
	NodeID string
	Atom   []byte
}

// PushNodeMessage encodes and pushes a NodeMessage.
func (q *Queue) PushNodeMessage(nodeID string, atom []byte) {
	b := make([]byte, nodeIDSize+len(atom))
	copy(b[0:nodeIDSize], nodeID)
	copy(b[nodeIDSize:], atom)
	q.Push(KindNodeMessage, b)
}

// DecodeNodeMessage parses a NodeMessage payload.
func DecodeNodeMessage(payload []byte) NodeMessage {
	end := nodeIDSize
	for end > 0 && payload[end-1] == 0 {
		end--
	}
	return NodeMessage{NodeID: string(payload[0:end]), Atom: payload[nodeIDSize:]}
}

// NodeStateChange reports a processor's lifecycle-state transition
// (supplemented feature; spec §4.6 defines the INACTIVE/SETUP/RUNNING/
// BROKEN/CLEANUP states this reports between).
type NodeStateChange struct {
	NodeID   string
	OldState uint8
	NewState uint8
}

// PushNodeStateChange encodes and pushes a NodeStateChange.
func (q *Queue) PushNodeStateChange(c NodeStateChange) {
	b := make([]byte, nodeIDSize+2)
	copy(b[0:nodeIDSize], c.NodeID)
	b[nodeIDSize] = c.OldState
	b[nodeIDSize+1] = c.NewState
	q.Push(KindNodeStateChange, b)
}

// DecodeNodeStateChange parses a NodeStateChange payload.
func DecodeNodeStateChange(payload []byte) NodeStateChange {
	end := nodeIDSize
	for end > 0 && payload[end-1] == 0 {
		end--
	}
	return NodeStateChange{
		NodeID:   string(payload[0:end]),
		OldState: payload[nodeIDSize],
		NewState: payload[nodeIDSize+1],
	}
}

// DeviceManagerMessage reports a backend device hotplug/error event
// (supplemented feature; spec §6 Engine notification callback list).
type DeviceManagerMessage struct {
	Device string
	Error  string
}

// PushDeviceManagerMessage encodes and pushes a DeviceManagerMessage.
func (q *Queue) PushDeviceManagerMessage(m DeviceManagerMessage) {
	b := make([]byte, 2+len(m.Device)+len(m.Error))
	binary.LittleEndian.PutUint16(b[0:2], uint16(len(m.Device)))
	off := 2
	off += copy(b[off:], m.Device)
	copy(b[off:], m.Error)
	q.Push(KindDeviceManagerMessage, b)
}

// DecodeDeviceManagerMessage parses a DeviceManagerMessage payload.
func DecodeDeviceManagerMessage(payload []byte) DeviceManagerMessage {
	devLen := int(binary.LittleEndian.Uint16(payload[0:2]))
	off := 2
	device := string(payload[off : off+devLen])
	off += devLen
	return DeviceManagerMessage{Device: device, Error: string(payload[off:])}
}
