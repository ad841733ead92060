package buffer

import (
	"encoding/binary"
	"fmt"
)

// errNotMixable/errNotScalable are returned by Mix/Mul on buffer kinds
// where the operation is meaningless (spec §4.2).
var (
	errNotMixable  = fmt.Errorf("buffer: mix not supported for this type")
	errNotScalable = fmt.Errorf("buffer: mul not supported for this type")
)

// floatControlValue is a single float32 plus a monotonic generation
// counter, matching ControlValue's on-the-wire layout so FETCH_CONTROL_VALUE
// can write it directly into a buffer (spec §3, §4.4).
type floatControlValueType struct{}

// FloatControlValueType is the shared Type instance for control-value buffers.
var FloatControlValueType Type = floatControlValueType{}

const floatControlValueSize = 4 + 8 // value float32 + generation uint64

func (floatControlValueType) Size(HostSystem) int { return floatControlValueSize }

func (floatControlValueType) Clear(region []byte) {
	binary.LittleEndian.PutUint32(region[0:4], 0)
	binary.LittleEndian.PutUint64(region[4:12], 0)
}

func (floatControlValueType) Mix(src, dst []byte) error {
	sv := floatAt(src, 0)
	dv := floatAt(dst, 0)
	putFloatAt(dst, 0, sv+dv)
	return nil
}

func (floatControlValueType) Mul(region []byte, factor float32) error {
	v := floatAt(region, 0)
	putFloatAt(region, 0, v*factor)
	return nil
}

func (floatControlValueType) Name() string { return "FloatControlValue" }

// WriteValueGeneration writes value+generation into a FloatControlValue buffer.
func WriteValueGeneration(region []byte, value float32, generation uint64) {
	putFloatAt(region, 0, value)
	binary.LittleEndian.PutUint64(region[4:12], generation)
}

// ReadValueGeneration reads value+generation back out.
func ReadValueGeneration(region []byte) (value float32, generation uint64) {
	return floatAt(region, 0), binary.LittleEndian.Uint64(region[4:12])
}

// floatAudioBlockType is block_size contiguous float32 samples.
type floatAudioBlockType struct {
	blockSize int
}

// NewFloatAudioBlockType builds the Type for an audio block of the given size.
func NewFloatAudioBlockType(blockSize int) Type { return floatAudioBlockType{blockSize: blockSize} }

func (t floatAudioBlockType) Size(HostSystem) int { return t.blockSize * 4 }

func (floatAudioBlockType) Clear(region []byte) {
	for i := range region {
		region[i] = 0
	}
}

func (floatAudioBlockType) Mix(src, dst []byte) error {
	n := len(dst) / 4
	for i := 0; i < n; i++ {
		putFloatAt(dst, i*4, floatAt(dst, i*4)+floatAt(src, i*4))
	}
	return nil
}

func (floatAudioBlockType) Mul(region []byte, factor float32) error {
	n := len(region) / 4
	for i := 0; i < n; i++ {
		putFloatAt(region, i*4, floatAt(region, i*4)*factor)
	}
	return nil
}

func (floatAudioBlockType) Name() string { return "FloatAudioBlock" }

// atomDataSize is the fixed event-sequence window size (spec §4.2).
const atomDataSize = 10240

// atomDataType is a byte region carrying a structured event sequence: a
// 4-byte event count header followed by packed, time-ordered events. The
// wire format of individual events is defined by encodeRecord/decodeRecord
// in events.go; this type only owns the header and the merge-by-time-order
// contract.
type atomDataType struct{}

// AtomDataType is the shared Type instance for event-sequence buffers.
var AtomDataType Type = atomDataType{}

func (atomDataType) Size(HostSystem) int { return atomDataSize }

// Clear writes a valid empty event-sequence header so downstream readers
// never see uninitialized memory (spec §4.2).
func (atomDataType) Clear(region []byte) {
	for i := range region {
		region[i] = 0
	}
	binary.LittleEndian.PutUint32(region[0:4], 0)
}

// Mix performs a time-ordered merge of the two event sequences.
func (atomDataType) Mix(src, dst []byte) error {
	srcEvents := DecodeEvents(src)
	dstEvents := DecodeEvents(dst)
	merged := mergeEventsByTime(dstEvents, srcEvents)
	return EncodeEvents(dst, merged)
}

// Mul fails: scaling event data is meaningless (spec §4.2).
func (atomDataType) Mul([]byte, float32) error { return errNotScalable }

func (atomDataType) Name() string { return "AtomData" }

// EventCount reads the header's event count.
func EventCount(region []byte) uint32 { return binary.LittleEndian.Uint32(region[0:4]) }

// pluginCondBufferType is a wait-condition primitive: a tiny region owning
// an OS-level synchronization object via Setup/Cleanup (spec §4.2). The
// region itself just carries a signaled flag; the actual OS primitive is
// process-external and plugged in by Setup.
type pluginCondBufferType struct{}

// PluginCondBufferType is the shared Type instance.
var PluginCondBufferType Type = pluginCondBufferType{}

func (pluginCondBufferType) Size(HostSystem) int { return 1 }

func (pluginCondBufferType) Clear(region []byte) { region[0] = 0 }

func (pluginCondBufferType) Mix([]byte, []byte) error { return errNotMixable }

func (pluginCondBufferType) Mul([]byte, float32) error { return errNotScalable }

func (pluginCondBufferType) Name() string { return "PluginCondBuffer" }

func (pluginCondBufferType) Setup(region []byte) error { region[0] = 0; return nil }

func (pluginCondBufferType) Cleanup(region []byte) { region[0] = 0 }

func floatAt(region []byte, offset int) float32 {
	bits := binary.LittleEndian.Uint32(region[offset : offset+4])
	return float32FromBits(bits)
}

func putFloatAt(region []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(region[offset:offset+4], float32ToBits(v))
}
