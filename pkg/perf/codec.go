package perf

import "encoding/binary"

// Wire format for a PerfStats message payload (spec §4.3: "PerfStats {
// serialized bytes of PerfStats }"): a uint32 span count followed by
// fixed-prefix span records (parent_id int32, start int64, duration int64,
// name_len uint16) each followed by name_len raw name bytes. EncodedSize
// lets the RT-thread caller size a MessageQueue.Push region up front so
// Encode writes directly into the destination buffer with no intermediate
// allocation (spec §5).

// EncodedSize returns the exact byte length Encode will write.
func (s *Stats) EncodedSize() int {
	size := 4
	for _, sp := range s.Spans() {
		size += 4 + 8 + 8 + 2 + len(sp.Name)
	}
	return size
}

// Encode writes the span tree into region, which must be at least
// EncodedSize() bytes. Returns the number of bytes written.
func (s *Stats) Encode(region []byte) int {
	spans := s.Spans()
	binary.LittleEndian.PutUint32(region[0:4], uint32(len(spans)))
	off := 4
	for _, sp := range spans {
		binary.LittleEndian.PutUint32(region[off:off+4], uint32(sp.ParentID))
		binary.LittleEndian.PutUint64(region[off+4:off+12], uint64(sp.StartNS))
		binary.LittleEndian.PutUint64(region[off+12:off+20], uint64(sp.DurationNS))
		binary.LittleEndian.PutUint16(region[off+20:off+22], uint16(len(sp.Name)))
		off += 22
		off += copy(region[off:], sp.Name)
	}
	return off
}

// Decode parses a payload produced by Encode. Used on the pump thread
// (spec §4.3), never on the RT path, so allocating a fresh slice here is
// fine.
func Decode(region []byte) []Span {
	if len(region) < 4 {
		return nil
	}
	count := binary.LittleEndian.Uint32(region[0:4])
	spans := make([]Span, 0, count)
	off := 4
	for i := uint32(0); i < count; i++ {
		if off+22 > len(region) {
			break
		}
		parentID := int32(binary.LittleEndian.Uint32(region[off : off+4]))
		start := int64(binary.LittleEndian.Uint64(region[off+4 : off+12]))
		dur := int64(binary.LittleEndian.Uint64(region[off+12 : off+20]))
		nameLen := int(binary.LittleEndian.Uint16(region[off+20 : off+22]))
		off += 22
		if off+nameLen > len(region) {
			break
		}
		name := string(region[off : off+nameLen])
		off += nameLen
		spans = append(spans, Span{Name: name, ParentID: parentID, StartNS: start, DurationNS: dur})
	}
	return spans
}
