package replay

import "tracereplay/internal/packet"

// Batches splits packets after every API group end marker. Concatenating the
// result gives back packets unchanged. A trailing run without an end marker
// forms the last batch.
func Batches(packets []*packet.Header) [][]*packet.Header {
	if len(packets) == 0 {
		return nil
	}
	var out [][]*packet.Header
	start := 0
	for i, h := range packets {
		if h != nil && h.PacketID == packet.PacketMarkerAPIGroupEnd {
			out = append(out, packets[start:i+1])
			start = i + 1
		}
	}
	if start < len(packets) {
		out = append(out, packets[start:])
	}
	return out
}
