package netif

import "encoding/binary"

// ProtocolTCP is the IPv4 protocol number carried in the header's protocol
// field for a TCP segment.
const ProtocolTCP = 6

const ipv4HeaderLen = 20

// BuildIPv4Datagram wraps payload in a minimal, options-free IPv4 header
// addressed from src to dst with the given protocol number and TTL.
func BuildIPv4Datagram(src, dst uint32, protocol byte, ttl byte, payload []byte) []byte {
	total := ipv4HeaderLen + len(payload)
	b := make([]byte, total)

	b[0] = 0x45 // version 4, IHL 5 (no options)
	b[1] = 0    // DSCP/ECN
	binary.BigEndian.PutUint16(b[2:4], uint16(total))
	// identification, flags, fragment offset left zero: no fragmentation
	b[8] = ttl
	b[9] = protocol
	// checksum (b[10:12]) filled in below
	binary.BigEndian.PutUint32(b[12:16], src)
	binary.BigEndian.PutUint32(b[16:20], dst)

	binary.BigEndian.PutUint16(b[10:12], ipv4Checksum(b[:ipv4HeaderLen]))
	copy(b[ipv4HeaderLen:], payload)
	return b
}

// ParsedIPv4 is the subset of an IPv4 header cmd/tcpd needs to demultiplex
// an inbound datagram to the right connection.
type ParsedIPv4 struct {
	Src, Dst uint32
	Protocol byte
	Payload  []byte
}

// ParseIPv4Datagram extracts the header fields and payload from a raw
// IPv4 datagram, skipping over any options the header declares.
func ParseIPv4Datagram(b []byte) (ParsedIPv4, bool) {
	var p ParsedIPv4
	if len(b) < ipv4HeaderLen {
		return p, false
	}
	ihl := int(b[0]&0x0f) * 4
	if ihl < ipv4HeaderLen || ihl > len(b) {
		return p, false
	}
	p.Protocol = b[9]
	p.Src = binary.BigEndian.Uint32(b[12:16])
	p.Dst = binary.BigEndian.Uint32(b[16:20])
	p.Payload = b[ihl:]
	return p, true
}

// ipv4Checksum computes the one's-complement checksum of an IPv4 header
// (or any all-zero-checksum-field byte range of even length).
func ipv4Checksum(b []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
