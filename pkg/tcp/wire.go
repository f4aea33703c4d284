package tcp

import (
	"encoding/binary"
	"errors"
)

// headerLen is the fixed TCP header size this package emits: no options,
// data offset always 5 32-bit words.
const headerLen = 20

// flag bit positions within the combined data-offset/flags byte pair.
const (
	flagFin = 1 << 0
	flagSyn = 1 << 1
	flagRst = 1 << 2
	flagAck = 1 << 4
)

// Serialize encodes seg as a TCP segment with the given source and
// destination ports, with no options and a zeroed checksum. Nothing in
// this package computes the checksum against the IP pseudo-header.
func (s Segment) Serialize(srcPort, dstPort uint16) []byte {
	b := make([]byte, headerLen+len(s.Payload))

	binary.BigEndian.PutUint16(b[0:2], srcPort)
	binary.BigEndian.PutUint16(b[2:4], dstPort)
	binary.BigEndian.PutUint32(b[4:8], uint32(s.Seqno))
	binary.BigEndian.PutUint32(b[8:12], uint32(s.Ackno))

	b[12] = 5 << 4 // data offset: 5 words, no options

	var flags byte
	if s.Fin {
		flags |= flagFin
	}
	if s.Syn {
		flags |= flagSyn
	}
	if s.Rst {
		flags |= flagRst
	}
	if s.Ack {
		flags |= flagAck
	}
	b[13] = flags

	binary.BigEndian.PutUint16(b[14:16], s.Win)
	// b[16:18] checksum left zero; b[18:20] urgent pointer left zero

	copy(b[headerLen:], s.Payload)
	return b
}

// ParseSegment decodes a TCP segment from the wire, ignoring any options
// beyond the fixed 20-byte header.
func ParseSegment(b []byte) (Segment, error) {
	var seg Segment
	if len(b) < headerLen {
		return seg, errors.New("tcp: segment shorter than fixed header")
	}

	dataOffset := int(b[12]>>4) * 4
	if dataOffset < headerLen || dataOffset > len(b) {
		return seg, errors.New("tcp: invalid data offset")
	}

	seg.Seqno = WrappingSeqno(binary.BigEndian.Uint32(b[4:8]))
	seg.Ackno = WrappingSeqno(binary.BigEndian.Uint32(b[8:12]))

	flags := b[13]
	seg.Fin = flags&flagFin != 0
	seg.Syn = flags&flagSyn != 0
	seg.Rst = flags&flagRst != 0
	seg.Ack = flags&flagAck != 0

	seg.Win = binary.BigEndian.Uint16(b[14:16])

	if dataOffset < len(b) {
		seg.Payload = append([]byte(nil), b[dataOffset:]...)
	}
	return seg, nil
}

// SrcPort and DstPort read the source/destination ports out of a
// serialized segment without fully parsing it, useful for demultiplexing
// incoming datagrams to the right Connection.
func SrcPort(b []byte) (uint16, bool) {
	if len(b) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[0:2]), true
}

func DstPort(b []byte) (uint16, bool) {
	if len(b) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint16(b[2:4]), true
}
