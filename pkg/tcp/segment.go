package tcp

// Segment is the wire representation exchanged between a Sender/Receiver
// pair and the outside world. The connection stamps ack/ackno/win/rst onto
// segments produced by the Sender before handing them to the caller.
type Segment struct {
	Seqno   WrappingSeqno
	Ackno   WrappingSeqno
	Win     uint16
	Syn     bool
	Ack     bool
	Fin     bool
	Rst     bool
	Payload []byte
}

// LengthInSequenceSpace is the number of sequence numbers this segment
// occupies: the payload plus one each for SYN and FIN.
func (s Segment) LengthInSequenceSpace() uint64 {
	n := uint64(len(s.Payload))
	if s.Syn {
		n++
	}
	if s.Fin {
		n++
	}
	return n
}

// SegmentBuilder fluently assembles a Segment. Grounded on the original
// implementation's TCPSegmentBuilder (tcp_helpers/tcp_segment_builder.hh),
// which spec.md's distillation dropped but which the sender uses to
// compose every segment it sends, field by field.
type SegmentBuilder struct {
	seg Segment
}

func NewSegmentBuilder() *SegmentBuilder {
	return &SegmentBuilder{}
}

func (b *SegmentBuilder) WithSeqno(seqno WrappingSeqno) *SegmentBuilder {
	b.seg.Seqno = seqno
	return b
}

func (b *SegmentBuilder) WithAck(ackno WrappingSeqno) *SegmentBuilder {
	b.seg.Ack = true
	b.seg.Ackno = ackno
	return b
}

func (b *SegmentBuilder) WithSyn() *SegmentBuilder {
	b.seg.Syn = true
	return b
}

func (b *SegmentBuilder) WithFin() *SegmentBuilder {
	b.seg.Fin = true
	return b
}

func (b *SegmentBuilder) WithRst() *SegmentBuilder {
	b.seg.Rst = true
	return b
}

func (b *SegmentBuilder) WithPayload(data []byte) *SegmentBuilder {
	b.seg.Payload = data
	return b
}

func (b *SegmentBuilder) Build() Segment {
	return b.seg
}
