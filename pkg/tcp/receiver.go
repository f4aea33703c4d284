package tcp

// Receiver owns the inbound ByteStream (via a Reassembler) and turns
// incoming segments into ackno/window observations (spec §4.6).
type Receiver struct {
	reassembler *Reassembler
	senderISN   *WrappingSeqno
}

// NewReceiver constructs a Receiver whose inbound stream holds at most
// capacity bytes.
func NewReceiver(capacity uint64) *Receiver {
	return &Receiver{reassembler: NewReassembler(capacity)}
}

// Stream returns the reassembled inbound byte stream.
func (r *Receiver) Stream() *ByteStream { return r.reassembler.Stream() }

// UnassembledBytes reports bytes held by the reassembler but not yet in order.
func (r *Receiver) UnassembledBytes() uint64 { return r.reassembler.UnassembledBytes() }

// SegmentReceived feeds an incoming segment to the receiver.
func (r *Receiver) SegmentReceived(seg Segment) {
	if seg.Syn {
		isn := seg.Seqno
		r.senderISN = &isn
	}
	if r.senderISN == nil || r.reassembler.Stream().InputEnded() {
		return // still in LISTEN, or the stream has already ended
	}

	nextExpected := r.reassembler.Stream().BytesWritten()
	abs := Unwrap(seg.Seqno, *r.senderISN, nextExpected)
	if abs == 0 {
		if !seg.Syn {
			return // invalid: claims absolute index 0 without a SYN flag
		}
		abs = 1
	}
	r.reassembler.Push(seg.Payload, abs-1, seg.Fin)
}

// Ackno returns the next expected wire sequence number, or false if no SYN
// has been observed yet.
func (r *Receiver) Ackno() (WrappingSeqno, bool) {
	if r.senderISN == nil {
		return 0, false
	}
	stream := r.reassembler.Stream()
	abs := stream.BytesWritten() + 1
	if stream.InputEnded() {
		abs++
	}
	return Wrap(abs, *r.senderISN), true
}

// WindowSize is the remaining capacity of the inbound stream. It may
// exceed 2^16-1; callers that stamp it onto a wire segment must clamp.
func (r *Receiver) WindowSize() uint64 {
	return r.reassembler.Stream().RemainingCapacity()
}

// SenderISNKnown reports whether a SYN has ever been observed from the peer.
func (r *Receiver) SenderISNKnown() bool { return r.senderISN != nil }
