package tcp

// outstandingSegment is a previously-sent segment held for possible
// retransmission, tagged with the absolute sequence number of its first
// occupied slot so the FIFO can be trimmed against the acknowledged window.
type outstandingSegment struct {
	seg      Segment
	absStart uint64
}

// Sender owns the outbound ByteStream, cuts it into segments respecting
// the MSS and the receiver's advertised window, and manages the single
// retransmission timer with exponential backoff and zero-window probing
// (spec §4.5).
type Sender struct {
	isn WrappingSeqno
	mss uint64

	stream    *ByteStream
	nextSeqno uint64 // absolute

	outstanding []outstandingSegment

	initialRTO uint64
	rto        uint64
	consecutiveRetransmissions uint64
	timer       RetxTimer

	windowLeft  uint64 // absolute
	windowRight uint64 // absolute
	zeroWindow  bool

	finSent bool

	segmentsOut []Segment
}

// NewSender constructs a Sender whose outbound stream holds at most
// capacity bytes, cutting segments no larger than mss and arming its
// retransmission timer with initialRTO on first use.
func NewSender(capacity, mss, initialRTO uint64, isn WrappingSeqno) *Sender {
	return &Sender{
		isn:         isn,
		mss:         mss,
		stream:      NewByteStream(capacity),
		initialRTO:  initialRTO,
		rto:         initialRTO,
		windowLeft:  0,
		windowRight: 1,
	}
}

// Stream returns the outbound byte stream the caller writes into.
func (s *Sender) Stream() *ByteStream { return s.stream }

// ISN returns the sender's initial sequence number.
func (s *Sender) ISN() WrappingSeqno { return s.isn }

// NextSeqnoAbsolute is the absolute sequence number of the next byte to be
// sent, used by tests and by the connection to tell whether a SYN has gone
// out yet.
func (s *Sender) NextSeqnoAbsolute() uint64 { return s.nextSeqno }

// NextSeqno is the wire-relative form of NextSeqnoAbsolute.
func (s *Sender) NextSeqno() WrappingSeqno { return Wrap(s.nextSeqno, s.isn) }

// BytesInFlight is the number of sequence numbers sent but not yet
// acknowledged.
func (s *Sender) BytesInFlight() uint64 { return s.nextSeqno - s.windowLeft }

// ConsecutiveRetransmissions is the number of retransmissions fired back
// to back with no intervening forward progress.
func (s *Sender) ConsecutiveRetransmissions() uint64 { return s.consecutiveRetransmissions }

// RTO is the sender's current retransmission timeout in milliseconds.
func (s *Sender) RTO() uint64 { return s.rto }

// HasSegmentsOut reports whether any segment is currently queued for
// transmission, without draining the queue.
func (s *Sender) HasSegmentsOut() bool { return len(s.segmentsOut) > 0 }

// ClearOutstanding discards the retransmission queue and disarms the
// timer, used when the connection aborts with an RST.
func (s *Sender) ClearOutstanding() {
	s.outstanding = nil
	s.timer.Stop()
}

// PopSegments drains and returns every segment queued for transmission.
func (s *Sender) PopSegments() []Segment {
	out := s.segmentsOut
	s.segmentsOut = nil
	return out
}

// FillWindow cuts and queues as many segments as the window, MSS, and
// available outbound bytes allow, including the initial SYN and a
// trailing FIN once the outbound stream ends.
func (s *Sender) FillWindow() {
	if s.nextSeqno == 0 {
		seg := NewSegmentBuilder().WithSeqno(Wrap(0, s.isn)).WithSyn().Build()
		s.send(seg, 0)
		s.nextSeqno += seg.LengthInSequenceSpace()
		return
	}

	for !s.finSent && s.nextSeqno < s.windowRight {
		remaining := s.windowRight - s.nextSeqno

		payloadLen := remaining
		if s.mss < payloadLen {
			payloadLen = s.mss
		}
		if avail := s.stream.BufferSize(); avail < payloadLen {
			payloadLen = avail
		}
		payload := s.stream.Read(int(payloadLen))

		fin := false
		if s.stream.EOF() && s.nextSeqno+uint64(len(payload))+1 <= s.windowRight {
			fin = true
			s.finSent = true
		}

		if len(payload) == 0 && !fin {
			break
		}

		builder := NewSegmentBuilder().WithSeqno(Wrap(s.nextSeqno, s.isn)).WithPayload(payload)
		if fin {
			builder = builder.WithFin()
		}
		seg := builder.Build()
		s.send(seg, s.nextSeqno)
		s.nextSeqno += seg.LengthInSequenceSpace()
	}
}

// send queues seg for transmission and, unless it occupies zero sequence
// space, holds it for retransmission and arms the timer.
func (s *Sender) send(seg Segment, absStart uint64) {
	s.segmentsOut = append(s.segmentsOut, seg)
	if seg.LengthInSequenceSpace() == 0 {
		return
	}
	s.outstanding = append(s.outstanding, outstandingSegment{seg: seg, absStart: absStart})
	if !s.timer.Running() {
		s.timer.Start(s.rto)
	}
}

// AckReceived processes a new acknowledgment: updates the receiver
// window, retires fully-acknowledged outstanding segments, and resets the
// RTO and retransmission count on forward progress.
func (s *Sender) AckReceived(ackno WrappingSeqno, windowSize uint16) {
	absAckno := Unwrap(ackno, s.isn, s.windowLeft)
	if absAckno > s.nextSeqno {
		return // acks data we never sent
	}

	prevLeft := s.windowLeft
	s.zeroWindow = windowSize == 0
	win := uint64(windowSize)
	if win == 0 {
		win = 1
	}
	s.windowLeft = absAckno
	s.windowRight = s.windowLeft + win

	if absAckno > prevLeft {
		s.rto = s.initialRTO
		s.consecutiveRetransmissions = 0

		for len(s.outstanding) > 0 {
			o := s.outstanding[0]
			if o.absStart+o.seg.LengthInSequenceSpace() > s.windowLeft {
				break
			}
			s.outstanding = s.outstanding[1:]
		}

		if len(s.outstanding) == 0 {
			s.timer.Stop()
		} else {
			s.timer.Start(s.rto)
		}
	}

	s.FillWindow()
}

// Tick advances the retransmission timer and, on expiry, retransmits the
// oldest outstanding segment, doubles the RTO (unless zero-window probing
// is in effect), and restarts the timer.
func (s *Sender) Tick(ms uint64) {
	s.timer.Tick(ms)
	if !s.timer.Expired() {
		return
	}

	if len(s.outstanding) > 0 {
		s.segmentsOut = append(s.segmentsOut, s.outstanding[0].seg)
	}
	if !s.zeroWindow {
		s.rto *= 2
	}
	s.consecutiveRetransmissions++
	s.timer.Start(s.rto)
}

// SendEmptySegment queues a flagless, payload-less segment at the current
// next-seqno, used by the connection to carry a pure ACK or RST. It is
// never retransmitted and never advances next_seqno.
func (s *Sender) SendEmptySegment() {
	seg := NewSegmentBuilder().WithSeqno(Wrap(s.nextSeqno, s.isn)).Build()
	s.segmentsOut = append(s.segmentsOut, seg)
}

// Closed reports the CLOSED state predicate: no SYN sent yet.
func (s *Sender) Closed() bool { return s.nextSeqno == 0 }

// SynSent reports the SYN_SENT state predicate.
func (s *Sender) SynSent() bool {
	return s.nextSeqno > 0 && s.nextSeqno == s.BytesInFlight()
}

// SynAcked reports the SYN_ACKED state predicate.
func (s *Sender) SynAcked() bool {
	return (s.nextSeqno > s.BytesInFlight() && !s.stream.EOF()) ||
		(s.stream.EOF() && s.nextSeqno < s.stream.BytesWritten()+2)
}

// FinSent reports the FIN_SENT state predicate.
func (s *Sender) FinSent() bool {
	return s.stream.EOF() && s.nextSeqno == s.stream.BytesWritten()+2 && s.BytesInFlight() > 0
}

// FinAcked reports the FIN_ACKED state predicate.
func (s *Sender) FinAcked() bool {
	return s.stream.EOF() && s.nextSeqno == s.stream.BytesWritten()+2 && s.BytesInFlight() == 0
}
