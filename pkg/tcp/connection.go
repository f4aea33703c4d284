package tcp

import (
	"math/rand"

	"github.com/rs/xid"

	"github.com/tcpstack/gotcp/pkg/logger"
)

// Connection composes a Sender and a Receiver into the full handshake,
// data-transfer, and teardown state machine (spec §4.7). It owns no
// socket or timer of its own: callers drive it with SegmentReceived and
// Tick, and drain outbound segments with PopSegmentsOut after every call.
type Connection struct {
	id  string
	cfg Config

	sender   *Sender
	receiver *Receiver

	msSinceLastReceived uint64
	timeAtDone          *uint64
	linger              bool
	rstSent             bool

	segmentsOut []Segment

	log *logger.Logger
}

// NewConnection constructs a Connection with the given configuration. If
// cfg.FixedISN is nil, the sender's initial sequence number is drawn at
// random; log may be nil.
func NewConnection(cfg Config, log *logger.Logger) *Connection {
	cfg = cfg.withDefaults()

	isn := WrappingSeqno(rand.Uint32())
	if cfg.FixedISN != nil {
		isn = WrappingSeqno(*cfg.FixedISN)
	}

	return &Connection{
		id:       xid.New().String(),
		cfg:      cfg,
		sender:   NewSender(cfg.Capacity, cfg.MSS, cfg.InitialRTO, isn),
		receiver: NewReceiver(cfg.Capacity),
		linger:   true,
		log:      log,
	}
}

// ID is a short, sortable, globally unique identifier for this connection,
// suitable for log correlation and metrics labels.
func (c *Connection) ID() string { return c.id }

// InboundStream is the reassembled stream of bytes received from the peer.
func (c *Connection) InboundStream() *ByteStream { return c.receiver.Stream() }

// OutboundStream is the stream of bytes queued to send to the peer.
func (c *Connection) OutboundStream() *ByteStream { return c.sender.Stream() }

// UnassembledBytes reports inbound bytes held out of order.
func (c *Connection) UnassembledBytes() uint64 { return c.receiver.UnassembledBytes() }

// BytesInFlight reports outbound sequence numbers sent but not yet acked.
func (c *Connection) BytesInFlight() uint64 { return c.sender.BytesInFlight() }

// ConsecutiveRetransmissions reports the sender's current back-to-back
// retransmission count.
func (c *Connection) ConsecutiveRetransmissions() uint64 {
	return c.sender.ConsecutiveRetransmissions()
}

// CurrentRTO reports the sender's current retransmission timeout in
// milliseconds.
func (c *Connection) CurrentRTO() uint64 { return c.sender.RTO() }

// TimeSinceLastSegmentReceived is the number of milliseconds of Tick calls
// since a segment last arrived.
func (c *Connection) TimeSinceLastSegmentReceived() uint64 { return c.msSinceLastReceived }

// RemainingInboundCapacity is how many more bytes the inbound stream can
// still buffer before the reader must drain it.
func (c *Connection) RemainingInboundCapacity() uint64 {
	return c.receiver.Stream().RemainingCapacity()
}

// Connect sends the opening SYN.
func (c *Connection) Connect() {
	c.sender.FillWindow()
	c.drain()
}

// Write enqueues data on the outbound stream and fills the window with it.
func (c *Connection) Write(data []byte) int {
	n := c.sender.Stream().Write(data)
	c.sender.FillWindow()
	c.drain()
	return n
}

// EndInputStream signals that the caller has no more outbound data, so the
// sender should emit FIN once everything already written has been sent.
func (c *Connection) EndInputStream() {
	c.sender.Stream().EndInput()
	c.sender.FillWindow()
	c.drain()
}

// SegmentReceived processes one incoming segment per the rules of spec
// §4.7: RST handling, LISTEN/SYN_SENT guards, forwarding to the receiver
// and sender, bare-ACK emission, and linger suppression on early EOF.
func (c *Connection) SegmentReceived(seg Segment) {
	c.msSinceLastReceived = 0

	if seg.Rst {
		strictListen := !c.receiver.SenderISNKnown() && c.sender.Closed()
		synSentNoAck := c.sender.SynSent() && !seg.Ack
		if strictListen || synSentNoAck {
			return
		}
		c.receiver.Stream().SetError()
		c.sender.Stream().SetError()
		c.checkDone()
		return
	}

	if !c.receiver.SenderISNKnown() && !seg.Syn {
		return // no SYN from the peer yet (LISTEN or SYN_SENT): ignore anything that isn't a SYN
	}

	if c.sender.SynSent() && seg.Ack && len(seg.Payload) > 0 {
		return // SYN_SENT: ignore a segment carrying both ACK and payload
	}

	c.receiver.SegmentReceived(seg)

	if seg.Ack && c.sender.NextSeqnoAbsolute() > 0 {
		c.sender.AckReceived(seg.Ackno, seg.Win)
	}

	// An incoming segment that occupies sequence space demands a reply: if
	// our side hasn't sent anything yet this is the passive-open SYN (a
	// stamped SYN+ACK once drained); otherwise it is at least a bare ACK.
	if _, ok := c.receiver.Ackno(); ok && seg.LengthInSequenceSpace() > 0 {
		c.sender.FillWindow()
		if !c.sender.HasSegmentsOut() {
			c.sender.SendEmptySegment()
		}
	}

	if c.receiver.Stream().EOF() && !c.sender.Stream().EOF() {
		c.linger = false
	}

	c.drain()
	c.checkDone()
}

// Tick advances time by ms milliseconds, driving the sender's
// retransmission timer and aborting the connection with an RST if the
// consecutive-retransmission limit is exceeded.
func (c *Connection) Tick(ms uint64) {
	c.msSinceLastReceived += ms
	c.sender.Tick(ms)

	if c.sender.ConsecutiveRetransmissions() > c.cfg.MaxRetx {
		c.abort()
		return
	}

	c.drain()
	c.checkDone()
}

// abort tears the connection down unclean: both streams are marked
// errored, the retransmission queue is discarded, and a bare RST is
// queued for the peer.
func (c *Connection) abort() {
	c.log.Warnf("connection %s: giving up after %d consecutive retransmissions, sending RST",
		c.id, c.sender.ConsecutiveRetransmissions())

	c.receiver.Stream().SetError()
	c.sender.Stream().SetError()
	c.sender.ClearOutstanding()
	c.rstSent = true
	c.sender.SendEmptySegment()
	c.drain()
	c.checkDone()
}

// drain stamps every segment the sender has queued with the receiver's
// current ackno/window (and RST, if one is pending) and moves it onto the
// connection's outbound queue.
func (c *Connection) drain() {
	for _, seg := range c.sender.PopSegments() {
		c.stampAndEmit(seg)
	}
}

func (c *Connection) stampAndEmit(seg Segment) {
	if ackno, ok := c.receiver.Ackno(); ok {
		seg.Ack = true
		seg.Ackno = ackno
	}
	win := c.receiver.WindowSize()
	if win > 0xffff {
		win = 0xffff
	}
	seg.Win = uint16(win)
	if c.rstSent {
		seg.Rst = true
	}
	c.segmentsOut = append(c.segmentsOut, seg)
}

// PopSegmentsOut drains and returns every segment ready to go out on the
// wire, in order.
func (c *Connection) PopSegmentsOut() []Segment {
	out := c.segmentsOut
	c.segmentsOut = nil
	return out
}

// done reports the done-predicate of spec §4.7: both streams have reached
// a terminal state (error, or clean EOF with the FIN fully acknowledged).
func (c *Connection) done() bool {
	recv := c.receiver.Stream()
	send := c.sender.Stream()

	recvDone := recv.EOF() || recv.Error()
	sendDone := send.Error() || (send.EOF() && c.sender.BytesInFlight() == 0 && c.sender.FinAcked())

	return recvDone && sendDone
}

func (c *Connection) checkDone() {
	if c.timeAtDone == nil && c.done() {
		t := c.msSinceLastReceived
		c.timeAtDone = &t
	}
}

// Done reports whether the connection has reached a terminal state.
func (c *Connection) Done() bool { return c.done() }

// Active reports whether the connection still needs ticks: it has not
// finished, or it has finished cleanly and is within its linger window.
func (c *Connection) Active() bool {
	if !c.done() {
		return true
	}
	if !c.linger || c.receiver.Stream().Error() || c.sender.Stream().Error() {
		return false
	}
	if c.timeAtDone == nil {
		return true
	}
	return c.msSinceLastReceived-*c.timeAtDone < c.cfg.LingerMultiplier*c.cfg.InitialRTO
}

// Close tears the connection down if it is still active, sending an RST to
// warn the peer of the unclean shutdown. It is a no-op once Active reports
// false; a finished connection still inside its linger window gets the RST.
func (c *Connection) Close() {
	if !c.Active() {
		return
	}
	c.log.Warnf("connection %s: closed while still active, sending RST", c.id)
	c.rstSent = true
	c.sender.SendEmptySegment()
	c.drain()
}
