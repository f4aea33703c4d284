package netif

import "github.com/tcpstack/gotcp/pkg/logger"

// Default ARP cache and broadcast-throttling timings, per the original
// network_interface.cc defaults.
const (
	DefaultARPCacheTTLMS          = 30_000
	DefaultARPBroadcastIntervalMS = 5_000
)

type arpEntry struct {
	hw  EthernetAddress
	ttl uint64
}

type pendingDatagram struct {
	dgram   []byte
	nextHop uint32
}

// Interface translates between {IPv4 datagram, next-hop address} pairs and
// Ethernet frames, resolving next-hop addresses via ARP and caching the
// results (spec's summarized NetworkInterface collaborator). Grounded on
// the original implementation's NetworkInterface.
type Interface struct {
	ethernetAddress EthernetAddress
	ipAddress       uint32

	cacheTTLMS          uint64
	broadcastIntervalMS uint64

	arpTable      map[uint32]arpEntry
	lastBroadcast map[uint32]uint64
	pending       []pendingDatagram

	clock uint64

	framesOut []Frame

	log *logger.Logger
}

// NewInterface constructs an Interface with the default ARP cache TTL and
// broadcast throttle; log may be nil.
func NewInterface(ethAddr EthernetAddress, ip uint32, log *logger.Logger) *Interface {
	return &Interface{
		ethernetAddress:     ethAddr,
		ipAddress:           ip,
		cacheTTLMS:          DefaultARPCacheTTLMS,
		broadcastIntervalMS: DefaultARPBroadcastIntervalMS,
		arpTable:            make(map[uint32]arpEntry),
		lastBroadcast:       make(map[uint32]uint64),
		log:                 log,
	}
}

// EthernetAddress returns the interface's own MAC address.
func (n *Interface) EthernetAddress() EthernetAddress { return n.ethernetAddress }

// IPAddress returns the interface's own IPv4 address.
func (n *Interface) IPAddress() uint32 { return n.ipAddress }

// PopFramesOut drains and returns every frame queued for transmission.
func (n *Interface) PopFramesOut() []Frame {
	out := n.framesOut
	n.framesOut = nil
	return out
}

// SendDatagram frames dgram for next_hop. If next_hop's hardware address is
// cached, the frame goes out immediately; otherwise the datagram is queued
// and an ARP request is broadcast, throttled to at most one per
// broadcastIntervalMS per destination.
func (n *Interface) SendDatagram(dgram []byte, nextHop uint32) {
	if entry, ok := n.arpTable[nextHop]; ok && entry.ttl > 0 {
		n.framesOut = append(n.framesOut, Frame{
			Dst:       entry.hw,
			Src:       n.ethernetAddress,
			EtherType: EtherTypeIPv4,
			Payload:   dgram,
		})
		return
	}

	n.pending = append(n.pending, pendingDatagram{dgram: dgram, nextHop: nextHop})

	if last, ok := n.lastBroadcast[nextHop]; ok && n.clock-last < n.broadcastIntervalMS {
		return
	}
	n.lastBroadcast[nextHop] = n.clock

	arp := ARPMessage{
		Opcode:                ARPOpRequest,
		SenderEthernetAddress: n.ethernetAddress,
		SenderIPAddress:       n.ipAddress,
		TargetIPAddress:       nextHop,
	}
	n.framesOut = append(n.framesOut, Frame{
		Dst:       Broadcast,
		Src:       n.ethernetAddress,
		EtherType: EtherTypeARP,
		Payload:   arp.Serialize(),
	})
}

// RecvFrame processes an incoming frame addressed to this interface (or
// broadcast). IPv4 frames are returned to the caller as a datagram; ARP
// requests/replies update the ARP cache and, for requests targeting this
// interface, queue a reply. Every pending datagram that the learned
// mapping now unblocks is (re-)sent.
func (n *Interface) RecvFrame(frame Frame) ([]byte, bool) {
	if frame.Dst != n.ethernetAddress && frame.Dst != Broadcast {
		return nil, false
	}

	switch frame.EtherType {
	case EtherTypeIPv4:
		return frame.Payload, true

	case EtherTypeARP:
		arp, err := ParseARPMessage(frame.Payload)
		if err != nil {
			n.log.Debugf("netif: dropping malformed ARP message: %v", err)
			return nil, false
		}

		n.arpTable[arp.SenderIPAddress] = arpEntry{hw: arp.SenderEthernetAddress, ttl: n.cacheTTLMS}

		if arp.TargetIPAddress == n.ipAddress && arp.Opcode == ARPOpRequest {
			reply := ARPMessage{
				Opcode:                ARPOpReply,
				SenderEthernetAddress: n.ethernetAddress,
				SenderIPAddress:       n.ipAddress,
				TargetEthernetAddress: arp.SenderEthernetAddress,
				TargetIPAddress:       arp.SenderIPAddress,
			}
			n.framesOut = append(n.framesOut, Frame{
				Dst:       arp.SenderEthernetAddress,
				Src:       n.ethernetAddress,
				EtherType: EtherTypeARP,
				Payload:   reply.Serialize(),
			})
		}

		n.retryPending()
	}

	return nil, false
}

// retryPending re-sends every queued datagram now that an ARP mapping may
// have arrived; any that still can't resolve are re-queued.
func (n *Interface) retryPending() {
	pending := n.pending
	n.pending = nil
	for _, p := range pending {
		n.SendDatagram(p.dgram, p.nextHop)
	}
}

// Tick advances the interface's clock and ages out expired ARP entries.
func (n *Interface) Tick(ms uint64) {
	n.clock += ms
	for ip, entry := range n.arpTable {
		if entry.ttl <= ms {
			delete(n.arpTable, ip)
			continue
		}
		entry.ttl -= ms
		n.arpTable[ip] = entry
	}
}
