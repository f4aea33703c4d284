package netif

import "testing"

func makeDatagram(dst uint32, ttl byte) []byte {
	d := make([]byte, 20)
	d[8] = ttl
	d[16] = byte(dst >> 24)
	d[17] = byte(dst >> 16)
	d[18] = byte(dst >> 8)
	d[19] = byte(dst)
	return d
}

func TestTrieLongestPrefixMatch(t *testing.T) {
	tr := newTrie()
	tr.insert(Entry{RoutePrefix: 0x0a000000, PrefixLength: 8, Interface: 1})  // 10.0.0.0/8
	tr.insert(Entry{RoutePrefix: 0x0a0a0000, PrefixLength: 16, Interface: 2}) // 10.10.0.0/16
	tr.insert(Entry{PrefixLength: 0, Interface: 0})                          // default

	if e, ok := tr.longestPrefixMatch(0x0a0a0001); !ok || e.Interface != 2 {
		t.Errorf("expected the more specific /16 route to win, got %+v ok=%v", e, ok)
	}
	if e, ok := tr.longestPrefixMatch(0x0a000001); !ok || e.Interface != 1 {
		t.Errorf("expected the /8 route for an address outside the /16, got %+v ok=%v", e, ok)
	}
	if e, ok := tr.longestPrefixMatch(0xc0a80001); !ok || e.Interface != 0 {
		t.Errorf("expected the default route for an unmatched address, got %+v ok=%v", e, ok)
	}
}

func TestRouterForwardsAndDecrementsTTL(t *testing.T) {
	r := NewRouter()
	in := NewAsyncInterface(NewInterface(EthernetAddress{1}, 0x0a000001, nil))
	out := NewAsyncInterface(NewInterface(EthernetAddress{2}, 0xc0a80001, nil))
	r.AddInterface(in)
	r.AddInterface(out)
	r.AddRoute(0xc0a80000, 24, nil, 1)

	dgram := makeDatagram(0xc0a80002, 10)
	in.RecvFrame(Frame{Dst: in.EthernetAddress(), EtherType: EtherTypeIPv4, Payload: dgram})

	r.Route()

	frames := out.PopFramesOut()
	if len(frames) == 0 {
		t.Fatalf("expected the router to forward the datagram out interface 1")
	}
	// the outbound frame is an ARP request since the next hop isn't cached yet
	if frames[0].EtherType != EtherTypeARP {
		t.Fatalf("expected an ARP request for the unresolved next hop, got %+v", frames[0])
	}
}

func TestRouterDropsExpiredTTL(t *testing.T) {
	r := NewRouter()
	in := NewAsyncInterface(NewInterface(EthernetAddress{1}, 0x0a000001, nil))
	out := NewAsyncInterface(NewInterface(EthernetAddress{2}, 0xc0a80001, nil))
	r.AddInterface(in)
	r.AddInterface(out)
	r.AddRoute(0xc0a80000, 24, nil, 1)

	dgram := makeDatagram(0xc0a80002, 1) // TTL hits 0 after decrement: must be dropped
	in.RecvFrame(Frame{Dst: in.EthernetAddress(), EtherType: EtherTypeIPv4, Payload: dgram})

	r.Route()

	if len(out.PopFramesOut()) != 0 {
		t.Errorf("expected the router to drop a datagram whose TTL expired")
	}
}
