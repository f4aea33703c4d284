package netif

import "encoding/binary"

// Entry is a forwarding rule: datagrams whose destination matches
// RoutePrefix in its top PrefixLength bits go out Interface at NextHop (or
// directly to the datagram's own destination if NextHop is nil, i.e. the
// destination is on a directly-attached network).
type Entry struct {
	RoutePrefix  uint32
	PrefixLength uint8
	NextHop      *uint32
	Interface    int
}

type trieNode struct {
	children [2]*trieNode
	entry    *Entry
}

// trie is a binary trie over the 32 bits of an IPv4 address, supporting
// longest-prefix-match lookup in O(32). Grounded on the original Trie in
// router.hh.
type trie struct {
	root    *trieNode
	deflt   *Entry
	hasDflt bool
}

func newTrie() *trie { return &trie{root: &trieNode{}} }

func (t *trie) insert(e Entry) {
	if e.PrefixLength == 0 {
		ec := e
		t.deflt = &ec
		t.hasDflt = true
		return
	}

	prefix := e.RoutePrefix & (^uint32(0) << (32 - e.PrefixLength))
	cur := t.root
	var mask uint32 = 1 << 31
	remaining := e.PrefixLength
	for remaining > 0 {
		child := 0
		if prefix&mask != 0 {
			child = 1
		}
		if cur.children[child] == nil {
			cur.children[child] = &trieNode{}
		}
		cur = cur.children[child]
		mask >>= 1
		remaining--
	}
	ec := e
	cur.entry = &ec
}

func (t *trie) longestPrefixMatch(ip uint32) (Entry, bool) {
	var longest *Entry
	cur := t.root
	var mask uint32 = 1 << 31
	for cur != nil {
		child := 0
		if ip&mask != 0 {
			child = 1
		}
		cur = cur.children[child]
		if cur != nil && cur.entry != nil {
			longest = cur.entry
		}
		mask >>= 1
	}
	if longest == nil && t.hasDflt {
		longest = t.deflt
	}
	if longest == nil {
		return Entry{}, false
	}
	return *longest, true
}

// AsyncInterface wraps an Interface so that received datagrams are queued
// for later retrieval instead of returned synchronously, matching the
// pattern the Router needs when polling several interfaces in a loop.
type AsyncInterface struct {
	*Interface
	datagramsOut [][]byte
}

// NewAsyncInterface wraps an existing Interface.
func NewAsyncInterface(iface *Interface) *AsyncInterface {
	return &AsyncInterface{Interface: iface}
}

// RecvFrame processes frame and, if it carried an IPv4 datagram, queues it
// for later retrieval via PopDatagramsOut.
func (a *AsyncInterface) RecvFrame(frame Frame) {
	if dgram, ok := a.Interface.RecvFrame(frame); ok {
		a.datagramsOut = append(a.datagramsOut, dgram)
	}
}

// PopDatagramsOut drains and returns every datagram received but not yet
// retrieved.
func (a *AsyncInterface) PopDatagramsOut() [][]byte {
	out := a.datagramsOut
	a.datagramsOut = nil
	return out
}

// Router holds a set of interfaces and a longest-prefix-match forwarding
// table between them (spec's summarized Router collaborator). Grounded on
// the original implementation's Router/Trie in router.hh.
type Router struct {
	interfaces []*AsyncInterface
	table      *trie
}

// NewRouter constructs an empty Router.
func NewRouter() *Router {
	return &Router{table: newTrie()}
}

// AddInterface registers iface with the router and returns its index.
func (r *Router) AddInterface(iface *AsyncInterface) int {
	r.interfaces = append(r.interfaces, iface)
	return len(r.interfaces) - 1
}

// Interface returns the interface at index n.
func (r *Router) Interface(n int) *AsyncInterface { return r.interfaces[n] }

// AddRoute installs a forwarding rule. nextHop is nil when the destination
// network is directly attached to the given interface.
func (r *Router) AddRoute(routePrefix uint32, prefixLength uint8, nextHop *uint32, iface int) {
	r.table.insert(Entry{RoutePrefix: routePrefix, PrefixLength: prefixLength, NextHop: nextHop, Interface: iface})
}

// Route drains every interface's received datagrams and forwards each one
// out the interface selected by the longest matching route, decrementing
// its IPv4 TTL and dropping it if that TTL would reach zero.
func (r *Router) Route() {
	for _, iface := range r.interfaces {
		for _, dgram := range iface.PopDatagramsOut() {
			r.routeOne(dgram)
		}
	}
}

func (r *Router) routeOne(dgram []byte) {
	dst, ok := ipv4Destination(dgram)
	if !ok {
		return
	}
	entry, ok := r.table.longestPrefixMatch(dst)
	if !ok {
		return
	}
	if !decrementTTL(dgram) {
		return
	}

	nextHop := dst
	if entry.NextHop != nil {
		nextHop = *entry.NextHop
	}
	r.Interface(entry.Interface).SendDatagram(dgram, nextHop)
}

// ipv4Destination reads the 32-bit destination address out of a raw IPv4
// header (bytes 16-19).
func ipv4Destination(dgram []byte) (uint32, bool) {
	if len(dgram) < 20 {
		return 0, false
	}
	return binary.BigEndian.Uint32(dgram[16:20]), true
}

// decrementTTL decrements the IPv4 TTL byte (offset 8) in place, recomputes
// the header checksum to match, and reports whether the datagram may still
// be forwarded. Routed datagrams carry the options-free 20-byte header
// BuildIPv4Datagram produces.
func decrementTTL(dgram []byte) bool {
	if len(dgram) < ipv4HeaderLen || dgram[8] == 0 {
		return false
	}
	dgram[8]--
	if dgram[8] == 0 {
		return false
	}
	binary.BigEndian.PutUint16(dgram[10:12], 0)
	binary.BigEndian.PutUint16(dgram[10:12], ipv4Checksum(dgram[:ipv4HeaderLen]))
	return true
}
