// Package netif implements the link-layer and network-layer plumbing that
// sits below a TCP connection: an Ethernet/ARP network interface and an
// IPv4 router performing longest-prefix-match forwarding between
// interfaces. Grounded on the original implementation's
// network_interface.cc and router.hh.
package netif

import "fmt"

// EtherType values carried in a Frame header.
const (
	EtherTypeIPv4 uint16 = 0x0800
	EtherTypeARP  uint16 = 0x0806
)

// EthernetAddress is a 6-byte MAC address.
type EthernetAddress [6]byte

func (a EthernetAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Broadcast is the reserved all-ones Ethernet broadcast address.
var Broadcast = EthernetAddress{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// Frame is a link-layer frame: a destination and source address, an
// EtherType, and an opaque payload (a serialized IPv4 datagram or ARP
// message).
type Frame struct {
	Dst, Src  EthernetAddress
	EtherType uint16
	Payload   []byte
}
