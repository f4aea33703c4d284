package netif

import (
	"encoding/binary"
	"errors"
)

// ARP opcodes.
const (
	ARPOpRequest uint16 = 1
	ARPOpReply   uint16 = 2
)

// arpWireLen is the serialized size of an Ethernet/IPv4 ARP message:
// hardware type, protocol type, hardware size, protocol size, opcode,
// sender MAC, sender IP, target MAC, target IP.
const arpWireLen = 2 + 2 + 1 + 1 + 2 + 6 + 4 + 6 + 4

// ARPMessage is an Ethernet/IPv4 Address Resolution Protocol message.
type ARPMessage struct {
	Opcode                uint16
	SenderEthernetAddress EthernetAddress
	SenderIPAddress       uint32
	TargetEthernetAddress EthernetAddress
	TargetIPAddress       uint32
}

// Serialize encodes the message onto the wire.
func (m ARPMessage) Serialize() []byte {
	b := make([]byte, arpWireLen)
	binary.BigEndian.PutUint16(b[0:2], 1) // hardware type: Ethernet
	binary.BigEndian.PutUint16(b[2:4], 0x0800)
	b[4] = 6
	b[5] = 4
	binary.BigEndian.PutUint16(b[6:8], m.Opcode)
	copy(b[8:14], m.SenderEthernetAddress[:])
	binary.BigEndian.PutUint32(b[14:18], m.SenderIPAddress)
	copy(b[18:24], m.TargetEthernetAddress[:])
	binary.BigEndian.PutUint32(b[24:28], m.TargetIPAddress)
	return b
}

// ParseARPMessage decodes an ARP message from the wire.
func ParseARPMessage(b []byte) (ARPMessage, error) {
	var m ARPMessage
	if len(b) < arpWireLen {
		return m, errors.New("netif: ARP message too short")
	}
	m.Opcode = binary.BigEndian.Uint16(b[6:8])
	copy(m.SenderEthernetAddress[:], b[8:14])
	m.SenderIPAddress = binary.BigEndian.Uint32(b[14:18])
	copy(m.TargetEthernetAddress[:], b[18:24])
	m.TargetIPAddress = binary.BigEndian.Uint32(b[24:28])
	return m, nil
}
