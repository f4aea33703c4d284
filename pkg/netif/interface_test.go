package netif

import "testing"

func TestInterfaceQueuesARPBeforeResolution(t *testing.T) {
	iface := NewInterface(EthernetAddress{1, 1, 1, 1, 1, 1}, 0x0a000001, nil)
	iface.SendDatagram([]byte("hello"), 0x0a000002)

	frames := iface.PopFramesOut()
	if len(frames) != 1 || frames[0].EtherType != EtherTypeARP {
		t.Fatalf("expected a single ARP request, got %+v", frames)
	}
	if frames[0].Dst != Broadcast {
		t.Errorf("expected the ARP request to be broadcast")
	}
}

func TestInterfaceLearnsARPAndFlushesQueue(t *testing.T) {
	iface := NewInterface(EthernetAddress{1, 1, 1, 1, 1, 1}, 0x0a000001, nil)
	iface.SendDatagram([]byte("hello"), 0x0a000002)
	iface.PopFramesOut()

	peerMAC := EthernetAddress{2, 2, 2, 2, 2, 2}
	reply := ARPMessage{
		Opcode:                ARPOpReply,
		SenderEthernetAddress: peerMAC,
		SenderIPAddress:       0x0a000002,
		TargetEthernetAddress: iface.EthernetAddress(),
		TargetIPAddress:       iface.IPAddress(),
	}
	iface.RecvFrame(Frame{Dst: iface.EthernetAddress(), Src: peerMAC, EtherType: EtherTypeARP, Payload: reply.Serialize()})

	frames := iface.PopFramesOut()
	if len(frames) != 1 || frames[0].EtherType != EtherTypeIPv4 || frames[0].Dst != peerMAC {
		t.Fatalf("expected the queued datagram to flush to the learned MAC, got %+v", frames)
	}
}

func TestInterfaceRespondsToARPRequest(t *testing.T) {
	iface := NewInterface(EthernetAddress{1, 1, 1, 1, 1, 1}, 0x0a000001, nil)

	peerMAC := EthernetAddress{2, 2, 2, 2, 2, 2}
	req := ARPMessage{
		Opcode:                ARPOpRequest,
		SenderEthernetAddress: peerMAC,
		SenderIPAddress:       0x0a000002,
		TargetIPAddress:       iface.IPAddress(),
	}
	iface.RecvFrame(Frame{Dst: Broadcast, Src: peerMAC, EtherType: EtherTypeARP, Payload: req.Serialize()})

	frames := iface.PopFramesOut()
	if len(frames) != 1 || frames[0].EtherType != EtherTypeARP || frames[0].Dst != peerMAC {
		t.Fatalf("expected an ARP reply addressed to the requester, got %+v", frames)
	}
	reply, err := ParseARPMessage(frames[0].Payload)
	if err != nil || reply.Opcode != ARPOpReply {
		t.Errorf("expected a well-formed ARP reply, got %+v err=%v", reply, err)
	}
}

func TestInterfaceARPCacheExpires(t *testing.T) {
	iface := NewInterface(EthernetAddress{1, 1, 1, 1, 1, 1}, 0x0a000001, nil)
	peerMAC := EthernetAddress{2, 2, 2, 2, 2, 2}
	reply := ARPMessage{Opcode: ARPOpReply, SenderEthernetAddress: peerMAC, SenderIPAddress: 0x0a000002,
		TargetEthernetAddress: iface.EthernetAddress(), TargetIPAddress: iface.IPAddress()}
	iface.RecvFrame(Frame{Dst: iface.EthernetAddress(), EtherType: EtherTypeARP, Payload: reply.Serialize()})
	iface.PopFramesOut()

	iface.Tick(DefaultARPCacheTTLMS + 1)

	iface.SendDatagram([]byte("data"), 0x0a000002)
	frames := iface.PopFramesOut()
	if len(frames) != 1 || frames[0].EtherType != EtherTypeARP {
		t.Fatalf("expected the expired cache entry to force a new ARP request, got %+v", frames)
	}
}

func TestInterfaceDropsFrameForAnotherHost(t *testing.T) {
	iface := NewInterface(EthernetAddress{1, 1, 1, 1, 1, 1}, 0x0a000001, nil)
	other := EthernetAddress{9, 9, 9, 9, 9, 9}

	dgram, ok := iface.RecvFrame(Frame{Dst: other, EtherType: EtherTypeIPv4, Payload: []byte("x")})
	if ok || dgram != nil {
		t.Errorf("expected a frame addressed to another host to be dropped")
	}
}
