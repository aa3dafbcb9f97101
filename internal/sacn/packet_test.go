package sacn

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestBuildDataPacket_Layout(t *testing.T) {
	channels := []byte{255, 128, 64, 0, 100, 200}
	cid := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0,
		0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}

	packet := BuildDataPacket(1, 42, "test-source", cid, 100, channels)

	if len(packet) != E131HeaderSize+len(channels) {
		t.Fatalf("packet length = %d, want %d", len(packet), E131HeaderSize+len(channels))
	}

	// Preamble size (offset 0-1): 0x0010
	if packet[0] != 0x00 || packet[1] != 0x10 {
		t.Errorf("preamble = %02X%02X, want 0010", packet[0], packet[1])
	}

	// ACN packet identifier (offset 4-15)
	if !bytes.Equal(packet[4:16], ACNPacketIdentifier) {
		t.Errorf("ACN identifier = %v, want %v", packet[4:16], ACNPacketIdentifier)
	}

	// Root vector (offset 18-21)
	if got := binary.BigEndian.Uint32(packet[18:22]); got != E131RootVector {
		t.Errorf("root vector = %d, want %d", got, E131RootVector)
	}

	// CID (offset 22-37)
	if !bytes.Equal(packet[22:38], cid[:]) {
		t.Errorf("CID = %v, want %v", packet[22:38], cid[:])
	}

	// Framing vector (offset 40-43)
	if got := binary.BigEndian.Uint32(packet[40:44]); got != E131FramingVec {
		t.Errorf("framing vector = %d, want %d", got, E131FramingVec)
	}

	// Source name (offset 44-107): null-padded
	if got := string(packet[44 : 44+len("test-source")]); got != "test-source" {
		t.Errorf("source name = %q, want %q", got, "test-source")
	}
	if packet[44+len("test-source")] != 0 {
		t.Error("source name not null-padded")
	}

	// Priority (offset 108)
	if packet[108] != 100 {
		t.Errorf("priority = %d, want 100", packet[108])
	}

	// Sequence (offset 111)
	if packet[111] != 42 {
		t.Errorf("sequence = %d, want 42", packet[111])
	}

	// Universe (offset 113-114)
	if got := binary.BigEndian.Uint16(packet[113:115]); got != 1 {
		t.Errorf("universe = %d, want 1", got)
	}

	// DMP vector (offset 117)
	if packet[117] != E131DMPVector {
		t.Errorf("DMP vector = %d, want %d", packet[117], E131DMPVector)
	}

	// Property value count (offset 123-124): start code + channels
	if got := binary.BigEndian.Uint16(packet[123:125]); got != uint16(1+len(channels)) {
		t.Errorf("property value count = %d, want %d", got, 1+len(channels))
	}

	// Start code (offset 125)
	if packet[125] != 0 {
		t.Errorf("start code = %d, want 0", packet[125])
	}

	// Channel data (offset 126+)
	if !bytes.Equal(packet[E131HeaderSize:], channels) {
		t.Errorf("channel data = %v, want %v", packet[E131HeaderSize:], channels)
	}
}

func TestBuildDataPacket_LayerLengths(t *testing.T) {
	channels := make([]byte, 512)
	packet := BuildDataPacket(10, 1, "full", [16]byte{}, 100, channels)

	packetSize := len(packet)

	rootLength := binary.BigEndian.Uint16(packet[16:18]) & 0x0FFF
	if int(rootLength) != packetSize-16 {
		t.Errorf("root length = %d, want %d", rootLength, packetSize-16)
	}
	if packet[16]&0xF0 != 0x70 {
		t.Errorf("root flags = 0x%02X, want 0x70", packet[16]&0xF0)
	}

	framingLength := binary.BigEndian.Uint16(packet[38:40]) & 0x0FFF
	if int(framingLength) != packetSize-38 {
		t.Errorf("framing length = %d, want %d", framingLength, packetSize-38)
	}

	dmpLength := binary.BigEndian.Uint16(packet[115:117]) & 0x0FFF
	if int(dmpLength) != packetSize-115 {
		t.Errorf("DMP length = %d, want %d", dmpLength, packetSize-115)
	}
}

func TestBuildDataPacket_TruncatesOversizeChannels(t *testing.T) {
	channels := make([]byte, 600)
	packet := BuildDataPacket(1, 1, "t", [16]byte{}, 100, channels)

	if len(packet) != E131HeaderSize+E131MaxChannels {
		t.Errorf("packet length = %d, want %d", len(packet), E131HeaderSize+E131MaxChannels)
	}
}

func TestBuildDataPacket_LongSourceName(t *testing.T) {
	name := string(make([]byte, 100)) // longer than the 64-byte field
	packet := BuildDataPacket(1, 1, name, [16]byte{}, 100, nil)

	// Priority field must not be overwritten by the name.
	if packet[108] != 100 {
		t.Errorf("priority = %d, want 100 (name overflowed its field)", packet[108])
	}
}

func TestMulticastAddrForUniverse(t *testing.T) {
	tests := []struct {
		universe uint16
		want     string
	}{
		{1, "239.255.0.1:5568"},
		{256, "239.255.1.0:5568"},
		{63999, "239.255.249.255:5568"},
	}

	for _, tt := range tests {
		addr := MulticastAddrForUniverse(tt.universe)
		if addr.String() != tt.want {
			t.Errorf("MulticastAddrForUniverse(%d) = %s, want %s", tt.universe, addr, tt.want)
		}
	}
}
