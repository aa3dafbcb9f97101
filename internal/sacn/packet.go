// Package sacn builds and sends E1.31 (streaming ACN) data packets, used
// to forward DMX universes received over the widget protocol onto the
// network.
package sacn

import (
	"fmt"
	"net"
)

// E131 protocol constants
const (
	E131Port        = 5568
	E131MaxChannels = 512
	E131HeaderSize  = 126
	E131RootVector  = 0x00000004
	E131FramingVec  = 0x00000002
	E131DMPVector   = 0x02

	sourceNameLen = 64
)

// ACNPacketIdentifier is the magic bytes for E1.31 packets
var ACNPacketIdentifier = []byte{0x41, 0x53, 0x43, 0x2d, 0x45, 0x31, 0x2e, 0x31, 0x37, 0x00, 0x00, 0x00}

// BuildDataPacket assembles a complete E1.31 data packet carrying the
// given DMX channel values. channels beyond 512 are truncated; the DMX
// start code is fixed at 0x00.
func BuildDataPacket(universe uint16, sequence uint8, sourceName string, cid [16]byte, priority uint8, channels []byte) []byte {
	if len(channels) > E131MaxChannels {
		channels = channels[:E131MaxChannels]
	}

	packetSize := E131HeaderSize + len(channels)
	packet := make([]byte, packetSize)

	// === Root layer ===
	// Preamble size (offset 0-1): 0x0010
	packet[0] = 0x00
	packet[1] = 0x10
	// Postamble size (offset 2-3) stays zero.

	copy(packet[4:16], ACNPacketIdentifier)

	// Root flags & length (offset 16-17)
	rootLength := uint16(packetSize - 16)
	packet[16] = 0x70 | byte(rootLength>>8)
	packet[17] = byte(rootLength)

	// Root vector (offset 18-21): 0x00000004
	packet[21] = E131RootVector

	// CID (offset 22-37)
	copy(packet[22:38], cid[:])

	// === Framing layer ===
	framingLength := uint16(packetSize - 38)
	packet[38] = 0x70 | byte(framingLength>>8)
	packet[39] = byte(framingLength)

	// Framing vector (offset 40-43): 0x00000002
	packet[43] = E131FramingVec

	// Source name (offset 44-107): 64 bytes, null-padded
	name := sourceName
	if len(name) > sourceNameLen {
		name = name[:sourceNameLen]
	}
	copy(packet[44:108], name)

	// Priority (offset 108)
	packet[108] = priority

	// Sequence (offset 111)
	packet[111] = sequence

	// Universe (offset 113-114)
	packet[113] = byte(universe >> 8)
	packet[114] = byte(universe)

	// === DMP layer ===
	dmpLength := uint16(packetSize - 115)
	packet[115] = 0x70 | byte(dmpLength>>8)
	packet[116] = byte(dmpLength)

	// DMP vector (offset 117): 0x02
	packet[117] = E131DMPVector

	// Address type & data type (offset 118)
	packet[118] = 0xa1

	// Address increment (offset 121-122): 0x0001
	packet[122] = 0x01

	// Property value count (offset 123-124): start code + channels
	propValCount := uint16(1 + len(channels))
	packet[123] = byte(propValCount >> 8)
	packet[124] = byte(propValCount)

	// DMX start code (offset 125): 0x00, then channel data
	copy(packet[E131HeaderSize:], channels)

	return packet
}

// MulticastAddrForUniverse returns the sACN multicast group for a
// universe: 239.255.{high}.{low}:5568
func MulticastAddrForUniverse(universe uint16) *net.UDPAddr {
	high := (universe >> 8) & 0xFF
	low := universe & 0xFF
	return &net.UDPAddr{
		IP:   net.ParseIP(fmt.Sprintf("239.255.%d.%d", high, low)),
		Port: E131Port,
	}
}
