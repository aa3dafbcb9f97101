// Package artnet forwards DMX universes received over the widget protocol
// to an Art-Net node as ArtDMX packets.
package artnet

import (
	"fmt"
	"net"
	"sync"

	"github.com/jsimonetti/go-artnet/packet"
)

// Sender transmits ArtDMX packets to a fixed target address.
type Sender struct {
	conn   *net.UDPConn
	target *net.UDPAddr

	mu  sync.Mutex
	seq uint8
}

// NewSender resolves the target (host:port, typically port 6454) and opens
// a UDP socket for transmission.
func NewSender(target string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return nil, fmt.Errorf("invalid Art-Net target %q: %w", target, err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open Art-Net socket: %w", err)
	}

	return &Sender{
		conn:   conn,
		target: addr,
	}, nil
}

// Send transmits one universe worth of channel data. The 15-bit port
// address splits into Net (high 7 bits) and SubUni (low 8 bits).
func (s *Sender) Send(universe int, channels []byte) error {
	if universe < 0 || universe > 0x7FFF {
		return fmt.Errorf("universe %d outside the Art-Net port address range", universe)
	}
	if len(channels) > 512 {
		channels = channels[:512]
	}

	s.mu.Lock()
	s.seq++
	sequence := s.seq
	s.mu.Unlock()

	p := packet.NewArtDMXPacket()
	p.Sequence = sequence
	p.Net = uint8(universe >> 8)
	p.SubUni = uint8(universe & 0xFF)
	p.Length = uint16(len(channels))
	copy(p.Data[:], channels)

	b, err := p.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to marshal ArtDMX packet: %w", err)
	}

	if _, err := s.conn.WriteToUDP(b, s.target); err != nil {
		return fmt.Errorf("failed to send universe %d: %w", universe, err)
	}
	return nil
}

// Close releases the socket
func (s *Sender) Close() error {
	return s.conn.Close()
}
