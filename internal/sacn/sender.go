package sacn

import (
	"crypto/sha256"
	"fmt"
	"net"
	"sync"

	"golang.org/x/net/ipv4"
)

// Sender forwards DMX universes as E1.31 multicast. One sender carries
// one source identity (name + CID) and keeps an independent sequence
// number per universe.
type Sender struct {
	conn       net.PacketConn
	pconn      *ipv4.PacketConn
	sourceName string
	priority   uint8
	cid        [16]byte

	mu  sync.Mutex
	seq map[uint16]uint8
}

// NewSender opens a UDP socket for E1.31 transmission. The source CID is
// derived from the source name so restarts keep a stable identity.
func NewSender(sourceName string, priority uint8) (*Sender, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open sACN socket: %w", err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetMulticastTTL(8); err != nil {
		// Non-fatal on some platforms; packets still leave with the
		// OS default TTL.
		_ = err
	}

	sum := sha256.Sum256([]byte(sourceName))
	var cid [16]byte
	copy(cid[:], sum[:16])

	return &Sender{
		conn:       conn,
		pconn:      pconn,
		sourceName: sourceName,
		priority:   priority,
		cid:        cid,
		seq:        make(map[uint16]uint8),
	}, nil
}

// CID returns the sender's component identifier.
func (s *Sender) CID() [16]byte {
	return s.cid
}

// Send transmits one universe worth of channel data to the universe's
// multicast group. sACN universe numbering starts at 1.
func (s *Sender) Send(universe uint16, channels []byte) error {
	if universe == 0 {
		return fmt.Errorf("sACN universe 0 is reserved")
	}

	s.mu.Lock()
	s.seq[universe]++
	sequence := s.seq[universe]
	s.mu.Unlock()

	packet := BuildDataPacket(universe, sequence, s.sourceName, s.cid, s.priority, channels)
	if _, err := s.conn.WriteTo(packet, MulticastAddrForUniverse(universe)); err != nil {
		return fmt.Errorf("failed to send universe %d: %w", universe, err)
	}
	return nil
}

// Close releases the socket
func (s *Sender) Close() error {
	return s.conn.Close()
}
