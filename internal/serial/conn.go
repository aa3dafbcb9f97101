package serial

import (
	"errors"
	"io"
	"sync"
)

// ErrNoData is returned by ReadByte when no byte is pending. Callers that
// check Available first never see it.
var ErrNoData = errors.New("serial: no byte available")

// inboundDepth is the pump's buffer between the port reader goroutine and
// the polling consumer. At 115200 baud this holds well over 300ms of
// traffic.
const inboundDepth = 4096

// Conn adapts a blocking serial port to the widget's non-blocking
// transport contract. A background goroutine drains the port into a
// buffered channel; Available and ReadByte never block.
type Conn struct {
	port Port
	in   chan byte
	done chan struct{}

	closeOnce sync.Once

	mu      sync.Mutex
	readErr error
}

// NewConn starts the reader pump over an open port
func NewConn(port Port) *Conn {
	c := &Conn{
		port: port,
		in:   make(chan byte, inboundDepth),
		done: make(chan struct{}),
	}
	go c.pump()
	return c
}

// pump continuously reads the port into the inbound buffer. Timeouts
// surface as (0, nil) or io.EOF depending on platform; both just mean "no
// data yet". Bytes arriving while the buffer is full are dropped - the
// protocol resynchronizes on the next start mark.
func (c *Conn) pump() {
	buf := make([]byte, 256)
	for {
		select {
		case <-c.done:
			return
		default:
		}

		n, err := c.port.Read(buf)
		for _, b := range buf[:n] {
			select {
			case c.in <- b:
			default:
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
	}
}

// Available returns the number of bytes ready to read without blocking
func (c *Conn) Available() int {
	return len(c.in)
}

// ReadByte pops one pending byte. Only call after Available reports
// pending data; returns ErrNoData otherwise.
func (c *Conn) ReadByte() (byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	default:
		return 0, ErrNoData
	}
}

// Write passes straight through to the port
func (c *Conn) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

// Err returns the error that stopped the pump, if any
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close stops the pump and closes the underlying port
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.port.Close()
	})
	return err
}
