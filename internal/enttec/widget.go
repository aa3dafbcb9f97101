package enttec

import "time"

// Transport is the duplex byte channel the widget talks over. Available
// and ReadByte must not block; ReadByte is only called while Available
// reports pending bytes.
type Transport interface {
	Available() int
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// DeliverFunc receives one completed DMX universe. The buffer is owned by
// the widget and reused for every frame; implementations must copy if they
// retain it past the call.
type DeliverFunc func(universe int, data *[MaxChannels]byte)

// DefaultIdleTimeout bounds how long a stalled mid-frame message can block
// recognition of new frames before the parser resynchronizes. Policy, not
// protocol: the original firmware used the same 100ms.
const DefaultIdleTimeout = 100 * time.Millisecond

type parserState int

const (
	stateStart parserState = iota
	stateLabel
	stateLengthLow
	stateLengthHigh
	stateData
	stateEnd
)

// Counters is a snapshot of widget activity since construction.
type Counters struct {
	Frames     uint64 // complete well-formed frames
	DMXFrames  uint64 // frames routed to the deliver callback
	Replies    uint64 // identity/capability replies written
	Dropped    uint64 // frames discarded for a bad end mark
	IdleResets uint64 // forced resynchronizations after mid-frame silence
}

// Widget is one emulated USB-DMX widget instance. It is driven by a single
// owner calling Poll; it is not safe for concurrent use.
type Widget struct {
	// SerialNumber is returned for serial number requests. Set before the
	// first Poll.
	SerialNumber [4]byte

	// IdleTimeout is the mid-frame silence threshold. Set before the
	// first Poll.
	IdleTimeout time.Duration

	transport Transport
	profile   Profile
	deliver   DeliverFunc
	now       func() time.Time

	state        parserState
	label        byte
	length       int
	remaining    int
	writeIndex   int
	lastActivity time.Time
	buffer       [MaxChannels]byte

	counters Counters
}

// New creates a widget for the given profile, speaking over transport and
// delivering completed DMX universes to deliver (which may be nil).
func New(transport Transport, profile Profile, deliver DeliverFunc) *Widget {
	w := &Widget{
		SerialNumber: [4]byte{0xC0, 0xFF, 0xEE, 0x01},
		IdleTimeout:  DefaultIdleTimeout,
		transport:    transport,
		profile:      profile,
		deliver:      deliver,
		now:          time.Now,
	}
	w.lastActivity = w.now()
	return w
}

// Profile returns the widget's fixed device identity.
func (w *Widget) Profile() Profile {
	return w.profile
}

// Counters returns a snapshot of the activity counters.
func (w *Widget) Counters() Counters {
	return w.counters
}

// LastLabel returns the label of the frame currently being parsed or
// dispatched. Only meaningful inside a deliver callback.
func (w *Widget) LastLabel() byte {
	return w.label
}

// ChannelCount returns how many channel values the current DMX frame
// carried (payload bytes past the discarded position 0, capped at 512).
// Only meaningful inside a deliver callback.
func (w *Widget) ChannelCount() int {
	n := w.writeIndex - 1
	if n < 0 {
		n = 0
	}
	if n > MaxChannels {
		n = MaxChannels
	}
	return n
}

// Poll drains all bytes already available on the transport through the
// parser, dispatching completed frames inline, then applies the idle
// timeout. It never blocks waiting for more bytes. The only errors
// surfaced are transport failures; malformed input is absorbed silently.
func (w *Widget) Poll() error {
	for w.transport.Available() > 0 {
		b, err := w.transport.ReadByte()
		if err != nil {
			return err
		}
		w.lastActivity = w.now()
		if err := w.feed(b); err != nil {
			return err
		}
	}
	if w.state != stateStart && w.now().Sub(w.lastActivity) > w.IdleTimeout {
		w.reset()
		w.counters.IdleResets++
	}
	return nil
}

// feed advances the parser state machine by one byte.
func (w *Widget) feed(b byte) error {
	switch w.state {
	case stateStart:
		// Anything that is not a start mark is desync noise.
		if b == StartMark {
			w.state = stateLabel
		}

	case stateLabel:
		w.label = b
		if w.profile.IsDMXData(b) {
			w.clearBuffer()
		}
		w.state = stateLengthLow

	case stateLengthLow:
		w.length = int(b)
		w.state = stateLengthHigh

	case stateLengthHigh:
		w.length |= int(b) << 8
		w.remaining = w.length
		if w.length > 0 {
			w.state = stateData
		} else {
			w.state = stateEnd
		}

	case stateData:
		// DMX channels are 1-based: payload position 0 is not a channel
		// value. Bytes past the 512-slot capacity are counted to stay in
		// frame sync but never stored.
		if w.writeIndex >= 1 && w.writeIndex <= MaxChannels {
			w.buffer[w.writeIndex-1] = b
		}
		w.writeIndex++
		w.remaining--
		if w.remaining == 0 {
			w.state = stateEnd
		}

	case stateEnd:
		if b == EndMark {
			err := w.dispatch()
			w.resetPending()
			return err
		}
		// Missing end mark: drop the frame, resynchronize on the next
		// start mark.
		w.counters.Dropped++
		w.resetPending()
	}
	return nil
}

// resetPending returns the machine to Start and clears the per-frame
// fields. The channel buffer is left alone; it is zero-filled when the
// next DMX-data label arrives.
func (w *Widget) resetPending() {
	w.state = stateStart
	w.label = 0
	w.length = 0
	w.remaining = 0
	w.writeIndex = 0
}

// reset is the hard reset used on idle timeout: pending fields and the
// channel buffer are both cleared.
func (w *Widget) reset() {
	w.resetPending()
	w.clearBuffer()
	w.lastActivity = w.now()
}

func (w *Widget) clearBuffer() {
	w.buffer = [MaxChannels]byte{}
	w.writeIndex = 0
}

// dispatch interprets a completed, well-formed frame.
func (w *Widget) dispatch() error {
	w.counters.Frames++
	switch {
	case w.label == LabelESTAID:
		return w.sendESTAID()
	case w.label == LabelDeviceID:
		return w.sendDeviceID()
	case w.label == LabelSerialNumber:
		return w.sendSerialNumber()
	case w.label == LabelWidgetParams:
		return w.sendWidgetParams()
	case w.label == LabelWidgetParamsExt:
		return w.sendWidgetParamsExt()
	case w.profile.IsDMXData(w.label):
		w.routeDMX()
	}
	// Unrecognized labels are not an error.
	return nil
}

// routeDMX maps the frame label to output universes per the active
// profile's rules.
func (w *Widget) routeDMX() {
	w.counters.DMXFrames++
	if w.deliver == nil {
		return
	}
	switch w.profile.Kind {
	case KindUltraDMXMicro:
		w.deliver(0, &w.buffer)

	case KindUltraDMXPro:
		switch w.label {
		case LabelDMXData:
			// Legacy single-label case drives both outputs.
			w.deliver(0, &w.buffer)
			w.deliver(1, &w.buffer)
		case LabelDMXDataUniverse:
			w.deliver(0, &w.buffer)
		case LabelDMXDataUniverse + 1:
			w.deliver(1, &w.buffer)
		}

	case KindDMXUSB:
		if w.label == LabelDMXData {
			for u := 0; u < w.profile.UniversesOut; u++ {
				w.deliver(u, &w.buffer)
			}
			return
		}
		w.deliver(int(w.label)-LabelDMXDataUniverse, &w.buffer)
	}
}

func (w *Widget) reply(label byte, payload []byte) error {
	msg, err := Encode(label, payload)
	if err != nil {
		return err
	}
	if _, err := w.transport.Write(msg); err != nil {
		return err
	}
	w.counters.Replies++
	return nil
}

func (w *Widget) sendESTAID() error {
	// ESTA id low byte first, then the fixed ASCII name. All profiles
	// report "DMXUSB" here; the per-device name goes in the device ID
	// reply.
	payload := []byte{byte(w.profile.ESTAID), byte(w.profile.ESTAID >> 8)}
	payload = append(payload, "DMXUSB"...)
	return w.reply(LabelESTAID, payload)
}

func (w *Widget) sendDeviceID() error {
	payload := []byte{byte(w.profile.DeviceID), byte(w.profile.DeviceID >> 8)}
	payload = append(payload, w.profile.Name...)
	return w.reply(LabelDeviceID, payload)
}

func (w *Widget) sendSerialNumber() error {
	return w.reply(LabelSerialNumber, w.SerialNumber[:])
}

func (w *Widget) sendWidgetParams() error {
	return w.reply(LabelWidgetParams, []byte{
		0x03, // firmware version LSB
		0x00, // firmware version MSB
		0x09, // DMX break time, 10.67us units
		0x01, // mark-after-break time, 10.67us units
		0x28, // output rate, packets per second
	})
}

func (w *Widget) sendWidgetParamsExt() error {
	return w.reply(LabelWidgetParamsExt, []byte{
		byte(w.profile.UniversesOut),
		byte(w.profile.UniversesIn),
	})
}
