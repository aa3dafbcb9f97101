// Package enttec implements the serial protocol of the Enttec/DMXKing
// USB-to-DMX widget family, host side. A Widget consumes the framed byte
// stream from a serial transport, answers identity and capability
// requests, and routes received DMX frames to per-universe callbacks.
package enttec

import "fmt"

// Framing constants
const (
	StartMark = 0x7E
	EndMark   = 0xE7

	// MaxChannels is the size of one DMX universe.
	MaxChannels = 512

	// MaxPayload is the largest payload length a host is expected to send
	// (512 channels + start code, rounded up by the original firmware).
	MaxPayload = 600
)

// Message labels
const (
	LabelWidgetParams    = 3   // widget parameter request
	LabelDMXData         = 6   // DMX data, primary
	LabelSerialNumber    = 10  // serial number request
	LabelWidgetParamsExt = 53  // extended widget parameter request
	LabelESTAID          = 77  // ESTA manufacturer ID request
	LabelDeviceID        = 78  // device ID request
	LabelDMXDataUniverse = 100 // DMX data, universe-indexed family (100+N)
)

// LabelName returns a human-readable name for a message label.
func LabelName(label byte) string {
	switch {
	case label == LabelWidgetParams:
		return "widget-params"
	case label == LabelDMXData:
		return "dmx-data"
	case label == LabelSerialNumber:
		return "serial-number"
	case label == LabelWidgetParamsExt:
		return "widget-params-ext"
	case label == LabelESTAID:
		return "esta-id"
	case label == LabelDeviceID:
		return "device-id"
	case label >= LabelDMXDataUniverse:
		return fmt.Sprintf("dmx-data-u%d", label-LabelDMXDataUniverse)
	}
	return fmt.Sprintf("label-%d", label)
}
