package enttec

import "fmt"

// ProfileKind selects the dispatch rules of an emulated device.
type ProfileKind int

const (
	// KindUltraDMXMicro emulates a single-universe DMXKing Ultra DMX Micro.
	KindUltraDMXMicro ProfileKind = iota
	// KindUltraDMXPro emulates a dual-universe DMXKing UltraDMXPro.
	KindUltraDMXPro
	// KindDMXUSB emulates a multi-universe DMXUSB device.
	KindDMXUSB
)

// Profile is the fixed identity of an emulated widget. It is selected once
// at Widget construction and never changes for the widget's lifetime.
type Profile struct {
	Kind         ProfileKind
	Name         string
	ESTAID       uint16
	DeviceID     uint16
	UniversesOut int
	UniversesIn  int
}

// DefaultDMXUSBUniverses is the output universe count of the DMXUSB
// profile when none is configured.
const DefaultDMXUSBUniverses = 3

// UltraDMXMicro returns the single-universe widget profile.
func UltraDMXMicro() Profile {
	return Profile{
		Kind:         KindUltraDMXMicro,
		Name:         "emulated Ultra DMX Micro",
		ESTAID:       0x6A6B,
		DeviceID:     0x3,
		UniversesOut: 1,
	}
}

// UltraDMXPro returns the dual-universe widget profile.
func UltraDMXPro() Profile {
	return Profile{
		Kind:         KindUltraDMXPro,
		Name:         "emulated DMXKing UltraDMXPro",
		ESTAID:       0x6A6B,
		DeviceID:     0x2,
		UniversesOut: 2,
	}
}

// DMXUSBDevice returns the multi-universe widget profile with the given
// output universe count. A count below 1 falls back to the default.
func DMXUSBDevice(universesOut int) Profile {
	if universesOut < 1 {
		universesOut = DefaultDMXUSBUniverses
	}
	return Profile{
		Kind:         KindDMXUSB,
		Name:         "DMXUSB",
		ESTAID:       0x7FF7,
		DeviceID:     0x42,
		UniversesOut: universesOut,
	}
}

// ProfileByName maps a configuration name to a profile. universesOut is
// honored only by the dmxusb profile; the emulated DMXKing devices have
// fixed universe counts.
func ProfileByName(name string, universesOut int) (Profile, error) {
	switch name {
	case "ultra-dmx-micro":
		return UltraDMXMicro(), nil
	case "ultra-dmx-pro":
		return UltraDMXPro(), nil
	case "dmxusb":
		return DMXUSBDevice(universesOut), nil
	}
	return Profile{}, fmt.Errorf("unknown widget profile %q", name)
}

// IsDMXData reports whether label carries DMX channel data under this
// profile: the primary label, or a universe-indexed label within the
// configured output range [100, 100+UniversesOut). The parser uses this
// to decide when to clear the channel buffer and the dispatcher uses it
// for routing; both must agree.
func (p Profile) IsDMXData(label byte) bool {
	if label == LabelDMXData {
		return true
	}
	return int(label) >= LabelDMXDataUniverse && int(label) < LabelDMXDataUniverse+p.UniversesOut
}
