package universe

import (
	"sync"
	"time"

	"dmx-widget/internal/enttec"
)

// Channel represents the state of a single DMX channel
type Channel struct {
	Value      uint8     // Current value (0-255)
	Active     bool      // True if channel was covered by a received frame
	LastUpdate time.Time // When the channel was last updated
}

// Universe holds the latest state of one DMX output universe as received
// from the host through the widget protocol.
type Universe struct {
	ID         int
	Channels   [512]Channel
	LastLabel  uint8 // protocol label that carried the last frame
	LastFrame  time.Time
	FrameCount uint64
	mu         sync.RWMutex
}

// New creates a new universe with the given output index
func New(id int) *Universe {
	return &Universe{
		ID: id,
	}
}

// Update replaces the universe state with a completed DMX frame. data is
// the widget's full 512-slot buffer; channelCount says how many leading
// slots the frame actually covered.
func (u *Universe) Update(data *[enttec.MaxChannels]byte, label uint8, channelCount int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now()

	u.LastLabel = label
	u.LastFrame = now
	u.FrameCount++

	if channelCount < 0 {
		channelCount = 0
	}
	if channelCount > 512 {
		channelCount = 512
	}

	// A DMX frame replaces the whole universe; slots past channelCount
	// are already zero in the widget buffer.
	for i := 0; i < 512; i++ {
		u.Channels[i].Value = data[i]
		if i < channelCount {
			u.Channels[i].Active = true
			u.Channels[i].LastUpdate = now
		}
	}
}

// GetChannel returns a copy of the channel at the given index (0-511)
func (u *Universe) GetChannel(index int) Channel {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if index < 0 || index >= 512 {
		return Channel{}
	}
	return u.Channels[index]
}

// GetAllChannels returns a copy of all channels
func (u *Universe) GetAllChannels() [512]Channel {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.Channels
}

// ActiveChannelCount returns the number of channels covered by received
// frames
func (u *Universe) ActiveChannelCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	count := 0
	for _, ch := range u.Channels {
		if ch.Active {
			count++
		}
	}
	return count
}

// IsStale returns true if the universe hasn't received a frame for the
// given duration
func (u *Universe) IsStale(timeout time.Duration) bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.LastFrame.IsZero() {
		return true
	}
	return time.Since(u.LastFrame) > timeout
}

// GetInfo returns a snapshot of the universe metadata
func (u *Universe) GetInfo() Info {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return Info{
		ID:         u.ID,
		LastLabel:  u.LastLabel,
		LastFrame:  u.LastFrame,
		FrameCount: u.FrameCount,
	}
}

// Info is a snapshot of universe metadata (no mutex needed)
type Info struct {
	ID         int
	LastLabel  uint8
	LastFrame  time.Time
	FrameCount uint64
}
