package universe

import (
	"testing"
	"time"

	"dmx-widget/internal/enttec"
)

// frameBuffer builds a widget-style 512-slot buffer with the given
// leading channel values.
func frameBuffer(values ...byte) *[enttec.MaxChannels]byte {
	var buf [enttec.MaxChannels]byte
	copy(buf[:], values)
	return &buf
}

func TestNew(t *testing.T) {
	u := New(2)

	if u.ID != 2 {
		t.Errorf("ID = %d, want 2", u.ID)
	}

	if u.FrameCount != 0 {
		t.Errorf("FrameCount = %d, want 0", u.FrameCount)
	}

	// All channels should be inactive initially
	for i := 0; i < 512; i++ {
		if u.Channels[i].Active {
			t.Errorf("Channel[%d].Active = true, want false", i)
		}
	}
}

func TestUniverse_Update(t *testing.T) {
	u := New(0)

	u.Update(frameBuffer(255, 128, 64, 0), enttec.LabelDMXData, 4)

	if u.LastLabel != enttec.LabelDMXData {
		t.Errorf("LastLabel = %d, want %d", u.LastLabel, enttec.LabelDMXData)
	}

	if u.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", u.FrameCount)
	}

	for i, expected := range []byte{255, 128, 64, 0} {
		ch := u.GetChannel(i)
		if ch.Value != expected {
			t.Errorf("Channel[%d].Value = %d, want %d", i, ch.Value, expected)
		}
		if !ch.Active {
			t.Errorf("Channel[%d].Active = false, want true", i)
		}
	}

	// Channels past the frame's channel count stay inactive
	ch := u.GetChannel(4)
	if ch.Active {
		t.Error("Channel[4].Active = true, want false (not covered by frame)")
	}
}

func TestUniverse_UpdateReplacesWholeUniverse(t *testing.T) {
	u := New(0)

	u.Update(frameBuffer(10, 20, 30), enttec.LabelDMXData, 3)
	// A shorter follow-up frame zeroes the rest of the universe.
	u.Update(frameBuffer(99), enttec.LabelDMXDataUniverse, 1)

	if got := u.GetChannel(0).Value; got != 99 {
		t.Errorf("Channel[0].Value = %d, want 99", got)
	}
	if got := u.GetChannel(1).Value; got != 0 {
		t.Errorf("Channel[1].Value = %d, want 0 (frame replaces universe)", got)
	}
	if u.LastLabel != enttec.LabelDMXDataUniverse {
		t.Errorf("LastLabel = %d, want %d", u.LastLabel, enttec.LabelDMXDataUniverse)
	}
	if u.FrameCount != 2 {
		t.Errorf("FrameCount = %d, want 2", u.FrameCount)
	}
}

func TestUniverse_ActiveChannelCount(t *testing.T) {
	u := New(0)

	if count := u.ActiveChannelCount(); count != 0 {
		t.Errorf("ActiveChannelCount() = %d, want 0", count)
	}

	u.Update(frameBuffer(255, 128, 64), enttec.LabelDMXData, 3)

	if count := u.ActiveChannelCount(); count != 3 {
		t.Errorf("ActiveChannelCount() = %d, want 3", count)
	}
}

func TestUniverse_IsStale(t *testing.T) {
	u := New(0)

	// Should be stale initially (no frames received)
	if !u.IsStale(time.Second) {
		t.Error("IsStale() = false, want true (no frames)")
	}

	u.Update(frameBuffer(255), enttec.LabelDMXData, 1)

	if u.IsStale(time.Second) {
		t.Error("IsStale() = true, want false (just received)")
	}
}

func TestUniverse_GetChannel_OutOfBounds(t *testing.T) {
	u := New(0)

	ch := u.GetChannel(-1)
	if ch.Active {
		t.Error("GetChannel(-1).Active = true, want false")
	}

	ch = u.GetChannel(512)
	if ch.Active {
		t.Error("GetChannel(512).Active = true, want false")
	}
}

func TestUniverse_GetInfo(t *testing.T) {
	u := New(1)
	u.Update(frameBuffer(255), enttec.LabelDMXDataUniverse+1, 1)

	info := u.GetInfo()

	if info.ID != 1 {
		t.Errorf("info.ID = %d, want 1", info.ID)
	}
	if info.LastLabel != enttec.LabelDMXDataUniverse+1 {
		t.Errorf("info.LastLabel = %d, want %d", info.LastLabel, enttec.LabelDMXDataUniverse+1)
	}
	if info.FrameCount != 1 {
		t.Errorf("info.FrameCount = %d, want 1", info.FrameCount)
	}
	if info.LastFrame.IsZero() {
		t.Error("info.LastFrame is zero, want set")
	}
}

// Manager tests

func TestNewManager(t *testing.T) {
	m := NewManager()

	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestManager_GetOrCreate(t *testing.T) {
	m := NewManager()

	u1 := m.GetOrCreate(1)
	if u1 == nil {
		t.Fatal("GetOrCreate(1) returned nil")
	}

	if u1.ID != 1 {
		t.Errorf("ID = %d, want 1", u1.ID)
	}

	// Getting the same universe again should return the same instance
	u1Again := m.GetOrCreate(1)
	if u1Again != u1 {
		t.Error("GetOrCreate(1) returned different instance")
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestManager_Get(t *testing.T) {
	m := NewManager()

	if u := m.Get(1); u != nil {
		t.Error("Get(1) returned non-nil for non-existent universe")
	}

	m.GetOrCreate(1)

	if u := m.Get(1); u == nil {
		t.Error("Get(1) returned nil for existing universe")
	}
}

func TestManager_GetAll_Sorted(t *testing.T) {
	m := NewManager()

	m.GetOrCreate(2)
	m.GetOrCreate(0)
	m.GetOrCreate(1)

	all := m.GetAll()

	if len(all) != 3 {
		t.Fatalf("len(GetAll()) = %d, want 3", len(all))
	}

	for i := 0; i < 3; i++ {
		if all[i].ID != i {
			t.Errorf("all[%d].ID = %d, want %d", i, all[i].ID, i)
		}
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()

	m.GetOrCreate(0)
	m.GetOrCreate(1)

	m.Remove(0)

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}

	if m.Get(0) != nil {
		t.Error("Get(0) returned non-nil after Remove(0)")
	}

	if m.Get(1) == nil {
		t.Error("Get(1) returned nil, expected it to still exist")
	}
}

func TestManager_GetActiveUniverses(t *testing.T) {
	m := NewManager()

	u0 := m.GetOrCreate(0)
	m.GetOrCreate(1) // never updated, stale

	u0.Update(frameBuffer(255), enttec.LabelDMXData, 1)

	active := m.GetActiveUniverses(time.Second)

	if len(active) != 1 {
		t.Fatalf("len(GetActiveUniverses()) = %d, want 1", len(active))
	}

	if active[0].ID != 0 {
		t.Errorf("active[0].ID = %d, want 0", active[0].ID)
	}
}

func TestManager_PruneStale(t *testing.T) {
	m := NewManager()

	u0 := m.GetOrCreate(0)
	m.GetOrCreate(1) // no frames, will be stale

	u0.Update(frameBuffer(255), enttec.LabelDMXData, 1)

	pruned := m.PruneStale(time.Hour)

	if pruned != 1 {
		t.Errorf("PruneStale() pruned %d, want 1", pruned)
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1 after prune", m.Count())
	}
}
