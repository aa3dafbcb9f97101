package stats

import (
	"sync"
	"time"
)

// UniverseStats tracks statistics for a single output universe
type UniverseStats struct {
	UniverseID     int
	FrameCount     uint64
	LastFrame      time.Time
	LabelCounts    map[uint8]uint64
	framesInWindow []time.Time // For rate calculation
	mu             sync.RWMutex
}

// Tracker tracks frame statistics for all universes plus the widget's
// parser-level counters (frames dropped for a bad end mark, forced idle
// resets). Parser counters are absolute snapshots taken from the widget.
type Tracker struct {
	universes  map[int]*UniverseStats
	rateWindow time.Duration
	dropped    uint64
	idleResets uint64
	mu         sync.RWMutex
}

// NewTracker creates a new stats tracker
func NewTracker() *Tracker {
	return &Tracker{
		universes:  make(map[int]*UniverseStats),
		rateWindow: time.Second, // Calculate rate over 1 second window
	}
}

// RecordFrame records one delivered DMX frame for a universe
func (t *Tracker) RecordFrame(universeID int, label uint8) {
	t.mu.Lock()
	stats, exists := t.universes[universeID]
	if !exists {
		stats = &UniverseStats{
			UniverseID:  universeID,
			LabelCounts: make(map[uint8]uint64),
		}
		t.universes[universeID] = stats
	}
	t.mu.Unlock()

	stats.mu.Lock()
	defer stats.mu.Unlock()

	now := time.Now()
	stats.FrameCount++
	stats.LastFrame = now
	stats.LabelCounts[label]++

	// Add to rate window
	stats.framesInWindow = append(stats.framesInWindow, now)

	// Clean old frames from window
	cutoff := now.Add(-t.rateWindow)
	newWindow := stats.framesInWindow[:0]
	for _, ft := range stats.framesInWindow {
		if ft.After(cutoff) {
			newWindow = append(newWindow, ft)
		}
	}
	stats.framesInWindow = newWindow
}

// RecordParserCounters stores the widget's cumulative dropped-frame and
// idle-reset counters. Values are absolute, not deltas.
func (t *Tracker) RecordParserCounters(dropped, idleResets uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dropped = dropped
	t.idleResets = idleResets
}

// ParserCounters returns the last recorded dropped-frame and idle-reset
// counters
func (t *Tracker) ParserCounters() (dropped, idleResets uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dropped, t.idleResets
}

// GetUniverseStats returns stats for a specific universe
func (t *Tracker) GetUniverseStats(universeID int) *UniverseStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.universes[universeID]
}

// GetFrameRate returns delivered frames per second for a universe
func (t *Tracker) GetFrameRate(universeID int) float64 {
	t.mu.RLock()
	stats := t.universes[universeID]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	now := time.Now()
	cutoff := now.Add(-t.rateWindow)
	count := 0
	for _, ft := range stats.framesInWindow {
		if ft.After(cutoff) {
			count++
		}
	}

	return float64(count) / t.rateWindow.Seconds()
}

// GetFrameCount returns the total delivered frames for a universe
func (t *Tracker) GetFrameCount(universeID int) uint64 {
	t.mu.RLock()
	stats := t.universes[universeID]
	t.mu.RUnlock()

	if stats == nil {
		return 0
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()
	return stats.FrameCount
}

// GetLabelCounts returns a copy of the per-label frame counts for a
// universe
func (t *Tracker) GetLabelCounts(universeID int) map[uint8]uint64 {
	t.mu.RLock()
	stats := t.universes[universeID]
	t.mu.RUnlock()

	if stats == nil {
		return nil
	}

	stats.mu.RLock()
	defer stats.mu.RUnlock()

	counts := make(map[uint8]uint64, len(stats.LabelCounts))
	for label, n := range stats.LabelCounts {
		counts[label] = n
	}
	return counts
}

// ResetUniverseStats clears all statistics for a specific universe
func (t *Tracker) ResetUniverseStats(universeID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if stats, exists := t.universes[universeID]; exists {
		stats.mu.Lock()
		stats.FrameCount = 0
		stats.LabelCounts = make(map[uint8]uint64)
		stats.framesInWindow = nil
		stats.mu.Unlock()
	}
}

// ResetAllStats clears all tracked data
func (t *Tracker) ResetAllStats() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.universes = make(map[int]*UniverseStats)
	t.dropped = 0
	t.idleResets = 0
}

// GetAllUniverseIDs returns all tracked universe indexes
func (t *Tracker) GetAllUniverseIDs() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int, 0, len(t.universes))
	for id := range t.universes {
		ids = append(ids, id)
	}
	return ids
}
