package status

import (
	"fmt"
	"strings"
	"sync"

	"github.com/qdm12/reprint"
)

// Snapshot is the state of a GPU observed by the controller at a single point in time
type Snapshot struct {
	// Timestamp in seconds since the unix epoch
	Timestamp int64 `json:"timestamp"`
	Gpu       int   `json:"gpu"`
	// Temperature in °C
	Temperature int `json:"temp"`
	// TemperatureAvg is the rolling average of the most recent temperatures
	TemperatureAvg float64 `json:"tempAvg"`
	// Speed per cooler in percent
	Speed []int `json:"speed"`
	// Rpm per cooler
	Rpm []int `json:"rpm"`
	// Load is the graphics utilization in percent, -1 if unknown
	Load int    `json:"load"`
	Mode string `json:"mode"`
}

// String formats the snapshot as a single human readable status line
func (s Snapshot) String() string {
	return fmt.Sprintf("Temp: %d; Speed: %s RPM (%s%%); Load: %d%%; Mode: %s",
		s.Temperature, joinInts(s.Rpm), joinInts(s.Speed), s.Load, s.Mode)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Copy returns a deep copy of the snapshot
func (s Snapshot) Copy() Snapshot {
	return reprint.This(s).(Snapshot)
}

// Store holds the most recent snapshot. It is written by the controller once
// per tick and read by any number of consumers.
type Store struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	changed  chan struct{}
}

func NewStore() *Store {
	return &Store{
		changed: make(chan struct{}),
	}
}

// Set replaces the current snapshot and wakes up everyone waiting on Changed()
func (s *Store) Set(snapshot Snapshot) {
	c := snapshot.Copy()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &c
	close(s.changed)
	s.changed = make(chan struct{})
}

// Get returns a copy of the current snapshot, ok is false if there is none yet
func (s *Store) Get() (snapshot Snapshot, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return s.snapshot.Copy(), true
}

// Changed returns a channel which is closed on the next call to Set
func (s *Store) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}
