// Package status provides the single-slot status container shared between
// a presentation layer and the worker running tool invocations.
//
// The slot holds the most recent status line only. Each write replaces the
// previous value; readers poll it and re-render. A Slot is created and
// owned by its caller and passed explicitly to whoever writes into it.
package status

import (
	"sync"
	"time"
)

// Snapshot is a consistent copy of the slot's contents.
type Snapshot struct {
	// Message is the latest status line.
	Message string

	// Revision increases by one on every Set. Pollers compare revisions
	// to detect changes without comparing strings.
	Revision uint64

	// UpdatedAt is when Message was last written. Zero before the first Set.
	UpdatedAt time.Time
}

// Slot is a mutex-protected container for the latest status line.
// The zero value is ready to use.
type Slot struct {
	mu   sync.Mutex
	snap Snapshot
	now  func() time.Time
}

// NewSlot creates a slot holding an initial message. The initial message
// does not count as a revision.
func NewSlot(initial string) *Slot {
	return &Slot{snap: Snapshot{Message: initial}}
}

// Set replaces the current message.
func (s *Slot) Set(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Message = message
	s.snap.Revision++
	s.snap.UpdatedAt = s.clock()
}

// Get returns the current message.
func (s *Slot) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Message
}

// Snapshot returns the current message together with its revision.
func (s *Slot) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Slot) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Sink is anything that accepts status lines. *Slot implements it; a nil
// Sink is allowed wherever one is accepted.
type Sink interface {
	Set(message string)
}

// Ensure Slot implements Sink.
var _ Sink = (*Slot)(nil)
