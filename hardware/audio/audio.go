// This file is part of sdcart.
//
// sdcart is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sdcart is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sdcart.  If not, see <https://www.gnu.org/licenses/>.

// Package audio defines the connection between the host bus server and the
// audio chip. The audio chip itself is not emulated. Register writes are
// forwarded to a Sink, which might be a real audio chip emulation or
// something that simply records the events.
package audio

import (
	"fmt"
	"sync"
)

// WindowSize is the number of registers in the audio chip window.
const WindowSize = 16

// Event is a single register write forwarded to the audio chip.
type Event struct {
	// the register number. only the lower four bits are used
	Register uint8
	Data     uint8

	// strobe is true for the tick on which the write is accepted
	Strobe bool
}

func (ev Event) String() string {
	return fmt.Sprintf("reg %#x <- %#02x", ev.Register, ev.Data)
}

// Sink implementations receive writes to the audio chip registers. Write is
// called from the host bus goroutine and must not block.
type Sink interface {
	Write(Event)
}

// Discard is a Sink that ignores all events.
var Discard Sink = discard{}

type discard struct{}

func (discard) Write(Event) {}

// Recorder is a Sink that keeps a list of the events sent to it. It is safe
// to use from more than one goroutine.
type Recorder struct {
	crit   sync.Mutex
	events []Event

	// the maximum number of events kept. older events are dropped. a value
	// of zero means there is no limit
	Max int
}

// Write implements the Sink interface.
func (rec *Recorder) Write(ev Event) {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	rec.events = append(rec.events, ev)
	if rec.Max > 0 && len(rec.events) > rec.Max {
		rec.events = rec.events[len(rec.events)-rec.Max:]
	}
}

// Events returns a copy of the recorded events.
func (rec *Recorder) Events() []Event {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	c := make([]Event, len(rec.events))
	copy(c, rec.events)
	return c
}

// Len returns the number of recorded events.
func (rec *Recorder) Len() int {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	return len(rec.events)
}

// Clear all recorded events.
func (rec *Recorder) Clear() {
	rec.crit.Lock()
	defer rec.crit.Unlock()
	rec.events = rec.events[:0]
}

// Tee is a Sink that sends every event to all the Sinks in the list.
type Tee []Sink

// Write implements the Sink interface.
func (t Tee) Write(ev Event) {
	for _, s := range t {
		s.Write(ev)
	}
}
