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

// Package session holds the state shared by the loader and the host bus
// server for the lifetime of one power cycle.
//
// The most important part of the session is the mode flag. The cartridge
// starts by serving the resident image. The flag flips to the loaded image
// exactly once, when a commit has been requested and the load has
// completed. It only flips back on Reset().
package session

import (
	"fmt"
	"sync/atomic"

	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
)

// Mode indicates which image is being served to the host.
type Mode int32

// List of valid Mode values.
const (
	Resident Mode = iota
	Loaded
)

func (m Mode) String() string {
	if m == Loaded {
		return "loaded"
	}
	return "resident"
}

// Session is safe to use from more than one goroutine.
type Session struct {
	mode atomic.Int32

	// the loader has completed and the loaded image can be served
	eligible atomic.Bool

	// a commit was requested before the loader completed
	pending atomic.Bool

	// the loader finished with an error
	failed atomic.Bool

	// the slot that is loaded or being loaded
	selection atomic.Int32

	// the header of the loaded image. nil until the load is complete
	header atomic.Pointer[imageheader.Header]
}

// NewSession is the preferred method of initialisation for the Session type.
func NewSession(slot int) *Session {
	s := &Session{}
	s.selection.Store(int32(slot))
	return s
}

func (s *Session) String() string {
	return fmt.Sprintf("mode=%s slot=%d eligible=%v pending=%v failed=%v",
		s.Mode(), s.Selection(), s.Eligible(), s.Pending(), s.Failed())
}

// Mode returns the current mode.
func (s *Session) Mode() Mode {
	return Mode(s.mode.Load())
}

// Eligible returns true if the loaded image is ready to be served.
func (s *Session) Eligible() bool {
	return s.eligible.Load()
}

// Pending returns true if a commit is waiting for the loader to complete.
func (s *Session) Pending() bool {
	return s.pending.Load() && s.Mode() == Resident
}

// Failed returns true if the loader finished with an error.
func (s *Session) Failed() bool {
	return s.failed.Load()
}

// Selection returns the slot that is loaded or being loaded.
func (s *Session) Selection() int {
	return int(s.selection.Load())
}

// Header returns the header of the loaded image. Returns nil if the load is
// not complete.
func (s *Session) Header() *imageheader.Header {
	return s.header.Load()
}

// flip the mode flag. returns true only for the call that changed the flag
func (s *Session) flip() bool {
	return s.mode.CompareAndSwap(int32(Resident), int32(Loaded))
}

// Commit requests that the loaded image be served. If the loader has already
// completed the mode flips immediately, otherwise the commit is pending.
//
// Returns true if the call changed the mode. Committing more than once has
// no further effect.
func (s *Session) Commit() bool {
	s.pending.Store(true)
	if s.eligible.Load() {
		return s.flip()
	}
	return false
}

// Complete is called by the loader when the image has been loaded. A pending
// commit flips the mode.
//
// Returns true if the call changed the mode.
func (s *Session) Complete(h imageheader.Header) bool {
	s.header.Store(&h)
	s.failed.Store(false)
	s.eligible.Store(true)
	if s.pending.Load() {
		return s.flip()
	}
	return false
}

// Fail is called by the loader when the load could not be completed. The
// resident image remains authoritative.
func (s *Session) Fail() {
	s.failed.Store(true)
}

// Select a new slot. The session forgets about any previous load but a
// pending commit remains pending. Select() has no effect once the mode has
// flipped and returns false in that case.
func (s *Session) Select(slot int) bool {
	if s.Mode() == Loaded {
		return false
	}
	s.eligible.Store(false)
	s.failed.Store(false)
	s.header.Store(nil)
	s.selection.Store(int32(slot))
	return true
}

// Reset the session to the state it was in at power-up but with a new slot
// selection. This is the only way the mode can revert to resident.
func (s *Session) Reset(slot int) {
	s.mode.Store(int32(Resident))
	s.pending.Store(false)
	s.eligible.Store(false)
	s.failed.Store(false)
	s.header.Store(nil)
	s.selection.Store(int32(slot))
}
