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

package digest

import (
	"fmt"
	"hash"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/jetsetilly/sdcart/hardware/audio"
)

// Audio is an audio.Sink that hashes every event sent to it. Two runs of the
// same program should produce the same hash.
type Audio struct {
	crit   sync.Mutex
	hash   hash.Hash64
	events int
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	return &Audio{
		hash: xxhash.New(),
	}
}

func (dig *Audio) String() string {
	return fmt.Sprintf("%d events hash=%s", dig.Events(), dig.Hash())
}

// Write implements the audio.Sink interface.
func (dig *Audio) Write(ev audio.Event) {
	dig.crit.Lock()
	defer dig.crit.Unlock()

	var s uint8
	if ev.Strobe {
		s = 1
	}
	dig.hash.Write([]byte{ev.Register, ev.Data, s})
	dig.events++
}

// Events returns the number of events that have been hashed.
func (dig *Audio) Events() int {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return dig.events
}

// Hash implements the Digest interface.
func (dig *Audio) Hash() string {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	return fmt.Sprintf("%016x", dig.hash.Sum64())
}

// ResetDigest implements the Digest interface.
func (dig *Audio) ResetDigest() {
	dig.crit.Lock()
	defer dig.crit.Unlock()
	dig.hash.Reset()
	dig.events = 0
}
