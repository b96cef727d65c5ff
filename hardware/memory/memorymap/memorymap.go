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

package memorymap

import "fmt"

// Area represents the different areas of the address space.
type Area int

func (a Area) String() string {
	switch a {
	case Control:
		return "Control"
	case Audio:
		return "Audio"
	case Resident:
		return "Resident"
	case Loaded:
		return "Loaded"
	}

	return "undefined"
}

// The different areas of the address space.
const (
	Undefined Area = iota
	Control
	Audio
	Resident
	Loaded
)

// ControlRegister is the address of the cartridge control register. Writes
// to the address are commands and reads return the status.
const ControlRegister = uint16(0x3f00)

// AudioWindowLen is the number of registers in the audio chip window.
const AudioWindowLen = 16

// top of the address space plus one. images are placed so that they end at
// Memtop.
const (
	Memtop = uint16(0xffff)
	top    = 0x10000
)

// MinOrigin is the lowest address an image can be mapped to. Larger images
// are mapped so that only the end of the image is visible.
const MinOrigin = uint16(0x4000)

// Map is the layout of the address space. It changes on a mode flip or when
// a new image is loaded.
type Map struct {
	// the loaded image is being served. otherwise the resident image
	Loaded bool

	// length of the resident image
	ResidentLen int

	// length of the loaded image and its position in the backing store
	LoadedLen  int
	LoadedBase uint32

	// the audio chip register window. only used if AudioEnabled is true
	AudioBase    uint16
	AudioEnabled bool
}

func (m Map) String() string {
	if m.Loaded {
		return fmt.Sprintf("loaded: %#04x (store %#06x)", m.LoadedOrigin(), m.LoadedBase)
	}
	return fmt.Sprintf("resident: %#04x", m.ResidentOrigin())
}

func origin(length int) uint16 {
	if length <= 0 {
		return Memtop
	}
	if length > top-int(MinOrigin) {
		return MinOrigin
	}
	return uint16(top - length)
}

// ResidentOrigin returns the lowest address of the resident image.
func (m Map) ResidentOrigin() uint16 {
	return origin(m.ResidentLen)
}

// LoadedOrigin returns the lowest address of the loaded image.
func (m Map) LoadedOrigin() uint16 {
	return origin(m.LoadedLen)
}

// MapAddress returns the area the address belongs to for the type of access.
// For the Resident area the returned value is the offset into the resident
// image. For the Loaded area it is the address in the backing store. For the
// Audio area it is the register number.
func (m Map) MapAddress(address uint16, read bool) (uint32, Area) {
	// note that the order of these filters is important

	if address == ControlRegister {
		return 0, Control
	}

	if !read && m.AudioEnabled {
		if address >= m.AudioBase && int(address) < int(m.AudioBase)+AudioWindowLen {
			return uint32(address - m.AudioBase), Audio
		}
	}

	if m.Loaded {
		if m.LoadedLen > 0 && address >= m.LoadedOrigin() {
			// the offset from the end of the image. for images that are not
			// larger than the visible window this is the same as the offset
			// from the origin
			return m.LoadedBase + uint32(m.LoadedLen-(top-int(address))), Loaded
		}
		return 0, Undefined
	}

	if m.ResidentLen > 0 && address >= m.ResidentOrigin() {
		return uint32(m.ResidentLen - (top - int(address))), Resident
	}

	return 0, Undefined
}
