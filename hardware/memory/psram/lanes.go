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

package psram

import (
	"fmt"

	"github.com/jetsetilly/sdcart/hardware/preferences"
)

// LanesPerWord is the number of bytes in every word of the store.
const LanesPerWord = 4

// Lane is a byte position in a word. Lane zero is the least significant byte.
type Lane uint8

// WordToByte extracts the byte in the lane.
func WordToByte(word uint32, lane Lane) uint8 {
	return uint8(word >> (8 * uint32(lane&3)))
}

// LaneMask returns the bits of a word that belong to the lane.
func LaneMask(lane Lane) uint32 {
	return 0xff << (8 * uint32(lane&3))
}

// ByteToMaskedWord returns the word with the lane replaced by value. The
// other lanes are unchanged.
func ByteToMaskedWord(word uint32, lane Lane, value uint8) uint32 {
	m := LaneMask(lane)
	return (word &^ m) | (uint32(value) << (8 * uint32(lane&3)) & m)
}

// LaneOrder describes how a byte address is mapped onto a lane.
type LaneOrder int

// List of valid LaneOrder values.
const (
	// the low bits of the address are the lane number
	LittleEndian LaneOrder = iota

	// the low bits of the address are inverted to give the lane number. the
	// byte at address zero is in the most significant lane
	Inverted
)

func (o LaneOrder) String() string {
	switch o {
	case LittleEndian:
		return preferences.LaneOrderLittle
	case Inverted:
		return preferences.LaneOrderInverted
	}
	return "unknown"
}

// ParseLaneOrder converts the preference value to a LaneOrder.
func ParseLaneOrder(s string) (LaneOrder, error) {
	switch s {
	case preferences.LaneOrderLittle:
		return LittleEndian, nil
	case preferences.LaneOrderInverted:
		return Inverted, nil
	}
	return LittleEndian, fmt.Errorf("psram: unknown lane order (%s)", s)
}

// Lane returns the lane of the address.
func (o LaneOrder) Lane(address uint32) Lane {
	l := Lane(address & (LanesPerWord - 1))
	if o == Inverted {
		return LanesPerWord - 1 - l
	}
	return l
}

// Locate returns the word index and the lane of the address.
func (o LaneOrder) Locate(address uint32) (int, Lane) {
	return int(address / LanesPerWord), o.Lane(address)
}
