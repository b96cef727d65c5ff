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

package psram_test

import (
	"testing"

	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/test"
)

func TestWordToByte(t *testing.T) {
	w := uint32(0x44332211)
	test.ExpectEquality(t, psram.WordToByte(w, 0), uint8(0x11))
	test.ExpectEquality(t, psram.WordToByte(w, 1), uint8(0x22))
	test.ExpectEquality(t, psram.WordToByte(w, 2), uint8(0x33))
	test.ExpectEquality(t, psram.WordToByte(w, 3), uint8(0x44))
}

// inserting a byte into a lane never changes the other lanes
func TestLaneIsolation(t *testing.T) {
	words := []uint32{0x00000000, 0xffffffff, 0x44332211, 0xa5a5a5a5}
	for _, w := range words {
		for l := psram.Lane(0); l < psram.LanesPerWord; l++ {
			for _, v := range []uint8{0x00, 0x5a, 0xff} {
				m := psram.ByteToMaskedWord(w, l, v)
				test.ExpectEquality(t, psram.WordToByte(m, l), v)
				test.ExpectEquality(t, m&^psram.LaneMask(l), w&^psram.LaneMask(l))
			}
		}
	}
}

func TestLaneOrder(t *testing.T) {
	idx, lane := psram.LittleEndian.Locate(0x1235)
	test.ExpectEquality(t, idx, 0x48d)
	test.ExpectEquality(t, lane, psram.Lane(1))

	idx, lane = psram.Inverted.Locate(0x1235)
	test.ExpectEquality(t, idx, 0x48d)
	test.ExpectEquality(t, lane, psram.Lane(2))

	o, err := psram.ParseLaneOrder("inverted")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, o, psram.Inverted)
	_, err = psram.ParseLaneOrder("big")
	test.ExpectFailure(t, err)
}

func TestStore(t *testing.T) {
	s := psram.NewStore(10)
	test.ExpectEquality(t, s.Size(), 12)
	test.ExpectEquality(t, s.Words(), 3)

	s.WriteMasked(1, 0x11223344, psram.LaneMask(2))
	test.ExpectEquality(t, s.Word(1), uint32(0x00220000))

	s.Clear()
	test.ExpectEquality(t, s.Word(1), uint32(0))
}
