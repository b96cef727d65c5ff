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

package hardware

import "github.com/jetsetilly/sdcart/hardware/memory/memorymap"

// length of the resident stub
const residentLen = 0x1000

// the resident stub program. it commits to the loaded image and then jumps
// through the reset vector. if the loaded image is not ready the reset
// vector is the stub's own and the commit is repeated
var residentProgram = []uint8{
	0xa9, 0x80, // LDA #$80
	0x8d, uint8(memorymap.ControlRegister & 0xff), uint8(memorymap.ControlRegister >> 8), // STA $3F00
	0x6c, 0xfc, 0xff, // JMP ($FFFC)
}

// ResidentStub returns a minimal resident image. The image is 4k in size and
// is mapped at $F000. The program starts at the beginning of the image and
// all vectors point to it.
func ResidentStub() []byte {
	b := make([]byte, residentLen)
	copy(b, residentProgram)

	// NMI, reset and IRQ vectors
	for v := residentLen - 6; v < residentLen; v += 2 {
		b[v] = 0x00
		b[v+1] = 0xf0
	}

	return b
}
