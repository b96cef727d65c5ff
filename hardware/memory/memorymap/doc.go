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

// Package memorymap describes the address space of the cartridge as seen
// from the host bus. The host sees a 16 bit address space. What is mapped
// into it depends on whether the resident image or the loaded image is
// being served.
//
// The control register is always mapped. The audio register window is
// mapped for writes only and takes precedence over the image.
//
// Images are mapped so that they end at the top of the address space. For
// the loaded image the address is translated to an address in the backing
// store with a fixed linear offset.
package memorymap
