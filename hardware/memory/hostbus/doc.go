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

// Package hostbus serves the host bus. The host bus runs on a clock that is
// independent of, and much slower than, the clocks of the SD card and the
// backing store.
//
// The Tick() function is called once for every sample of the bus. It
// returns whether the cartridge should drive the data lines and with what
// value. The direction of the bus is latched for one tick so that the
// cartridge never drives the bus on the tick that the host changes from
// writing to reading.
//
// Writes to the control register are commands. Bit 7 set commits to the
// loaded image, with the lower seven bits selecting the slot. When bit 7 is
// clear and bit 6 is set the lower six bits select a slot to reload. The
// reload command is for diagnostic purposes and is ignored unless the
// diagnostics preference is set.
//
// Reads of the control register return the status. See the Status
// constants.
package hostbus
