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

// Package monitor is an interactive console for a running cartridge. The
// monitor takes the place of the host: every command that touches the
// cartridge does so through the host bus.
//
// Commands are single key presses:
//
//	s     status
//	c     commit to the selected slot
//	0-9   commit to slot
//	r     reload the selected slot (requires the diagnostics preference)
//	v     verify the loaded image
//	p     peek at the start of the image being served
//	m     memory map of the host address space
//	a     recent audio events
//	l     recent log entries
//	h     help
//	q     quit
package monitor
