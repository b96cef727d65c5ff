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

// Package hardware is the base package for the cartridge. It and its
// sub-packages contain everything required to load a game image from an SD
// card and to serve it to the host.
//
// The Cartridge type is the root of the cartridge and contains references to
// all the sub-systems. Each clock domain runs in its own goroutine. The
// backing store controller and the loader are started with the Start()
// function. The host bus is driven by the caller through the Bus field:
//
//	cart, err := hardware.NewCartridge(env, dev, audio.Discard, hardware.ResidentStub())
//	cart.Start(ctx)
//	drive := cart.Bus.Tick(ctx, cycle)
package hardware
