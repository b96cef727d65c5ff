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

// Package psram emulates the backing store of the cartridge and the
// controller that services requests for it.
//
// The Store is organised as 32-bit words. Each word has four byte lanes. A
// byte address is located in a word and a lane by a LaneOrder. The pure
// functions WordToByte() and ByteToMaskedWord() extract and insert a single
// lane.
//
// The Controller runs in its own goroutine (the Run() function). After a
// calibration period it services one request at a time: a command phase, a
// fixed latency and then the transfer of one word. Requests are issued with
// the Issue() function which returns a Ticket. The Ticket is completed when
// the request has been serviced.
//
// Only one request can be in service at once. A request issued while
// another is in service is rejected with the Busy pattern. This prevents a
// write from being interleaved with another write to the same word.
package psram
