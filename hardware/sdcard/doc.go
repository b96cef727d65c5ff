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

// Package sdcard reads sectors from the SD card that holds the game images.
//
// The card is represented by a Device. Three implementations are provided:
// an in-memory image (NewImage), a raw image file (OpenImage) and an SD card
// attached through a USB serial bridge (OpenSerial).
//
// A Reader sits in front of the Device. The ReadSector() function starts
// reading a sector in its own goroutine and returns a Stream. Every byte of
// the sector is delivered in order through the Stream's Next() function. The
// hand over of each byte is unbuffered, so a consumer that stops calling
// Next() stalls the device.
//
// A Stream that does not deliver a byte within the sector timeout returns an
// error with the DeviceTimeout pattern. The Reader never retries a sector by
// itself. Retrying (or moving on to the next sector) is a decision for the
// caller.
package sdcard
