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

package sdcard

import (
	"context"
	"io"
)

// SectorSize is the number of bytes in every sector.
const SectorSize = 512

// Sentinal error patterns.
const (
	DeviceTimeout    = "sdcard: device timeout (sector %d)"
	DeviceError      = "sdcard: device error (sector %d): %v"
	SectorOutOfRange = "sdcard: sector out of range (%d)"
)

// Device is the SD card hardware.
type Device interface {
	// the number of sectors on the device
	Sectors() int

	// Ready returns true if the device is idle and ready to accept a command
	Ready() bool

	// OpenSector issues the read command for a sector. The returned
	// io.ReadCloser yields the SectorSize bytes of the sector as they arrive
	// from the device. Cancelling the context abandons the read. The
	// ReadCloser must be closed even if it was not read to the end.
	OpenSector(ctx context.Context, index int) (io.ReadCloser, error)
}
