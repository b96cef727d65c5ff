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

// Package cartridgeloader finds a game image on the SD card and streams it
// into the backing store.
//
// A load is described by a Request. The NewRequest() function creates a
// Request for a slot using the values in the preferences:
//
//	req := cartridgeloader.NewRequest(env.Prefs, 0)
//	ld := cartridgeloader.NewLoader(env, reader, bridge, storeSize)
//	hdr, err := ld.Load(ctx, req)
//
// The loader scans the sectors of the slot one byte at a time until the
// signature is found. The bytes leading up to the signature are part of the
// header and are kept in a ring buffer so that the header can be replayed
// once the signature is matched. The payload that follows the header is
// written to the backing store one byte at a time.
//
// While scanning, a sector that times out is skipped. While streaming the
// payload, a sector that times out is read again, up to the number of times
// given by the SectorRetries preference.
//
// The Status() function can be called at any time from any goroutine.
package cartridgeloader
