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

// Package digest is used to create hashes of cartridge data. The Payload type
// follows the bytes streamed by the loader and the Audio type follows the
// register writes forwarded to the audio chip.
//
// Hashes are created with the xxhash algorithm. They are used to quickly
// tell whether two images (or two audio streams) are the same. They are not
// intended for security purposes.
package digest

// Digest implementations compute a hash of the data sent to them.
type Digest interface {
	Hash() string
	ResetDigest()
}
