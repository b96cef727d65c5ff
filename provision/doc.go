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

// Package provision prepares SD card images for the cartridge and inspects
// existing ones.
//
// Game images are laid out in fixed size slots. Sector zero is reserved and
// slot N starts at sector FirstSector + N*SlotSectors. The last sector of
// each image is padded with zeroes. Images that are larger than a slot are
// refused.
//
// Game images without a header are given one with the Wrap() function
// before being written. Game images can be read from inside zip and 7z
// archives.
package provision
