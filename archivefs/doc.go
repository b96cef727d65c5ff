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

// Package archivefs allows game images to be read from inside archive files
// as though the archive was a directory. Zip and 7z archives are supported.
//
// A path can name a file inside an archive:
//
//	games/collection.7z/arcade/food fight.a78
//
// The List() function returns the files inside an archive. It is used when
// provisioning an SD card image from a collection of games.
package archivefs
