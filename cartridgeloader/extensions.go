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

package cartridgeloader

import (
	"path/filepath"
	"strings"
)

// FileExtensions is the list of file extensions for game images that are
// recognised by the cartridgeloader package. Alphabetic characters in file
// extensions can be in upper or lower case or a mixture of both.
var FileExtensions = [...]string{".A78", ".BIN", ".ROM"}

// HeaderedExtensions is the list of file extensions for game images that
// already have a header.
var HeaderedExtensions = [...]string{".A78"}

// IsImageFile returns true if the filename has an extension in the
// FileExtensions list.
func IsImageFile(filename string) bool {
	ext := strings.ToUpper(filepath.Ext(filename))
	for _, e := range FileExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// HasHeader returns true if the filename has an extension in the
// HeaderedExtensions list.
func HasHeader(filename string) bool {
	ext := strings.ToUpper(filepath.Ext(filename))
	for _, e := range HeaderedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
