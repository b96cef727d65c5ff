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

package archivefs

import (
	"path/filepath"
	"strings"
)

// ArchiveExtensions is the list of file extensions that are recognised as
// archives. The extensions are upper case.
var ArchiveExtensions = [...]string{".ZIP", ".7Z"}

// IsArchive returns true if the filename has an archive extension.
func IsArchive(filename string) bool {
	ext := strings.ToUpper(filepath.Ext(filename))
	for _, e := range ArchiveExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Split divides a path into the archive and the path of the file inside the
// archive. If no component of the path is an archive then the inner path is
// empty.
//
// The inner path always uses forward slashes, which is how files are named
// inside archives.
func Split(path string) (string, string) {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for i, p := range parts {
		if i < len(parts)-1 && IsArchive(p) {
			return filepath.FromSlash(strings.Join(parts[:i+1], "/")), strings.Join(parts[i+1:], "/")
		}
	}
	return path, ""
}

// TrimArchiveExt removes the archive extension from the filename, if it has
// one.
func TrimArchiveExt(s string) string {
	if IsArchive(s) {
		return strings.TrimSuffix(s, filepath.Ext(s))
	}
	return s
}
