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

//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package easyterm

import (
	"fmt"
	"os"
)

// TermGeometry contains the dimensions of a terminal in characters.
type TermGeometry struct {
	Rows uint16
	Cols uint16
}

// Terminal is not supported on this platform.
type Terminal struct{}

// Initialise always fails on this platform.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	return fmt.Errorf("easyterm: not supported on this platform")
}

// CleanUp does nothing on this platform.
func (pt *Terminal) CleanUp() {}

// Geometry returns zero values on this platform.
func (pt *Terminal) Geometry() TermGeometry {
	return TermGeometry{}
}

// UpdateGeometry does nothing on this platform.
func (pt *Terminal) UpdateGeometry() error {
	return nil
}

// CanonicalMode does nothing on this platform.
func (pt *Terminal) CanonicalMode() {}

// CBreakMode does nothing on this platform.
func (pt *Terminal) CBreakMode() {}

// Flush does nothing on this platform.
func (pt *Terminal) Flush() error {
	return nil
}
