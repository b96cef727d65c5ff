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

// Package paths contains functions to prepare paths for sdcart resources.
//
// The ResourcePath() function modifies the supplied resource string such that
// it is prepended with the appropriate config directory. By default that is
// the ".sdcart" directory in the current working directory. When built with
// the "release" tag the directory is the "sdcart" directory in the user's
// configuration directory (see os.UserConfigDir).
//
// UniqueFilename() creates a timestamped filename for output files, such as
// the structure dumps made with the -memviz option.
package paths
