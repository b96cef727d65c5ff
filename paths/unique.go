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

package paths

import (
	"fmt"
	"strings"
	"time"
)

// UniqueFilename creates a filename that (assuming a functioning clock)
// should not collide with any existing file. The title is optional and
// is usually the title of the loaded game image.
//
// Format of returned string is:
//
//	prepend_title_YYYYMMDD_HHMMSS
//
// Spaces in the title are replaced with underscores.
func UniqueFilename(prepend string, title string) string {
	n := time.Now()
	timestamp := n.Format("20060102_150405")

	t := strings.Join(strings.Fields(title), "_")
	if len(t) > 0 {
		return fmt.Sprintf("%s_%s_%s", prepend, t, timestamp)
	}
	return fmt.Sprintf("%s_%s", prepend, timestamp)
}
