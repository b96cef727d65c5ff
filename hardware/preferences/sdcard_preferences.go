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

package preferences

import (
	"time"

	"github.com/jetsetilly/sdcart/prefs"
)

// SDCardPreferences are used by the block storage reader.
type SDCardPreferences struct {
	dsk *prefs.Disk

	// the maximum time to wait for the next byte of a sector
	SectorTimeout prefs.Duration

	// the maximum time to wait for the device to become ready after power-up
	ReadyTimeout prefs.Duration
}

func (p *SDCardPreferences) String() string {
	return p.dsk.String()
}

func newSDCardPreferences(pth string) (*SDCardPreferences, error) {
	p := &SDCardPreferences{}
	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("sdcard.sectorTimeout", &p.SectorTimeout)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("sdcard.readyTimeout", &p.ReadyTimeout)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all SD card preferences to their default values.
func (p *SDCardPreferences) SetDefaults() {
	p.SectorTimeout.SetDefault(500 * time.Millisecond)
	p.ReadyTimeout.SetDefault(2 * time.Second)
}
