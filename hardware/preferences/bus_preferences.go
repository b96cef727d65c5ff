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
	"fmt"

	"github.com/jetsetilly/sdcart/prefs"
)

// BusPreferences are used by the host bus server.
type BusPreferences struct {
	dsk *prefs.Disk

	// the base of the audio chip register window while the resident image
	// is being served
	ResidentAudioBase prefs.Int
}

func (p *BusPreferences) String() string {
	return p.dsk.String()
}

func newBusPreferences(pth string) (*BusPreferences, error) {
	p := &BusPreferences{}
	p.SetDefaults()

	p.ResidentAudioBase.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 || v.(int) > 0xfff0 {
			return fmt.Errorf("bus: audio base out of range (%#04x)", v.(int))
		}
		return nil
	})

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("bus.residentAudioBase", &p.ResidentAudioBase)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all bus preferences to their default values.
func (p *BusPreferences) SetDefaults() {
	p.ResidentAudioBase.SetDefault(0x0450)
}
