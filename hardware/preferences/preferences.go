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
	"strings"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/prefs"
)

// Preferences for the cartridge hardware. The preferences are divided into
// the components that use them.
type Preferences struct {
	dsk *prefs.Disk

	// diagnostic commands written to the control register are ignored unless
	// this is true
	Diagnostics prefs.Bool

	SDCard *SDCardPreferences
	Loader *LoaderPreferences
	Memory *MemoryPreferences
	Bus    *BusPreferences
}

func (p *Preferences) String() string {
	s := strings.Builder{}
	for _, dsk := range p.disks() {
		s.WriteString(dsk.String())
	}
	return s.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are loaded from the file at the path. An empty
// path means that the preferences are not backed by a file and will keep
// their default values. This is useful for testing.
func NewPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.diagnostics", &p.Diagnostics)
	if err != nil {
		return nil, err
	}

	p.SDCard, err = newSDCardPreferences(pth)
	if err != nil {
		return nil, err
	}
	p.Loader, err = newLoaderPreferences(pth)
	if err != nil {
		return nil, err
	}
	p.Memory, err = newMemoryPreferences(pth)
	if err != nil {
		return nil, err
	}
	p.Bus, err = newBusPreferences(pth)
	if err != nil {
		return nil, err
	}

	err = p.Load()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values. The values on
// disk are not changed.
func (p *Preferences) SetDefaults() {
	p.Diagnostics.SetDefault(false)
	if p.SDCard != nil {
		p.SDCard.SetDefaults()
	}
	if p.Loader != nil {
		p.Loader.SetDefaults()
	}
	if p.Memory != nil {
		p.Memory.SetDefaults()
	}
	if p.Bus != nil {
		p.Bus.SetDefaults()
	}
}

// ignoreMissing filters out the error returned when there is no preferences
// file. defaults are used in that case.
func ignoreMissing(err error) error {
	if curated.Is(err, prefs.NoPrefsFile) {
		return nil
	}
	return err
}

// Load all preferences from disk.
func (p *Preferences) Load() error {
	for _, dsk := range p.disks() {
		if err := ignoreMissing(dsk.Load()); err != nil {
			return err
		}
	}
	return nil
}

// Save all preferences to disk.
func (p *Preferences) Save() error {
	for _, dsk := range p.disks() {
		if err := dsk.Save(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Preferences) disks() []*prefs.Disk {
	return []*prefs.Disk{p.dsk, p.SDCard.dsk, p.Loader.dsk, p.Memory.dsk, p.Bus.dsk}
}
