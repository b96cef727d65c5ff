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

// the maximum length of a signature. the header has 11 bytes for it
const MaxSignatureLen = 11

// LoaderPreferences describe where and how the loader finds the game image
// on the SD card.
type LoaderPreferences struct {
	dsk *prefs.Disk

	// the signature that marks the start of a game image. the signature is
	// part of the header and is preceded by SignatureOffset bytes
	Signature       prefs.String
	SignatureOffset prefs.Int

	// length of the header. the payload follows immediately after it
	HeaderLen prefs.Int

	// the length of the payload if the header does not specify one
	PayloadLen prefs.Int

	// the first sector of slot zero. sector zero is reserved
	FirstSector prefs.Int

	// the number of sectors in each slot. the loader will not scan past the
	// end of a slot
	SlotSectors prefs.Int

	// the slot to load on power-up
	DefaultSlot prefs.Int

	// the number of times a sector is retried while streaming the payload
	SectorRetries prefs.Int
}

func (p *LoaderPreferences) String() string {
	return p.dsk.String()
}

func newLoaderPreferences(pth string) (*LoaderPreferences, error) {
	p := &LoaderPreferences{}
	p.SetDefaults()

	p.Signature.SetMaxLen(MaxSignatureLen)
	p.Signature.SetHookPre(func(v prefs.Value) error {
		if len(v.(string)) == 0 {
			return fmt.Errorf("loader: signature cannot be empty")
		}
		return nil
	})

	positive := func(v prefs.Value) error {
		if v.(int) < 0 {
			return fmt.Errorf("loader: value cannot be negative (%d)", v.(int))
		}
		return nil
	}
	p.SignatureOffset.SetHookPre(positive)
	p.FirstSector.SetHookPre(positive)
	p.DefaultSlot.SetHookPre(positive)
	p.SectorRetries.SetHookPre(positive)

	nonzero := func(v prefs.Value) error {
		if v.(int) <= 0 {
			return fmt.Errorf("loader: value must be greater than zero (%d)", v.(int))
		}
		return nil
	}
	p.HeaderLen.SetHookPre(nonzero)
	p.PayloadLen.SetHookPre(nonzero)
	p.SlotSectors.SetHookPre(nonzero)

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.signature", &p.Signature)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.signatureOffset", &p.SignatureOffset)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.headerLen", &p.HeaderLen)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.payloadLen", &p.PayloadLen)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.firstSector", &p.FirstSector)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.slotSectors", &p.SlotSectors)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.defaultSlot", &p.DefaultSlot)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("loader.sectorRetries", &p.SectorRetries)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all loader preferences to their default values.
func (p *LoaderPreferences) SetDefaults() {
	p.Signature.SetDefault("GAME3   A78")
	p.SignatureOffset.SetDefault(1)
	p.HeaderLen.SetDefault(128)
	p.PayloadLen.SetDefault(49152)
	p.FirstSector.SetDefault(1)
	p.SlotSectors.SetDefault(100)
	p.DefaultSlot.SetDefault(0)
	p.SectorRetries.SetDefault(2)
}
