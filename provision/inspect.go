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

package provision

import (
	"context"
	"fmt"

	"github.com/jetsetilly/sdcart/cartridgeloader"
	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
)

// Entry is a game image found by Inspect().
type Entry struct {
	Slot   int
	Sector int
	Header imageheader.Header

	Checksum    uint32
	Fingerprint uint64

	// the slot contains a header but the image could not be read
	Err error
}

func (e Entry) String() string {
	if e.Err != nil {
		return fmt.Sprintf("%3d  sector %-6d %v", e.Slot, e.Sector, e.Err)
	}
	return fmt.Sprintf("%3d  sector %-6d %-32s %6d bytes  sum=%08x  %016x",
		e.Slot, e.Sector, e.Header.Title, e.Header.PayloadLen, e.Checksum, e.Fingerprint)
}

// discard is a cartridgeloader.Writer that writes nothing.
type discard struct{}

func (discard) Do(_ context.Context, req psram.Request) (psram.Response, error) {
	return psram.Response{Request: req, Data: req.Data}, nil
}

// Inspect loads every slot on the device in the same way as the cartridge
// would and lists the games found. Empty slots are not listed.
func Inspect(ctx context.Context, env *environment.Environment, dev sdcard.Device) ([]Entry, error) {
	l := NewLayout(env.Prefs)

	ld := cartridgeloader.NewLoader(env, sdcard.NewReader(env, dev), discard{}, int(^uint32(0)>>1))

	var ent []Entry

	for slot := 0; l.SlotSector(slot) < dev.Sectors(); slot++ {
		req := cartridgeloader.NewRequest(env.Prefs, slot)
		req.Base = 0

		hdr, err := ld.Load(ctx, req)
		if ctx.Err() != nil {
			return ent, ctx.Err()
		}

		st := ld.Status()

		if err != nil {
			if curated.Is(err, cartridgeloader.SignatureNotFound) {
				continue // for loop
			}
			ent = append(ent, Entry{Slot: slot, Sector: st.FoundSector, Err: err})
			continue // for loop
		}

		ent = append(ent, Entry{
			Slot:        slot,
			Sector:      st.FoundSector,
			Header:      hdr,
			Checksum:    st.Checksum,
			Fingerprint: st.Fingerprint,
		})
	}

	return ent, nil
}
