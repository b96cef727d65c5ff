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
	"fmt"

	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/preferences"
)

// Request describes where to look for a game image and where to put it.
type Request struct {
	// the signature and its position in the header
	Signature       string
	SignatureOffset int

	// the range of sectors that are scanned for the signature
	FirstSector int
	ScanWindow  int

	// the address in the backing store of the first byte of the payload
	Base uint32

	// length of the header and the length of the payload to use if the
	// header does not specify one
	HeaderLen  int
	PayloadLen int

	// the slot number. for information only
	Slot int
}

// NewRequest creates a Request for the slot from the current preference
// values.
func NewRequest(prefs *preferences.Preferences, slot int) Request {
	lp := prefs.Loader
	return Request{
		Signature:       lp.Signature.String(),
		SignatureOffset: lp.SignatureOffset.Int(),
		FirstSector:     lp.FirstSector.Int() + slot*lp.SlotSectors.Int(),
		ScanWindow:      lp.SlotSectors.Int(),
		Base:            uint32(prefs.Memory.LoadedBase.Int()),
		HeaderLen:       lp.HeaderLen.Int(),
		PayloadLen:      lp.PayloadLen.Int(),
		Slot:            slot,
	}
}

func (req Request) String() string {
	return fmt.Sprintf("slot %d: sectors %d to %d", req.Slot, req.FirstSector, req.lastSector())
}

// the last sector in the scan window.
func (req Request) lastSector() int {
	return req.FirstSector + req.ScanWindow - 1
}

// the number of bytes from the start of the header to the end of the
// signature.
func (req Request) leadIn() int {
	return req.SignatureOffset + len(req.Signature)
}

func (req Request) validate() error {
	if len(req.Signature) == 0 {
		return fmt.Errorf("cartridgeloader: empty signature")
	}
	if req.SignatureOffset < 0 {
		return fmt.Errorf("cartridgeloader: negative signature offset")
	}
	if req.FirstSector < 0 || req.ScanWindow <= 0 {
		return fmt.Errorf("cartridgeloader: invalid scan window")
	}
	if req.HeaderLen < imageheader.Len {
		return fmt.Errorf("cartridgeloader: header length of %d is shorter than the %d byte header record", req.HeaderLen, imageheader.Len)
	}
	if req.HeaderLen < req.leadIn() {
		return fmt.Errorf("cartridgeloader: header is shorter than the signature")
	}
	return nil
}
