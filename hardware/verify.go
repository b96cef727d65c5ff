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

package hardware

import (
	"context"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/digest"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/logger"
)

// Sentinal error patterns.
const (
	NotLoaded    = "hardware: no image loaded"
	VerifyFailed = "hardware: verification failed (sum %#08x, expected %#08x)"
)

// Verify reads the loaded image back from the backing store and compares
// the checksum with the checksum calculated by the loader. A mismatch
// usually means the lane order preference is wrong for the backing store.
//
// Verify should not be called while the host is being served the loaded
// image.
func (cart *Cartridge) Verify(ctx context.Context) (uint32, error) {
	hdr := cart.Session.Header()
	if hdr == nil {
		return 0, curated.Errorf(NotLoaded)
	}

	expected := cart.Loader.Status().Checksum
	base := uint32(cart.env.Prefs.Memory.LoadedBase.Int())

	dig := digest.NewPayload()
	for i := 0; i < hdr.PayloadLen; i++ {
		rsp, err := cart.Bridge.Do(ctx, psram.Request{Address: base + uint32(i), Direction: psram.Read})
		if err != nil {
			return 0, err
		}
		dig.WriteByte(rsp.Data)
	}

	if dig.Sum32() != expected {
		err := curated.Errorf(VerifyFailed, dig.Sum32(), expected)
		logger.Log(cart.env, logTag, err)
		return dig.Sum32(), err
	}

	logger.Logf(cart.env, logTag, "verified: %s", dig)

	return dig.Sum32(), nil
}
