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

package imageheader_test

import (
	"testing"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/test"
)

const signature = "GAME3   A78"

func TestBuildAndParse(t *testing.T) {
	h := imageheader.Header{
		Version:    3,
		Signature:  signature,
		Title:      "Food Fight",
		PayloadLen: 0x20000,
		Controller: [2]uint8{1, 1},
		TV:         imageheader.PAL,
		AudioBase:  0x0450,
	}

	b := h.Build()
	test.ExpectEquality(t, len(b), imageheader.Len)

	// the signature is at offset one
	test.ExpectEquality(t, string(b[1:12]), signature)

	p, err := imageheader.Parse(b, signature, 49152)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, h)
}

func TestDefaultPayload(t *testing.T) {
	h := imageheader.Header{Signature: signature}
	p, err := imageheader.Parse(h.Build(), signature, 49152)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.PayloadLen, 49152)
	test.ExpectEquality(t, p.Title, "")
	test.ExpectEquality(t, p.String(), "untitled (49152 bytes, NTSC)")
}

func TestAudioWindow(t *testing.T) {
	h := imageheader.Header{}
	_, ok := h.AudioWindow()
	test.ExpectFailure(t, ok)

	h.Mapper = imageheader.MapperPokey4000
	base, ok := h.AudioWindow()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, base, uint16(0x4000))

	// an explicit base takes precedence
	h.AudioBase = 0x0450
	base, ok = h.AudioWindow()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, base, uint16(0x0450))
}

func TestInvalid(t *testing.T) {
	h := imageheader.Header{Signature: signature}
	b := h.Build()

	_, err := imageheader.Parse(b[:100], signature, 49152)
	test.ExpectSuccess(t, curated.Is(err, imageheader.TooShort))

	_, err = imageheader.Parse(b, "GAME2", 49152)
	test.ExpectSuccess(t, curated.Is(err, imageheader.SignatureMismatch))

	b[0x39] = 7
	_, err = imageheader.Parse(b, signature, 49152)
	test.ExpectSuccess(t, curated.Is(err, imageheader.BadTVType))
}
