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

package digest_test

import (
	"testing"

	"github.com/cespare/xxhash"
	"github.com/jetsetilly/sdcart/digest"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/test"
)

func TestPayload(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	dig := digest.NewPayload()
	for _, b := range data[:500] {
		dig.WriteByte(b)
	}
	dig.Write(data[500:])

	test.ExpectEquality(t, dig.Len(), len(data))
	test.ExpectEquality(t, dig.Sum32(), digest.Sum32(data))
	test.ExpectEquality(t, dig.Fingerprint(), xxhash.Sum64(data))
	test.ExpectEquality(t, dig.Fingerprint(), digest.Fingerprint(data))

	dig.ResetDigest()
	test.ExpectEquality(t, dig.Len(), 0)
	test.ExpectEquality(t, dig.Sum32(), uint32(0))
	test.ExpectEquality(t, dig.Fingerprint(), xxhash.Sum64(nil))

	var _ digest.Digest = dig
}

// the checksum wraps at 2^32
func TestSum32Overflow(t *testing.T) {
	data := make([]byte, 0x1010102)
	for i := range data {
		data[i] = 0xff
	}
	test.ExpectEquality(t, digest.Sum32(data), uint32(uint64(len(data))*0xff))
}

func TestAudio(t *testing.T) {
	a := digest.NewAudio()
	b := digest.NewAudio()

	a.Write(audio.Event{Register: 0x01, Data: 0x42, Strobe: true})
	b.Write(audio.Event{Register: 0x01, Data: 0x42, Strobe: true})
	test.ExpectEquality(t, a.Hash(), b.Hash())

	b.Write(audio.Event{Register: 0x02, Data: 0x00})
	test.ExpectInequality(t, a.Hash(), b.Hash())
	test.ExpectEquality(t, b.Events(), 2)

	var _ audio.Sink = a
}
