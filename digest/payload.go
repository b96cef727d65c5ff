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

package digest

import (
	"fmt"
	"hash"

	"github.com/cespare/xxhash"
)

// Payload computes the checksum and the fingerprint of a game image payload.
//
// The checksum is the sum of every byte modulo 2^32. This is the value
// compared by the verification sweep. The fingerprint is an xxhash of the
// bytes and is used to identify images.
type Payload struct {
	sum  uint32
	len  int
	hash hash.Hash64
}

// NewPayload is the preferred method of initialisation for the Payload type.
func NewPayload() *Payload {
	return &Payload{
		hash: xxhash.New(),
	}
}

func (dig *Payload) String() string {
	return fmt.Sprintf("%d bytes sum=%#08x fingerprint=%s", dig.len, dig.sum, dig.Hash())
}

// WriteByte adds one byte to the digest. It never returns an error.
func (dig *Payload) WriteByte(b byte) error {
	dig.sum += uint32(b)
	dig.len++
	dig.hash.Write([]byte{b})
	return nil
}

// Write adds the bytes to the digest. It implements the io.Writer interface
// and never returns an error.
func (dig *Payload) Write(p []byte) (int, error) {
	for _, b := range p {
		dig.sum += uint32(b)
	}
	dig.len += len(p)
	dig.hash.Write(p)
	return len(p), nil
}

// Sum32 returns the running checksum.
func (dig *Payload) Sum32() uint32 {
	return dig.sum
}

// Len returns the number of bytes in the digest.
func (dig *Payload) Len() int {
	return dig.len
}

// Fingerprint returns the xxhash of the bytes so far.
func (dig *Payload) Fingerprint() uint64 {
	return dig.hash.Sum64()
}

// Hash implements the Digest interface.
func (dig *Payload) Hash() string {
	return fmt.Sprintf("%016x", dig.hash.Sum64())
}

// ResetDigest implements the Digest interface.
func (dig *Payload) ResetDigest() {
	dig.sum = 0
	dig.len = 0
	dig.hash.Reset()
}

// Sum32 returns the checksum of the data. The same value as a Payload digest
// that has had all the data written to it.
func Sum32(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return sum
}

// Fingerprint returns the xxhash of the data.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}
