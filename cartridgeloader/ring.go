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

// position of a byte on the device
type position struct {
	sector int
	offset int
}

type entry struct {
	b   uint8
	pos position
}

// ring keeps the most recent bytes read during the scan.
type ring struct {
	buf   []entry
	next  int
	count int
}

func newRing(n int) *ring {
	return &ring{buf: make([]entry, n)}
}

func (r *ring) push(b uint8, pos position) {
	r.buf[r.next] = entry{b: b, pos: pos}
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) reset() {
	r.next = 0
	r.count = 0
}

func (r *ring) full() bool {
	return r.count == len(r.buf)
}

// at returns the entry at index i, counting from the oldest entry. only
// valid if the ring is full.
func (r *ring) at(i int) entry {
	return r.buf[(r.next+i)%len(r.buf)]
}

// matches returns true if the ring is full and the signature is found at
// the offset.
func (r *ring) matches(signature string, offset int) bool {
	if !r.full() {
		return false
	}
	for i := 0; i < len(signature); i++ {
		if r.at(offset+i).b != signature[i] {
			return false
		}
	}
	return true
}

// bytes returns the contents of the ring, oldest first.
func (r *ring) bytes() []byte {
	b := make([]byte, 0, r.count)
	start := 0
	if r.full() {
		start = r.next
	}
	for i := 0; i < r.count; i++ {
		b = append(b, r.buf[(start+i)%len(r.buf)].b)
	}
	return b
}
