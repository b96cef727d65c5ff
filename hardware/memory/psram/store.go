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

package psram

import "fmt"

// Store is the memory of the backing store. It is not safe for concurrent
// use. The Controller is the only user of the Store once it is running.
type Store struct {
	words []uint32
}

// NewStore allocates a store of at least size bytes. The size is rounded up
// to a whole number of words.
func NewStore(size int) *Store {
	return &Store{
		words: make([]uint32, (size+LanesPerWord-1)/LanesPerWord),
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("%d words (%d bytes)", len(s.words), s.Size())
}

// Size returns the number of bytes in the store.
func (s *Store) Size() int {
	return len(s.words) * LanesPerWord
}

// Words returns the number of words in the store.
func (s *Store) Words() int {
	return len(s.words)
}

// Word returns the word at the index.
func (s *Store) Word(index int) uint32 {
	return s.words[index]
}

// WriteMasked writes the bits of word selected by the mask. Bits outside the
// mask are unchanged.
func (s *Store) WriteMasked(index int, word uint32, mask uint32) {
	s.words[index] = (s.words[index] &^ mask) | (word & mask)
}

// Clear sets every word in the store to zero.
func (s *Store) Clear() {
	clear(s.words)
}
