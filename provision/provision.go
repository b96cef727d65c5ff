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
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/sdcart/archivefs"
	"github.com/jetsetilly/sdcart/cartridgeloader"
	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/preferences"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
)

// Sentinal error patterns.
const (
	TooLarge   = "provision: image too large for slot (%d bytes, maximum %d)"
	NotAnImage = "provision: not a game image (%s)"
	NoImages   = "provision: no game images"
)

// the header version written by Wrap()
const wrapVersion = 3

// Layout describes where slots are on the SD card.
type Layout struct {
	FirstSector int
	SlotSectors int
	Signature   string
}

// NewLayout creates a Layout from the current preference values.
func NewLayout(prefs *preferences.Preferences) Layout {
	return Layout{
		FirstSector: prefs.Loader.FirstSector.Int(),
		SlotSectors: prefs.Loader.SlotSectors.Int(),
		Signature:   prefs.Loader.Signature.String(),
	}
}

func (l Layout) String() string {
	return fmt.Sprintf("first sector %d, %d sectors per slot", l.FirstSector, l.SlotSectors)
}

// SlotSector returns the first sector of the slot.
func (l Layout) SlotSector(slot int) int {
	return l.FirstSector + slot*l.SlotSectors
}

// MaxImage returns the largest image, including the header, that will fit in
// a slot.
func (l Layout) MaxImage() int {
	return l.SlotSectors * sdcard.SectorSize
}

// Wrap creates a game image from a raw binary by adding a header.
func Wrap(signature string, title string, data []byte) []byte {
	hdr := imageheader.Header{
		Version:    wrapVersion,
		Signature:  signature,
		Title:      title,
		PayloadLen: len(data),
	}
	return append(hdr.Build(), data...)
}

// Title returns a title for a game image based on its filename.
func Title(filename string) string {
	_, inner := archivefs.Split(filename)
	if inner != "" {
		filename = inner
	}
	filename = filepath.Base(filepath.FromSlash(filename))
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// ReadGame reads a game image from a file, which may be inside an archive.
// Files without a header are wrapped.
func ReadGame(l Layout, filename string) ([]byte, error) {
	if !cartridgeloader.IsImageFile(filename) {
		return nil, curated.Errorf(NotAnImage, filename)
	}

	data, err := archivefs.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	if !cartridgeloader.HasHeader(filename) {
		data = Wrap(l.Signature, Title(filename), data)
	}

	return data, nil
}

// Expand replaces any archive in the list of filenames with the game images
// it contains.
func Expand(filenames []string) ([]string, error) {
	var games []string

	for _, fn := range filenames {
		if !archivefs.IsArchive(fn) {
			games = append(games, fn)
			continue
		}

		ent, err := archivefs.List(fn)
		if err != nil {
			return nil, err
		}
		for _, e := range ent {
			if cartridgeloader.IsImageFile(e.Name) {
				games = append(games, filepath.Join(fn, filepath.FromSlash(e.Name)))
			}
		}
	}

	if len(games) == 0 {
		return nil, curated.Errorf(NoImages)
	}

	return games, nil
}

// WriteImage writes the game image to the slot. The last sector is padded
// with zeroes.
func WriteImage(w io.WriterAt, l Layout, slot int, data []byte) error {
	if len(data) > l.MaxImage() {
		return curated.Errorf(TooLarge, len(data), l.MaxImage())
	}

	padded := len(data)
	if r := padded % sdcard.SectorSize; r != 0 {
		padded += sdcard.SectorSize - r
	}

	b := make([]byte, padded)
	copy(b, data)

	_, err := w.WriteAt(b, int64(l.SlotSector(slot))*sdcard.SectorSize)
	if err != nil {
		return fmt.Errorf("provision: %w", err)
	}

	return nil
}

// BuildImage writes each game to consecutive slots, starting with slot
// zero. The reserved sectors before the first slot are cleared.
func BuildImage(w io.WriterAt, l Layout, filenames []string) error {
	if l.FirstSector > 0 {
		_, err := w.WriteAt(make([]byte, l.FirstSector*sdcard.SectorSize), 0)
		if err != nil {
			return fmt.Errorf("provision: %w", err)
		}
	}

	for slot, fn := range filenames {
		data, err := ReadGame(l, fn)
		if err != nil {
			return err
		}
		if err := WriteImage(w, l, slot, data); err != nil {
			return curated.Errorf("provision: %s: %v", fn, err)
		}
	}

	return nil
}
