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

package sdcard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// readSector reads a sector from a random access source. The final sector of
// a source that is not a multiple of SectorSize in length is padded with
// zeroes.
func readSector(r io.ReaderAt, index int) (io.ReadCloser, error) {
	buf := make([]byte, SectorSize)
	_, err := r.ReadAt(buf, int64(index)*SectorSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

// sectorCount returns the number of sectors required for size bytes.
func sectorCount(size int64) int {
	return int((size + SectorSize - 1) / SectorSize)
}

// Image is an SD card held entirely in memory.
type Image struct {
	data *bytes.Reader
}

// NewImage creates a Device from a slice of bytes. The slice should not be
// modified while the Image is in use.
func NewImage(data []byte) *Image {
	return &Image{data: bytes.NewReader(data)}
}

func (img *Image) String() string {
	return fmt.Sprintf("memory image (%d sectors)", img.Sectors())
}

// Sectors implements the Device interface.
func (img *Image) Sectors() int {
	return sectorCount(img.data.Size())
}

// Ready implements the Device interface. An Image is always ready.
func (img *Image) Ready() bool {
	return true
}

// OpenSector implements the Device interface.
func (img *Image) OpenSector(_ context.Context, index int) (io.ReadCloser, error) {
	return readSector(img.data, index)
}

// ImageFile is an SD card image stored in a file. The file is a raw copy of
// the card, sector zero first.
type ImageFile struct {
	filename string
	f        *os.File
	sectors  int
}

// OpenImage opens the file as a Device. The file should be closed with the
// Close() function when it is no longer required.
func OpenImage(filename string) (*ImageFile, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("sdcard: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sdcard: %w", err)
	}

	return &ImageFile{
		filename: filename,
		f:        f,
		sectors:  sectorCount(info.Size()),
	}, nil
}

func (img *ImageFile) String() string {
	return fmt.Sprintf("%s (%d sectors)", img.filename, img.sectors)
}

// Close the underlying file.
func (img *ImageFile) Close() error {
	return img.f.Close()
}

// Sectors implements the Device interface.
func (img *ImageFile) Sectors() int {
	return img.sectors
}

// Ready implements the Device interface. An ImageFile is always ready.
func (img *ImageFile) Ready() bool {
	return true
}

// OpenSector implements the Device interface.
func (img *ImageFile) OpenSector(_ context.Context, index int) (io.ReadCloser, error) {
	return readSector(img.f, index)
}
