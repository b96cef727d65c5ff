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

// Package imageheader parses and builds the fixed length record that
// precedes every game image on the SD card.
//
// The record is 128 bytes long. All multi-byte fields are little-endian.
//
//	offset  size  field
//	0x00    1     version
//	0x01    11    signature
//	0x11    32    title, padded with NUL or space
//	0x31    4     payload size. zero means the default size
//	0x35    2     mapper flags
//	0x37    1     controller 1
//	0x38    1     controller 2
//	0x39    1     TV type
//	0x3a    1     save device
//	0x3b    2     audio chip base. zero means none
package imageheader

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/jetsetilly/sdcart/curated"
)

// Len is the length of the header in bytes.
const Len = 128

// Sentinal error patterns.
const (
	TooShort          = "imageheader: too short (%d bytes)"
	SignatureMismatch = "imageheader: signature mismatch (%q)"
	BadTVType         = "imageheader: unknown TV type (%d)"
)

const (
	offVersion     = 0x00
	offSignature   = 0x01
	lenSignature   = 11
	offTitle       = 0x11
	lenTitle       = 32
	offPayloadLen  = 0x31
	offMapper      = 0x35
	offController1 = 0x37
	offController2 = 0x38
	offTV          = 0x39
	offSaveDevice  = 0x3a
	offAudioBase   = 0x3b
)

// MapperPokey4000 is set in the mapper flags if the image expects a POKEY
// chip at $4000.
const MapperPokey4000 = 0x0001

// the address of the audio chip if MapperPokey4000 is set but no base is
// given.
const pokey4000 = 0x4000

// TVType indicates the television standard the game was written for.
type TVType uint8

// List of valid TVType values.
const (
	NTSC TVType = iota
	PAL
)

func (tv TVType) String() string {
	switch tv {
	case NTSC:
		return "NTSC"
	case PAL:
		return "PAL"
	}
	return "unknown"
}

// Header is the parsed form of the record. It should be treated as immutable
// once parsed.
type Header struct {
	Version   uint8
	Signature string
	Title     string

	// size of the payload. zero in the record means the default payload size
	// and will have been replaced by that value during parsing
	PayloadLen int

	Mapper     uint16
	Controller [2]uint8
	TV         TVType
	SaveDevice uint8

	// base address of the audio chip register window. zero if the image does
	// not use one
	AudioBase uint16
}

func (h Header) String() string {
	title := h.Title
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("%s (%d bytes, %s)", title, h.PayloadLen, h.TV)
}

// AudioWindow returns the base of the audio register window and whether the
// image uses one.
func (h Header) AudioWindow() (uint16, bool) {
	if h.AudioBase != 0 {
		return h.AudioBase, true
	}
	if h.Mapper&MapperPokey4000 == MapperPokey4000 {
		return pokey4000, true
	}
	return 0, false
}

// Parse the record. The signature in the record must be the same as the
// signature argument, ignoring any trailing padding in the record. A payload
// size of zero is replaced by defaultPayload.
func Parse(b []byte, signature string, defaultPayload int) (Header, error) {
	if len(b) < Len {
		return Header{}, curated.Errorf(TooShort, len(b))
	}

	var h Header

	h.Version = b[offVersion]

	sig := b[offSignature : offSignature+lenSignature]
	if !strings.HasPrefix(string(sig), signature) {
		return Header{}, curated.Errorf(SignatureMismatch, string(sig))
	}
	h.Signature = signature

	h.Title = strings.TrimRight(string(b[offTitle:offTitle+lenTitle]), "\x00 ")

	h.PayloadLen = int(binary.LittleEndian.Uint32(b[offPayloadLen:]))
	if h.PayloadLen == 0 {
		h.PayloadLen = defaultPayload
	}

	h.Mapper = binary.LittleEndian.Uint16(b[offMapper:])
	h.Controller[0] = b[offController1]
	h.Controller[1] = b[offController2]

	h.TV = TVType(b[offTV])
	if h.TV != NTSC && h.TV != PAL {
		return Header{}, curated.Errorf(BadTVType, b[offTV])
	}

	h.SaveDevice = b[offSaveDevice]
	h.AudioBase = binary.LittleEndian.Uint16(b[offAudioBase:])

	return h, nil
}

// Build the record for the header. The title is truncated and padded with
// spaces. The payload size is written as it is, so a zero value will be
// interpreted as the default size when parsed.
func (h Header) Build() []byte {
	b := make([]byte, Len)

	b[offVersion] = h.Version

	sig := []byte(fmt.Sprintf("%-*s", lenSignature, h.Signature))
	copy(b[offSignature:offSignature+lenSignature], sig)

	title := []byte(fmt.Sprintf("%-*s", lenTitle, h.Title))
	copy(b[offTitle:offTitle+lenTitle], title)

	binary.LittleEndian.PutUint32(b[offPayloadLen:], uint32(h.PayloadLen))
	binary.LittleEndian.PutUint16(b[offMapper:], h.Mapper)
	b[offController1] = h.Controller[0]
	b[offController2] = h.Controller[1]
	b[offTV] = uint8(h.TV)
	b[offSaveDevice] = h.SaveDevice
	binary.LittleEndian.PutUint16(b[offAudioBase:], h.AudioBase)

	return b
}
