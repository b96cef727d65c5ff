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
	"context"
	"io"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
)

// source presents a range of sectors as a sequence of bytes.
type source struct {
	ld *Loader

	sector int
	limit  int
	stream *sdcard.Stream

	// bytes to skip when the sector is next opened. used when a sector is
	// retried
	skip int

	// while streaming a sector that times out is retried. otherwise it is
	// skipped
	streaming bool
	retries   int

	// bytes were lost because a sector was skipped
	discontinuity bool
}

func newSource(ld *Loader, first int, limit int) *source {
	return &source{
		ld:      ld,
		sector:  first,
		limit:   limit,
		retries: ld.env.Prefs.Loader.SectorRetries.Int(),
	}
}

// errEnd is returned by next() when there are no more sectors in range.
var errEnd = io.EOF

func (src *source) close() {
	if src.stream != nil {
		src.stream.Close()
		src.stream = nil
	}
}

// position of the byte most recently returned by next().
func (src *source) position() position {
	if src.stream == nil {
		return position{sector: src.sector}
	}
	return position{sector: src.sector, offset: src.stream.Consumed() - 1}
}

func (src *source) next(ctx context.Context) (uint8, error) {
	for {
		if src.sector >= src.limit {
			return 0, errEnd
		}

		if src.stream == nil {
			src.ld.seek(src.sector)

			s, err := src.ld.reader.ReadSector(ctx, src.sector)
			if err == nil && src.skip > 0 {
				err = s.Skip(ctx, src.skip)
				if err != nil {
					s.Close()
				}
			}

			if err != nil {
				if err := src.fault(err, src.skip); err != nil {
					return 0, err
				}
				continue // for loop
			}

			src.skip = 0
			src.stream = s
		}

		b, err := src.stream.Next(ctx)
		if err == nil {
			return b, nil
		}

		if err == io.EOF {
			src.close()
			src.sector++
			src.retries = src.ld.env.Prefs.Loader.SectorRetries.Int()
			continue // for loop
		}

		consumed := src.stream.Consumed()
		src.close()
		if err := src.fault(err, consumed); err != nil {
			return 0, err
		}
	}
}

// fault decides what happens after a device error. returns nil if reading
// can continue.
func (src *source) fault(err error, consumed int) error {
	if !curated.Is(err, sdcard.DeviceTimeout) {
		return err
	}

	src.ld.timedOut(err)

	if !src.streaming {
		src.sector++
		src.skip = 0
		src.discontinuity = true
		return nil
	}

	if src.retries <= 0 {
		return err
	}
	src.retries--
	src.skip = consumed

	return nil
}
