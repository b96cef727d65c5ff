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
	"bufio"
	"context"
	"io"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/logger"
)

// Reader reads sectors from a Device one at a time.
type Reader struct {
	env *environment.Environment
	dev Device

	// the device is held by a sector read until the goroutine delivering the
	// bytes finishes
	sem chan struct{}
}

// NewReader is the preferred method of initialisation for the Reader type.
func NewReader(env *environment.Environment, dev Device) *Reader {
	return &Reader{
		env: env,
		dev: dev,
		sem: make(chan struct{}, 1),
	}
}

// Device returns the device being read.
func (r *Reader) Device() Device {
	return r.dev
}

// Sectors returns the number of sectors on the device.
func (r *Reader) Sectors() int {
	return r.dev.Sectors()
}

// Ready returns true if the device is idle and no sector is being read.
func (r *Reader) Ready() bool {
	if len(r.sem) > 0 {
		return false
	}
	return r.dev.Ready()
}

// timer returns a channel that fires after the duration. a zero duration
// means there is no timeout and the returned channel never fires.
func timer(d time.Duration) (<-chan time.Time, func()) {
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

// ReadSector starts reading the sector. The bytes of the sector are received
// with the Next() function of the returned Stream.
//
// If the device is still busy with an earlier sector after the sector
// timeout then an error with the DeviceTimeout pattern is returned.
func (r *Reader) ReadSector(ctx context.Context, index int) (*Stream, error) {
	if index < 0 || index >= r.dev.Sectors() {
		return nil, curated.Errorf(SectorOutOfRange, index)
	}

	timeout := r.env.Prefs.SDCard.SectorTimeout.Duration()

	expired, stop := timer(timeout)
	defer stop()

	select {
	case r.sem <- struct{}{}:
	case <-expired:
		return nil, curated.Errorf(DeviceTimeout, index)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sctx, cancel := context.WithCancel(ctx)

	s := &Stream{
		index:   index,
		timeout: timeout,
		pulse:   make(chan uint8),
		done:    make(chan struct{}),
		cancel:  cancel,
	}

	go r.deliver(sctx, s)

	return s, nil
}

// deliver runs in the block device goroutine.
func (r *Reader) deliver(ctx context.Context, s *Stream) {
	defer func() {
		<-r.sem
		close(s.done)
	}()

	rc, err := r.dev.OpenSector(ctx, s.index)
	if err != nil {
		s.err = curated.Errorf(DeviceError, s.index, err)
		logger.Log(r.env, "sdcard", s.err)
		return
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, SectorSize)
	for i := 0; i < SectorSize; i++ {
		b, err := br.ReadByte()
		if err != nil {
			if ctx.Err() == nil {
				s.err = curated.Errorf(DeviceError, s.index, err)
				logger.Log(r.env, "sdcard", s.err)
			}
			return
		}

		select {
		case s.pulse <- b:
		case <-ctx.Done():
			return
		}
	}
}

// Stream is a sector being read from the device.
type Stream struct {
	index   int
	timeout time.Duration

	// every byte of the sector is sent over the pulse channel
	pulse chan uint8

	// closed when the delivering goroutine ends. err is set before the
	// channel is closed
	done chan struct{}
	err  error

	cancel context.CancelFunc

	// number of bytes received by Next()
	consumed int
}

// Index returns the sector number of the stream.
func (s *Stream) Index() int {
	return s.index
}

// Consumed returns the number of bytes received so far.
func (s *Stream) Consumed() int {
	return s.consumed
}

// Next waits for the next byte of the sector. Returns io.EOF after the last
// byte of the sector has been received.
//
// If no byte arrives within the sector timeout the error will have the
// DeviceTimeout pattern. The Stream is of no further use after a timeout.
func (s *Stream) Next(ctx context.Context) (uint8, error) {
	if s.consumed >= SectorSize {
		return 0, io.EOF
	}

	expired, stop := timer(s.timeout)
	defer stop()

	select {
	case b := <-s.pulse:
		s.consumed++
		return b, nil
	case <-s.done:
		if s.err != nil {
			return 0, s.err
		}
		return 0, curated.Errorf(DeviceTimeout, s.index)
	case <-expired:
		s.Close()
		return 0, curated.Errorf(DeviceTimeout, s.index)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Skip receives and discards n bytes.
func (s *Stream) Skip(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if _, err := s.Next(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close abandons the stream. It is safe to call Close() on a stream that has
// already been read to the end.
func (s *Stream) Close() {
	s.cancel()
}
