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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/digest"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
	"github.com/jetsetilly/sdcart/logger"
	"github.com/jetsetilly/sdcart/notifications"
)

// Sentinal error patterns.
const (
	NotReady          = "cartridgeloader: device not ready"
	SignatureNotFound = "cartridgeloader: signature not found (%v)"
	HeaderInvalid     = "cartridgeloader: header invalid: %v"
	TooLarge          = "cartridgeloader: payload too large for store (%d bytes)"
	Truncated         = "cartridgeloader: payload truncated (%d of %d bytes)"
	InProgress        = "cartridgeloader: load already in progress"
)

const logTag = "loader"

// interval between checks of the device ready indicator
const readyPoll = time.Millisecond

// Writer is the interface to the backing store used by the loader. It is
// satisfied by the request bridge.
type Writer interface {
	Do(context.Context, psram.Request) (psram.Response, error)
}

// Status is a snapshot of the loader.
type Status struct {
	State State
	Slot  int

	// the sector currently being read
	Sector int

	// position of the start of the header. only valid once the signature
	// has been found
	FoundSector int
	FoundOffset int

	// number of payload bytes written to the backing store, the running
	// checksum of those bytes and the most recent byte
	Written  int
	Checksum uint32
	LastByte uint8

	// number of sector timeouts seen during the load
	Timeouts int

	// the error that stopped the load. only valid in the Error state
	Err error

	// the header of the image. nil until the header has been verified
	Header *imageheader.Header

	// xxhash of the payload. only valid in the Complete state
	Fingerprint uint64
}

func (s Status) String() string {
	switch s.State {
	case Complete:
		return fmt.Sprintf("%s: slot %d: %d bytes (sum %#08x)", s.State, s.Slot, s.Written, s.Checksum)
	case Error:
		return fmt.Sprintf("%s: slot %d: %v", s.State, s.Slot, s.Err)
	case Stream:
		return fmt.Sprintf("%s: slot %d: sector %d: %d bytes", s.State, s.Slot, s.Sector, s.Written)
	}
	return fmt.Sprintf("%s: slot %d: sector %d", s.State, s.Slot, s.Sector)
}

// Loader streams game images from the SD card to the backing store.
type Loader struct {
	env    *environment.Environment
	reader *sdcard.Reader
	writer Writer

	// the size of the backing store
	storeSize int

	running atomic.Bool

	crit   sync.Mutex
	status Status
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(env *environment.Environment, reader *sdcard.Reader, writer Writer, storeSize int) *Loader {
	return &Loader{
		env:       env,
		reader:    reader,
		writer:    writer,
		storeSize: storeSize,
	}
}

// Status returns a snapshot of the loader.
func (ld *Loader) Status() Status {
	ld.crit.Lock()
	defer ld.crit.Unlock()
	return ld.status
}

func (ld *Loader) setState(s State) {
	ld.crit.Lock()
	defer ld.crit.Unlock()
	ld.status.State = s
}

func (ld *Loader) seek(sector int) {
	ld.crit.Lock()
	defer ld.crit.Unlock()
	ld.status.Sector = sector
	switch ld.status.State {
	case Seek, Scan:
		ld.status.State = ReadSector
	}
}

func (ld *Loader) timedOut(err error) {
	ld.crit.Lock()
	ld.status.Timeouts++
	ld.crit.Unlock()
	logger.Log(ld.env, logTag, err)
}

func (ld *Loader) fail(err error) error {
	ld.crit.Lock()
	ld.status.State = Error
	ld.status.Err = err
	ld.crit.Unlock()

	logger.Log(ld.env, logTag, err)
	ld.env.Notify(notifications.NotifyLoadFailed)

	return err
}

// Load the image described by the request. Load() blocks until the image has
// been completely written to the backing store or until an error occurs.
// It should be run in its own goroutine.
//
// Only one load can run at once. An error with the InProgress pattern is
// returned if Load() is called while another load is running.
func (ld *Loader) Load(ctx context.Context, req Request) (imageheader.Header, error) {
	if !ld.running.CompareAndSwap(false, true) {
		return imageheader.Header{}, curated.Errorf(InProgress)
	}
	defer ld.running.Store(false)

	ld.crit.Lock()
	ld.status = Status{
		State:       Idle,
		Slot:        req.Slot,
		Sector:      req.FirstSector,
		FoundSector: -1,
	}
	ld.crit.Unlock()

	if err := req.validate(); err != nil {
		return imageheader.Header{}, ld.fail(err)
	}

	logger.Logf(ld.env, logTag, "starting: %s", req)
	ld.env.Notify(notifications.NotifyLoadStarted)

	if err := ld.awaitReady(ctx); err != nil {
		return imageheader.Header{}, ld.fail(err)
	}

	src := newSource(ld, req.FirstSector, min(req.FirstSector+req.ScanWindow, ld.reader.Sectors()))
	defer src.close()

	hdr, err := ld.scan(ctx, req, src)
	if err != nil {
		return imageheader.Header{}, ld.fail(err)
	}

	dig, err := ld.stream(ctx, req, hdr, src)
	if err != nil {
		return imageheader.Header{}, ld.fail(err)
	}

	ld.crit.Lock()
	ld.status.State = Complete
	ld.status.Fingerprint = dig.Fingerprint()
	ld.crit.Unlock()

	logger.Logf(ld.env, logTag, "complete: %s: %s", hdr, dig)
	ld.env.Notify(notifications.NotifyLoadComplete)

	return hdr, nil
}

func (ld *Loader) awaitReady(ctx context.Context) error {
	ld.setState(AwaitReady)

	if ld.reader.Ready() {
		return nil
	}

	timeout := ld.env.Prefs.SDCard.ReadyTimeout.Duration()
	deadline := time.Now().Add(timeout)

	tick := time.NewTicker(readyPoll)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			if ld.reader.Ready() {
				return nil
			}
			if timeout > 0 && time.Now().After(deadline) {
				return curated.Errorf(NotReady)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// scan for the signature and return the parsed header. the source is left
// at the first byte of the payload.
func (ld *Loader) scan(ctx context.Context, req Request, src *source) (imageheader.Header, error) {
	ld.setState(Seek)

	hist := newRing(req.leadIn())

	for {
		b, err := src.next(ctx)
		if err != nil {
			if err == errEnd {
				return imageheader.Header{}, curated.Errorf(SignatureNotFound, req)
			}
			return imageheader.Header{}, err
		}

		if src.discontinuity {
			src.discontinuity = false
			hist.reset()
		}

		hist.push(b, src.position())

		ld.crit.Lock()
		ld.status.State = Scan
		ld.crit.Unlock()

		if hist.matches(req.Signature, req.SignatureOffset) {
			start := hist.at(0).pos
			ld.crit.Lock()
			ld.status.State = Found
			ld.status.FoundSector = start.sector
			ld.status.FoundOffset = start.offset
			ld.crit.Unlock()
			logger.Logf(ld.env, logTag, "signature found: sector %d offset %d", start.sector, start.offset)
			break // for loop
		}
	}

	ld.setState(VerifyHeader)

	// the rest of the image may extend beyond the scan window
	src.limit = ld.reader.Sectors()
	src.streaming = true

	b := hist.bytes()
	for len(b) < req.HeaderLen {
		v, err := src.next(ctx)
		if err != nil {
			if err == errEnd {
				return imageheader.Header{}, curated.Errorf(HeaderInvalid, curated.Errorf(imageheader.TooShort, len(b)))
			}
			return imageheader.Header{}, err
		}
		b = append(b, v)
	}

	hdr, err := imageheader.Parse(b, req.Signature, req.PayloadLen)
	if err != nil {
		return imageheader.Header{}, curated.Errorf(HeaderInvalid, err)
	}

	if hdr.PayloadLen <= 0 || int(req.Base)+hdr.PayloadLen > ld.storeSize {
		return imageheader.Header{}, curated.Errorf(HeaderInvalid, curated.Errorf(TooLarge, hdr.PayloadLen))
	}

	ld.crit.Lock()
	ld.status.Header = &hdr
	ld.crit.Unlock()

	return hdr, nil
}

// stream the payload to the backing store.
func (ld *Loader) stream(ctx context.Context, req Request, hdr imageheader.Header, src *source) (*digest.Payload, error) {
	ld.setState(Stream)

	dig := digest.NewPayload()

	for i := 0; i < hdr.PayloadLen; i++ {
		b, err := src.next(ctx)
		if err != nil {
			if err == errEnd {
				return nil, curated.Errorf(Truncated, i, hdr.PayloadLen)
			}
			return nil, err
		}

		// the byte is not consumed until the write has completed
		_, err = ld.writer.Do(ctx, psram.Request{
			Address:   req.Base + uint32(i),
			Direction: psram.Write,
			Data:      b,
		})
		if err != nil {
			return nil, err
		}

		dig.WriteByte(b)

		ld.crit.Lock()
		ld.status.Sector = src.sector
		ld.status.Written = dig.Len()
		ld.status.Checksum = dig.Sum32()
		ld.status.LastByte = b
		ld.crit.Unlock()
	}

	return dig, nil
}
