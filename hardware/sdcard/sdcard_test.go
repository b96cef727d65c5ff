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

package sdcard_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
	"github.com/jetsetilly/sdcart/test"
)

func newEnvironment(t *testing.T, timeout time.Duration) *environment.Environment {
	t.Helper()
	env, err := environment.NewEnvironment("test", nil, nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, env.Prefs.SDCard.SectorTimeout.Set(timeout))
	return env
}

func testData(n int) []byte {
	d := make([]byte, n)
	for i := range d {
		d[i] = byte(i ^ (i >> 8))
	}
	return d
}

// readAll reads every byte of the sector through the stream.
func readAll(t *testing.T, r *sdcard.Reader, index int) []byte {
	t.Helper()

	s, err := r.ReadSector(context.Background(), index)
	test.DemandSuccess(t, err)
	defer s.Close()

	var b []byte
	for {
		v, err := s.Next(context.Background())
		if err == io.EOF {
			break
		}
		test.DemandSuccess(t, err)
		b = append(b, v)
	}
	test.ExpectEquality(t, s.Consumed(), sdcard.SectorSize)
	return b
}

func TestImage(t *testing.T) {
	data := testData(sdcard.SectorSize*2 + 10)
	img := sdcard.NewImage(data)
	test.ExpectEquality(t, img.Sectors(), 3)

	r := sdcard.NewReader(newEnvironment(t, time.Second), img)

	b := readAll(t, r, 1)
	test.ExpectEquality(t, string(b), string(data[sdcard.SectorSize:sdcard.SectorSize*2]))

	// the last sector is padded with zeroes
	b = readAll(t, r, 2)
	test.ExpectEquality(t, string(b[:10]), string(data[sdcard.SectorSize*2:]))
	test.ExpectEquality(t, b[10], uint8(0))
	test.ExpectEquality(t, b[sdcard.SectorSize-1], uint8(0))

	_, err := r.ReadSector(context.Background(), 3)
	test.ExpectSuccess(t, curated.Is(err, sdcard.SectorOutOfRange))
	_, err = r.ReadSector(context.Background(), -1)
	test.ExpectSuccess(t, curated.Is(err, sdcard.SectorOutOfRange))
}

func TestImageFile(t *testing.T) {
	data := testData(sdcard.SectorSize * 4)
	fn := filepath.Join(t.TempDir(), "sdcard.img")
	test.DemandSuccess(t, os.WriteFile(fn, data, 0o600))

	img, err := sdcard.OpenImage(fn)
	test.DemandSuccess(t, err)
	defer img.Close()
	test.ExpectEquality(t, img.Sectors(), 4)

	r := sdcard.NewReader(newEnvironment(t, time.Second), img)
	b := readAll(t, r, 3)
	test.ExpectEquality(t, string(b), string(data[sdcard.SectorSize*3:]))

	_, err = sdcard.OpenImage(filepath.Join(t.TempDir(), "missing.img"))
	test.ExpectFailure(t, err)
}

// stalledDevice delivers a number of bytes and then stops
type stalledDevice struct {
	after int
}

func (dev stalledDevice) Sectors() int { return 10 }
func (dev stalledDevice) Ready() bool  { return true }

func (dev stalledDevice) OpenSector(ctx context.Context, index int) (io.ReadCloser, error) {
	return &stalledReader{ctx: ctx, remaining: dev.after}, nil
}

type stalledReader struct {
	ctx       context.Context
	remaining int
}

func (r *stalledReader) Read(p []byte) (int, error) {
	if r.remaining == 0 {
		<-r.ctx.Done()
		return 0, r.ctx.Err()
	}
	if len(p) > r.remaining {
		p = p[:r.remaining]
	}
	for i := range p {
		p[i] = 0xaa
	}
	r.remaining -= len(p)
	return len(p), nil
}

func (r *stalledReader) Close() error { return nil }

func TestDeviceTimeout(t *testing.T) {
	r := sdcard.NewReader(newEnvironment(t, 20*time.Millisecond), stalledDevice{after: 3})

	s, err := r.ReadSector(context.Background(), 0)
	test.DemandSuccess(t, err)

	for i := 0; i < 3; i++ {
		v, err := s.Next(context.Background())
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, v, uint8(0xaa))
	}

	_, err = s.Next(context.Background())
	test.ExpectSuccess(t, curated.Is(err, sdcard.DeviceTimeout))
	test.ExpectEquality(t, s.Consumed(), 3)

	// the timed out stream releases the device so that the next sector can
	// be read
	s, err = r.ReadSector(context.Background(), 1)
	test.DemandSuccess(t, err)
	s.Close()
}

// the device is held until the consumer has received every byte
func TestBackpressure(t *testing.T) {
	r := sdcard.NewReader(newEnvironment(t, time.Second), sdcard.NewImage(testData(sdcard.SectorSize)))
	test.ExpectSuccess(t, r.Ready())

	s, err := r.ReadSector(context.Background(), 0)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, s.Skip(context.Background(), 100))
	test.ExpectFailure(t, r.Ready())

	test.ExpectSuccess(t, s.Skip(context.Background(), sdcard.SectorSize-100))
	_, err = s.Next(context.Background())
	test.ExpectEquality(t, err, io.EOF)

	deadline := time.Now().Add(time.Second)
	for !r.Ready() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.ExpectSuccess(t, r.Ready())
}

func TestCancel(t *testing.T) {
	r := sdcard.NewReader(newEnvironment(t, 0), stalledDevice{after: 0})

	ctx, cancel := context.WithCancel(context.Background())
	s, err := r.ReadSector(ctx, 0)
	test.DemandSuccess(t, err)

	cancel()
	_, err = s.Next(ctx)
	test.ExpectFailure(t, err)
}
