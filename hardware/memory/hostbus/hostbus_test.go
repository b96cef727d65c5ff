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

package hostbus_test

import (
	"context"
	"testing"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/hardware/memory/bridge"
	"github.com/jetsetilly/sdcart/hardware/memory/hostbus"
	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/hardware/session"
	"github.com/jetsetilly/sdcart/test"
)

// control records the commands and commits the session.
type control struct {
	sess    *session.Session
	commits []int
	reloads []int
	flips   int
}

func (c *control) Commit(index int) {
	c.commits = append(c.commits, index)
	if c.sess.Commit() {
		c.flips++
	}
}

func (c *control) Reload(slot int) {
	c.reloads = append(c.reloads, slot)
}

func (c *control) ControlStatus() uint8 {
	return hostbus.StatusRegister(c.sess.Mode() == session.Loaded, c.sess.Eligible(), c.sess.Failed(), 3)
}

type fixture struct {
	env  *environment.Environment
	sess *session.Session
	br   *bridge.Bridge
	ctl  *control
	snd  *audio.Recorder
	srv  *hostbus.Server
}

func newFixture(t *testing.T, resident []byte) *fixture {
	t.Helper()

	env, err := environment.NewEnvironment("test", nil, nil)
	test.DemandSuccess(t, err)

	store, err := psram.NewController(env, psram.NewStore(0x10000))
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go store.Run(ctx)

	f := &fixture{
		env:  env,
		sess: session.NewSession(0),
		br:   bridge.NewBridge(env, store),
		snd:  &audio.Recorder{},
	}
	f.ctl = &control{sess: f.sess}
	f.srv = hostbus.NewServer(env, f.sess, f.br, f.ctl, f.snd, resident)

	return f
}

func TestResident(t *testing.T) {
	resident := make([]byte, 256)
	for i := range resident {
		resident[i] = uint8(i)
	}
	f := newFixture(t, resident)
	ctx := context.Background()

	d, err := f.srv.Read(ctx, 0xff00)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0))

	d, err = f.srv.Read(ctx, 0xffff)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0xff))

	_, err = f.srv.Read(ctx, 0x8000)
	test.ExpectSuccess(t, curated.Is(err, hostbus.NotDriven))
}

func TestDirectionLatch(t *testing.T) {
	f := newFixture(t, make([]byte, 256))
	ctx := context.Background()

	// the bus is not driven on the tick that the direction changes
	f.srv.Tick(ctx, hostbus.Cycle{Address: 0xff00, Phi2: true})
	d := f.srv.Tick(ctx, hostbus.Cycle{Address: 0xff00, Read: true, Phi2: true})
	test.ExpectFailure(t, d.Enabled)

	d = f.srv.Tick(ctx, hostbus.Cycle{Address: 0xff00, Read: true, Phi2: true})
	test.ExpectSuccess(t, d.Enabled)

	// or when phi2 is low
	d = f.srv.Tick(ctx, hostbus.Cycle{Address: 0xff00, Read: true})
	test.ExpectFailure(t, d.Enabled)

	// or when writing
	d = f.srv.Tick(ctx, hostbus.Cycle{Address: 0xff00, Phi2: true})
	test.ExpectFailure(t, d.Enabled)
}

func TestStatusRegister(t *testing.T) {
	test.ExpectEquality(t, hostbus.StatusRegister(true, true, false, 8), uint8(0xc8))
	test.ExpectEquality(t, hostbus.StatusRegister(false, false, true, 9), uint8(0x29))

	f := newFixture(t, nil)
	d, err := f.srv.Read(context.Background(), 0x3f00)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x03))
}

func TestCommit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// a write is accepted once for the phi2 high phase
	f.srv.Tick(ctx, hostbus.Cycle{Address: 0x3f00, Data: 0x82})
	f.srv.Tick(ctx, hostbus.Cycle{Address: 0x3f00, Data: 0x82, Phi2: true})
	f.srv.Tick(ctx, hostbus.Cycle{Address: 0x3f00, Data: 0x82, Phi2: true})
	test.ExpectEquality(t, len(f.ctl.commits), 1)
	test.ExpectEquality(t, f.ctl.commits[0], 2)

	// the load has not completed so the commit is pending
	test.ExpectEquality(t, f.sess.Mode(), session.Resident)
	test.ExpectSuccess(t, f.sess.Pending())

	f.sess.Complete(imageheader.Header{PayloadLen: 49152})
	test.ExpectEquality(t, f.sess.Mode(), session.Loaded)

	// further commits change nothing
	f.srv.Write(ctx, 0x3f00, 0x80)
	f.srv.Write(ctx, 0x3f00, 0x80)
	test.ExpectEquality(t, len(f.ctl.commits), 3)
	test.ExpectEquality(t, f.ctl.flips, 0)
	test.ExpectEquality(t, f.sess.Mode(), session.Loaded)

	d, err := f.srv.Read(ctx, 0x3f00)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d&hostbus.StatusLoaded, hostbus.StatusLoaded)
}

func TestReload(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.srv.Write(ctx, 0x3f00, 0x41)
	test.ExpectEquality(t, len(f.ctl.reloads), 0)

	test.DemandSuccess(t, f.env.Prefs.Diagnostics.Set(true))
	f.srv.Write(ctx, 0x3f00, 0x41)
	test.DemandEquality(t, len(f.ctl.reloads), 1)
	test.ExpectEquality(t, f.ctl.reloads[0], 1)
}

func TestAudio(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// resident audio window
	f.srv.Write(ctx, 0x0455, 0x12)
	f.srv.Write(ctx, 0x0460, 0x34)

	ev := f.snd.Events()
	test.DemandEquality(t, len(ev), 1)
	test.ExpectEquality(t, ev[0], audio.Event{Register: 5, Data: 0x12, Strobe: true})

	// the loaded image uses the audio window given by the header
	f.snd.Clear()
	f.sess.Complete(imageheader.Header{PayloadLen: 49152, Mapper: imageheader.MapperPokey4000})
	f.sess.Commit()

	f.srv.Write(ctx, 0x0455, 0x12)
	f.srv.Write(ctx, 0x400f, 0x56)

	ev = f.snd.Events()
	test.DemandEquality(t, len(ev), 1)
	test.ExpectEquality(t, ev[0], audio.Event{Register: 0x0f, Data: 0x56, Strobe: true})
}

func TestLoaded(t *testing.T) {
	f := newFixture(t, make([]byte, 256))
	ctx := context.Background()
	test.DemandSuccess(t, f.env.Prefs.Memory.LoadedBase.Set(0x100))

	for i, v := range []uint8{0xa9, 0x01, 0x85} {
		_, err := f.br.Do(ctx, psram.Request{Address: 0x100 + uint32(i), Direction: psram.Write, Data: v})
		test.DemandSuccess(t, err)
	}

	// resident image is served until the mode flips
	_, err := f.srv.Read(ctx, 0x4000)
	test.ExpectSuccess(t, curated.Is(err, hostbus.NotDriven))

	f.sess.Complete(imageheader.Header{PayloadLen: 49152})
	f.srv.Write(ctx, 0x3f00, 0x80)
	test.DemandEquality(t, f.sess.Mode(), session.Loaded)

	for i, v := range []uint8{0xa9, 0x01, 0x85} {
		d, err := f.srv.Read(ctx, 0x4000+uint16(i))
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, d, v)
	}

	// the address change on the first tick of each read starts a prefetch
	test.ExpectInequality(t, f.br.Stats().PrefetchHits, uint64(0))

	// the resident image is no longer served
	_, err = f.srv.Read(ctx, 0x3eff)
	test.ExpectSuccess(t, curated.Is(err, hostbus.NotDriven))
}
