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

package psram_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/test"
)

func newEnvironment(t *testing.T) *environment.Environment {
	t.Helper()
	env, err := environment.NewEnvironment("test", nil, nil)
	test.DemandSuccess(t, err)
	return env
}

// startController runs a controller and waits for it to finish calibration.
func startController(t *testing.T, env *environment.Environment, size int) *psram.Controller {
	t.Helper()

	ctl, err := psram.NewController(env, psram.NewStore(size))
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ctl.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for ctl.State() != psram.Idle && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	test.DemandEquality(t, ctl.State(), psram.Idle)

	return ctl
}

func do(t *testing.T, ctl *psram.Controller, req psram.Request) psram.Response {
	t.Helper()
	tk, err := ctl.Issue(req)
	test.DemandSuccess(t, err)
	rsp, err := tk.Wait(context.Background())
	test.DemandSuccess(t, err)
	return rsp
}

func TestNotReady(t *testing.T) {
	env := newEnvironment(t)
	test.DemandSuccess(t, env.Prefs.Memory.CalibrationTime.Set(time.Hour))

	ctl, err := psram.NewController(env, psram.NewStore(16))
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ctl.Run(ctx)

	_, err = ctl.Issue(psram.Request{Address: 0})
	test.ExpectSuccess(t, curated.Is(err, psram.NotReady))
	test.ExpectEquality(t, ctl.State(), psram.Calibrating)
}

func TestRoundTrip(t *testing.T) {
	for _, order := range []string{"little", "inverted"} {
		env := newEnvironment(t)
		test.DemandSuccess(t, env.Prefs.Memory.LaneOrder.Set(order))
		ctl := startController(t, env, 64)

		// fill a region and check that each byte is read back unchanged. the
		// neighbouring bytes in the same word are written first so that a
		// write clobbering its neighbours would be detected
		for a := uint32(0); a < 64; a++ {
			do(t, ctl, psram.Request{Address: a, Direction: psram.Write, Data: uint8(a*3 + 1)})
		}
		for a := uint32(0); a < 64; a++ {
			rsp := do(t, ctl, psram.Request{Address: a, Direction: psram.Read})
			test.ExpectEquality(t, rsp.Data, uint8(a*3+1), order, a)
		}

		// overwrite one byte and check the rest of the word
		do(t, ctl, psram.Request{Address: 5, Direction: psram.Write, Data: 0xff})
		for a := uint32(4); a < 8; a++ {
			rsp := do(t, ctl, psram.Request{Address: a, Direction: psram.Read})
			if a == 5 {
				test.ExpectEquality(t, rsp.Data, uint8(0xff), order)
			} else {
				test.ExpectEquality(t, rsp.Data, uint8(a*3+1), order, a)
			}
		}

		reads, writes := ctl.Stats()
		test.ExpectEquality(t, reads, uint64(68))
		test.ExpectEquality(t, writes, uint64(65))
	}
}

func TestLaneMapping(t *testing.T) {
	env := newEnvironment(t)
	test.DemandSuccess(t, env.Prefs.Memory.LaneOrder.Set("inverted"))
	ctl := startController(t, env, 16)

	rsp := do(t, ctl, psram.Request{Address: 4, Direction: psram.Write, Data: 0xab})
	test.ExpectEquality(t, rsp.Word, uint32(0xab000000))
}

func TestBusy(t *testing.T) {
	env := newEnvironment(t)
	test.DemandSuccess(t, env.Prefs.Memory.LatencyTime.Set(50*time.Millisecond))
	ctl := startController(t, env, 16)

	tk, err := ctl.Issue(psram.Request{Address: 0, Direction: psram.Write, Data: 1})
	test.DemandSuccess(t, err)

	// a second request while the first is in service is rejected
	_, err = ctl.Issue(psram.Request{Address: 1, Direction: psram.Write, Data: 2})
	test.ExpectSuccess(t, curated.Is(err, psram.Busy))

	_, ok := tk.Poll()
	test.ExpectFailure(t, ok)

	_, err = tk.Wait(context.Background())
	test.ExpectSuccess(t, err)

	// the controller is idle as soon as the ticket is completed
	_, err = ctl.Issue(psram.Request{Address: 1, Direction: psram.Write, Data: 2})
	test.ExpectSuccess(t, err)
}

func TestOutOfRange(t *testing.T) {
	ctl := startController(t, newEnvironment(t), 16)
	_, err := ctl.Issue(psram.Request{Address: 16})
	test.ExpectSuccess(t, curated.Is(err, psram.OutOfRange))
}

func TestHalt(t *testing.T) {
	env := newEnvironment(t)
	ctl, err := psram.NewController(env, psram.NewStore(16))
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- ctl.Run(ctx)
	}()
	cancel()
	<-done

	test.ExpectEquality(t, ctl.State(), psram.Halted)
	_, err = ctl.Issue(psram.Request{Address: 0})
	test.ExpectSuccess(t, curated.Is(err, psram.Stopped))
}

// every ticket that is issued is completed, even when the controller halts
// while requests are being issued.
func TestHaltWhileIssuing(t *testing.T) {
	for n := 0; n < 50; n++ {
		env := newEnvironment(t)
		test.DemandSuccess(t, env.Prefs.Memory.CalibrationTime.Set(time.Duration(0)))

		ctl, err := psram.NewController(env, psram.NewStore(16))
		test.DemandSuccess(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- ctl.Run(ctx)
		}()
		<-ctl.Calibrated()

		issued := make(chan []*psram.Ticket)
		go func() {
			var tickets []*psram.Ticket
			for {
				tk, err := ctl.Issue(psram.Request{Address: 1})
				if curated.Is(err, psram.Stopped) {
					issued <- tickets
					return
				}
				if err == nil {
					tickets = append(tickets, tk)
				}
			}
		}()

		time.Sleep(time.Millisecond)
		cancel()
		<-done

		for _, tk := range <-issued {
			select {
			case <-tk.Done():
			case <-time.After(time.Second):
				t.Fatalf("ticket for %s never completed", tk.Request)
			}
		}
	}
}
