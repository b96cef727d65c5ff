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

package bridge_test

import (
	"context"
	"testing"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/memory/bridge"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/test"
)

func newBridge(t *testing.T, configure func(env *environment.Environment)) (*bridge.Bridge, *psram.Controller) {
	t.Helper()

	env, err := environment.NewEnvironment("test", nil, nil)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, env.Prefs.Memory.CalibrationTime.Set(time.Duration(0)))
	if configure != nil {
		configure(env)
	}

	ctl, err := psram.NewController(env, psram.NewStore(256))
	test.DemandSuccess(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go ctl.Run(ctx)

	return bridge.NewBridge(env, ctl), ctl
}

func TestDo(t *testing.T) {
	br, _ := newBridge(t, nil)
	ctx := context.Background()

	_, err := br.Do(ctx, psram.Request{Address: 10, Direction: psram.Write, Data: 0x5a})
	test.ExpectSuccess(t, err)

	rsp, err := br.Do(ctx, psram.Request{Address: 10, Direction: psram.Read})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, rsp.Data, uint8(0x5a))
	test.ExpectFailure(t, br.Busy())
	test.ExpectEquality(t, br.Stats().Submits, uint64(2))
}

func TestSingleFlight(t *testing.T) {
	br, _ := newBridge(t, func(env *environment.Environment) {
		test.DemandSuccess(t, env.Prefs.Memory.LatencyTime.Set(50*time.Millisecond))
		test.DemandSuccess(t, env.Prefs.Memory.RequestTimeout.Set(time.Second))
	})
	ctx := context.Background()

	// wait for calibration
	_, err := br.Do(ctx, psram.Request{Address: 0})
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, br.Submit(psram.Request{Address: 1, Direction: psram.Write, Data: 1}))
	test.ExpectSuccess(t, br.Busy())

	err = br.Submit(psram.Request{Address: 2, Direction: psram.Write, Data: 2})
	test.ExpectSuccess(t, curated.Is(err, bridge.Outstanding))

	_, ok := br.Poll()
	test.ExpectFailure(t, ok)

	rsp, err := br.Wait(ctx)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, rsp.Request.Address, uint32(1))
	test.ExpectFailure(t, br.Busy())

	// the bridge accepts a new request once the previous one has resolved
	test.ExpectSuccess(t, br.Submit(psram.Request{Address: 2, Direction: psram.Write, Data: 2}))
	_, err = br.Wait(ctx)
	test.ExpectSuccess(t, err)
}

func TestNoRequest(t *testing.T) {
	br, _ := newBridge(t, nil)
	_, err := br.Wait(context.Background())
	test.ExpectSuccess(t, curated.Is(err, bridge.NoRequest))
}

func TestPrefetch(t *testing.T) {
	br, _ := newBridge(t, nil)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := br.Do(ctx, psram.Request{Address: uint32(i), Direction: psram.Write, Data: uint8(i + 0x10)})
		test.DemandSuccess(t, err)
	}

	br.Prefetch(5)
	d, err := br.Read(ctx, 5)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x15))
	test.ExpectEquality(t, br.Stats().PrefetchHits, uint64(1))

	// prefetched data is never used for a different address
	br.Prefetch(6)
	d, err = br.Read(ctx, 7)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x17))
	test.ExpectEquality(t, br.Stats().PrefetchMisses, uint64(1))
}

// address changes while a prefetch is in flight are held until it resolves.
// only the most recent address is then prefetched.
func TestPrefetchInFlight(t *testing.T) {
	br, _ := newBridge(t, func(env *environment.Environment) {
		test.DemandSuccess(t, env.Prefs.Memory.LatencyTime.Set(40*time.Millisecond))
		test.DemandSuccess(t, env.Prefs.Memory.RequestTimeout.Set(time.Second))
	})
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := br.Do(ctx, psram.Request{Address: uint32(i), Direction: psram.Write, Data: uint8(i + 0x10)})
		test.DemandSuccess(t, err)
	}

	br.Prefetch(5)
	test.ExpectSuccess(t, br.Busy())

	br.Prefetch(6)
	br.Prefetch(7)

	d, err := br.Read(ctx, 7)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x17))
	test.ExpectEquality(t, br.Stats().PrefetchHits, uint64(1))
	test.ExpectEquality(t, br.Stats().PrefetchMisses, uint64(0))

	// the result for the first address was replaced by the later prefetch
	d, err = br.Read(ctx, 5)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x15))
	test.ExpectEquality(t, br.Stats().PrefetchHits, uint64(1))
	test.ExpectEquality(t, br.Stats().PrefetchMisses, uint64(1))
}

func TestPrefetchAfterWrite(t *testing.T) {
	br, _ := newBridge(t, nil)
	ctx := context.Background()

	_, err := br.Do(ctx, psram.Request{Address: 3, Direction: psram.Write, Data: 0xaa})
	test.DemandSuccess(t, err)

	br.Prefetch(3)
	d, err := br.Read(ctx, 3)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0xaa))

	// a write invalidates the prefetched data
	_, err = br.Do(ctx, psram.Request{Address: 3, Direction: psram.Write, Data: 0xbb})
	test.DemandSuccess(t, err)

	d, err = br.Read(ctx, 3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0xbb))
}

func TestInvalidate(t *testing.T) {
	br, _ := newBridge(t, nil)
	ctx := context.Background()

	br.Prefetch(9)
	d, err := br.Read(ctx, 9)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0))

	br.Invalidate()

	// the store is changed behind the back of the bridge
	_, err = br.Do(ctx, psram.Request{Address: 9, Direction: psram.Write, Data: 0x33})
	test.DemandSuccess(t, err)

	d, err = br.Read(ctx, 9)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, d, uint8(0x33))
}

func TestTimeout(t *testing.T) {
	br, _ := newBridge(t, func(env *environment.Environment) {
		test.DemandSuccess(t, env.Prefs.Memory.LatencyTime.Set(time.Hour))
		test.DemandSuccess(t, env.Prefs.Memory.RequestTimeout.Set(20*time.Millisecond))
	})

	_, err := br.Do(context.Background(), psram.Request{Address: 1})
	test.ExpectSuccess(t, curated.Is(err, bridge.Timeout))
	test.ExpectFailure(t, br.Busy())
	test.ExpectEquality(t, br.Stats().Timeouts, uint64(1))
}

func TestCalibrationTimeout(t *testing.T) {
	br, _ := newBridge(t, func(env *environment.Environment) {
		test.DemandSuccess(t, env.Prefs.Memory.CalibrationTime.Set(time.Hour))
		test.DemandSuccess(t, env.Prefs.Memory.RequestTimeout.Set(20*time.Millisecond))
	})

	_, err := br.Do(context.Background(), psram.Request{Address: 1})
	test.ExpectSuccess(t, curated.Is(err, bridge.Timeout))
	test.ExpectEquality(t, br.Stats().Submits, uint64(0))
}
