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

package preferences

import (
	"fmt"
	"time"

	"github.com/jetsetilly/sdcart/prefs"
)

// Lane order values.
const (
	LaneOrderLittle   = "little"
	LaneOrderInverted = "inverted"
)

// MemoryPreferences are used by the backing store controller and the request
// bridge.
type MemoryPreferences struct {
	dsk *prefs.Disk

	// size of the backing store in bytes. must be a multiple of four
	StoreSize prefs.Int

	// the store address at which the loaded image is placed
	LoadedBase prefs.Int

	// how byte addresses map onto the lanes of a word. one of LaneOrderLittle
	// or LaneOrderInverted
	LaneOrder prefs.String

	// timings of the backing store. a duration of zero means there is no wait
	CalibrationTime prefs.Duration
	CommandTime     prefs.Duration
	LatencyTime     prefs.Duration

	// the bridge abandons a request that has not completed in this time
	RequestTimeout prefs.Duration
}

func (p *MemoryPreferences) String() string {
	return p.dsk.String()
}

func newMemoryPreferences(pth string) (*MemoryPreferences, error) {
	p := &MemoryPreferences{}
	p.SetDefaults()

	p.StoreSize.SetHookPre(func(v prefs.Value) error {
		if v.(int) <= 0 || v.(int)%4 != 0 {
			return fmt.Errorf("memory: store size must be a positive multiple of four (%d)", v.(int))
		}
		return nil
	})
	p.LoadedBase.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 {
			return fmt.Errorf("memory: loaded base cannot be negative (%d)", v.(int))
		}
		return nil
	})
	p.LaneOrder.SetHookPre(func(v prefs.Value) error {
		switch v.(string) {
		case LaneOrderLittle, LaneOrderInverted:
			return nil
		}
		return fmt.Errorf("memory: unknown lane order (%s)", v.(string))
	})

	var err error

	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.storeSize", &p.StoreSize)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.loadedBase", &p.LoadedBase)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.laneOrder", &p.LaneOrder)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.calibrationTime", &p.CalibrationTime)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.commandTime", &p.CommandTime)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.latencyTime", &p.LatencyTime)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("memory.requestTimeout", &p.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all memory preferences to their default values.
func (p *MemoryPreferences) SetDefaults() {
	p.StoreSize.SetDefault(8 * 1024 * 1024)
	p.LoadedBase.SetDefault(0)
	p.LaneOrder.SetDefault(LaneOrderLittle)
	p.CalibrationTime.SetDefault(time.Millisecond)
	p.CommandTime.SetDefault(0)
	p.LatencyTime.SetDefault(0)
	p.RequestTimeout.SetDefault(100 * time.Millisecond)
}
