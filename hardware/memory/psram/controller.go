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

package psram

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/logger"
)

// Sentinal error patterns.
const (
	NotReady   = "psram: not ready"
	Busy       = "psram: busy"
	OutOfRange = "psram: address out of range (%#x)"
	Stopped    = "psram: controller stopped"
)

// State of the Controller.
type State int32

// List of valid State values.
const (
	Calibrating State = iota
	Idle
	InService
	Halted
)

func (s State) String() string {
	switch s {
	case Calibrating:
		return "calibrating"
	case Idle:
		return "idle"
	case InService:
		return "busy"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// Controller services requests for the Store.
type Controller struct {
	env   *environment.Environment
	store *Store
	order LaneOrder

	state atomic.Int32

	// the change from Idle to InService and the send to the service channel
	// happen together with respect to halt()
	crit sync.Mutex

	// the ticket of the request in service. the channel has a capacity of one
	// and is only written to after the state has changed from Idle to
	// InService, so the send never blocks
	service chan *Ticket

	// closed when calibration has completed
	calibrated chan struct{}

	// number of requests serviced
	reads  atomic.Uint64
	writes atomic.Uint64
}

// NewController is the preferred method of initialisation for the Controller
// type. The lane order is taken from the preferences.
func NewController(env *environment.Environment, store *Store) (*Controller, error) {
	order, err := ParseLaneOrder(env.Prefs.Memory.LaneOrder.String())
	if err != nil {
		return nil, err
	}

	ctl := &Controller{
		env:        env,
		store:      store,
		order:      order,
		service:    make(chan *Ticket, 1),
		calibrated: make(chan struct{}),
	}
	ctl.state.Store(int32(Calibrating))

	return ctl, nil
}

func (ctl *Controller) String() string {
	return fmt.Sprintf("%s: %s [%s]", ctl.State(), ctl.store, ctl.order)
}

// State returns the current state of the controller.
func (ctl *Controller) State() State {
	return State(ctl.state.Load())
}

// Calibrated returns a channel that is closed when calibration has
// completed. Requests issued before then are rejected.
func (ctl *Controller) Calibrated() <-chan struct{} {
	return ctl.calibrated
}

// Store returns the store serviced by the controller. The store must not be
// accessed while the controller is running.
func (ctl *Controller) Store() *Store {
	return ctl.store
}

// LaneOrder returns the lane order used by the controller.
func (ctl *Controller) LaneOrder() LaneOrder {
	return ctl.order
}

// Stats returns the number of read and write requests serviced.
func (ctl *Controller) Stats() (uint64, uint64) {
	return ctl.reads.Load(), ctl.writes.Load()
}

// wait for the duration. a zero duration returns immediately.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Issue a request. The returned Ticket is completed when the request has
// been serviced.
//
// An error with the NotReady pattern is returned before calibration has
// completed. An error with the Busy pattern is returned if another request
// is in service.
func (ctl *Controller) Issue(req Request) (*Ticket, error) {
	if int(req.Address) >= ctl.store.Size() {
		return nil, curated.Errorf(OutOfRange, req.Address)
	}

	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	if !ctl.state.CompareAndSwap(int32(Idle), int32(InService)) {
		switch ctl.State() {
		case Calibrating:
			return nil, curated.Errorf(NotReady)
		case Halted:
			return nil, curated.Errorf(Stopped)
		}
		return nil, curated.Errorf(Busy)
	}

	t := newTicket(req)
	ctl.service <- t
	return t, nil
}

// Run the controller until the context is cancelled. Run() should be called
// once, in its own goroutine.
func (ctl *Controller) Run(ctx context.Context) error {
	defer ctl.halt()

	err := wait(ctx, ctl.env.Prefs.Memory.CalibrationTime.Duration())
	if err != nil {
		return err
	}
	ctl.state.Store(int32(Idle))
	close(ctl.calibrated)
	logger.Logf(ctl.env, "psram", "calibrated: %s", ctl.store)

	for {
		select {
		case t := <-ctl.service:
			rsp := ctl.serviceRequest(ctx, t.Request)

			// the state must be idle before the ticket is completed. a
			// caller that sees the completed ticket may immediately issue
			// the next request
			ctl.state.Store(int32(Idle))
			t.complete(rsp)

			if rsp.Err != nil {
				return rsp.Err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ctl *Controller) serviceRequest(ctx context.Context, req Request) Response {
	rsp := Response{Request: req}

	// command phase followed by the fixed latency
	if err := wait(ctx, ctl.env.Prefs.Memory.CommandTime.Duration()); err != nil {
		rsp.Err = err
		return rsp
	}
	if err := wait(ctx, ctl.env.Prefs.Memory.LatencyTime.Duration()); err != nil {
		rsp.Err = err
		return rsp
	}

	// transfer of one word
	idx, lane := ctl.order.Locate(req.Address)

	switch req.Direction {
	case Read:
		rsp.Word = ctl.store.Word(idx)
		rsp.Data = WordToByte(rsp.Word, lane)
		ctl.reads.Add(1)
	case Write:
		ctl.store.WriteMasked(idx, ByteToMaskedWord(0, lane, req.Data), LaneMask(lane))
		rsp.Word = ctl.store.Word(idx)
		rsp.Data = req.Data
		ctl.writes.Add(1)
	}

	return rsp
}

// halt is called when Run() returns. a request that was issued but never
// serviced is completed with an error.
func (ctl *Controller) halt() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	ctl.state.Store(int32(Halted))
	select {
	case t := <-ctl.service:
		t.complete(Response{Request: t.Request, Err: curated.Errorf(Stopped)})
	default:
	}
}
