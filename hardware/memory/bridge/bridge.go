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

// Package bridge passes requests from the loader and the host bus server to
// the backing store controller, which runs in a different goroutine.
//
// There is only ever one request in flight. A request can be submitted only
// when the previous request has been resolved, otherwise the Outstanding
// error pattern is returned. A submitted request is latched by value so a
// caller cannot change it after submission.
//
// The bridge also prefetches reads. When the address on the host bus
// changes, Prefetch() speculatively reads the new address so that the data
// is ready by the time it is needed. A prefetch is never served for a
// different address.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/logger"
)

// Sentinal error patterns.
const (
	Outstanding = "bridge: request outstanding"
	Timeout     = "bridge: request timed out: %v"
	NoRequest   = "bridge: no request submitted"
)

// Issuer is the backing store controller as seen by the Bridge.
type Issuer interface {
	Issue(psram.Request) (*psram.Ticket, error)
	Calibrated() <-chan struct{}
}

// Stats are the running totals of the bridge.
type Stats struct {
	Submits        uint64
	PrefetchHits   uint64
	PrefetchMisses uint64
	Timeouts       uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("submits=%d hits=%d misses=%d timeouts=%d",
		s.Submits, s.PrefetchHits, s.PrefetchMisses, s.Timeouts)
}

// Bridge between the clients of the backing store and the controller.
type Bridge struct {
	env *environment.Environment
	ctl Issuer

	crit sync.Mutex

	// the single in-flight request. nil when the bridge is idle
	inflight *psram.Ticket

	// the in-flight request was issued by Prefetch()
	speculative bool

	// the in-flight speculative request was invalidated before it resolved
	stale bool

	// the result of the most recently resolved prefetch
	cached *psram.Response

	// the most recent address passed to Prefetch() while another request
	// was in flight
	pending     bool
	pendingAddr uint32

	stats Stats
}

// NewBridge is the preferred method of initialisation for the Bridge type.
func NewBridge(env *environment.Environment, ctl Issuer) *Bridge {
	return &Bridge{
		env: env,
		ctl: ctl,
	}
}

func (br *Bridge) String() string {
	br.crit.Lock()
	defer br.crit.Unlock()
	if br.inflight != nil {
		return fmt.Sprintf("busy: %s", br.inflight.Request)
	}
	return "idle"
}

// Stats returns a copy of the bridge statistics.
func (br *Bridge) Stats() Stats {
	br.crit.Lock()
	defer br.crit.Unlock()
	return br.stats
}

// Busy returns true if a request is in flight.
func (br *Bridge) Busy() bool {
	br.crit.Lock()
	defer br.crit.Unlock()
	return br.inflight != nil
}

func (br *Bridge) timeout() (<-chan time.Time, func()) {
	d := br.env.Prefs.Memory.RequestTimeout.Duration()
	if d <= 0 {
		return nil, func() {}
	}
	t := time.NewTimer(d)
	return t.C, func() { t.Stop() }
}

// Submit a request. The request is rejected with the Outstanding pattern if
// another request is in flight. Errors from the controller are returned
// unchanged.
func (br *Bridge) Submit(req psram.Request) error {
	br.crit.Lock()
	defer br.crit.Unlock()

	if br.inflight != nil {
		return curated.Errorf(Outstanding)
	}

	t, err := br.ctl.Issue(req)
	if err != nil {
		return err
	}

	br.inflight = t
	br.speculative = false
	br.stale = false
	br.stats.Submits++

	// a write makes any prefetched data unreliable
	if req.Direction == psram.Write {
		br.cached = nil
	}

	return nil
}

// Poll checks whether the submitted request has completed without waiting.
// A completed request is resolved and the bridge becomes idle.
func (br *Bridge) Poll() (psram.Response, bool) {
	br.crit.Lock()
	defer br.crit.Unlock()

	if br.inflight == nil || br.speculative {
		return psram.Response{}, false
	}

	rsp, ok := br.inflight.Poll()
	if ok {
		br.resolve(br.inflight)
	}
	return rsp, ok
}

// Wait for the submitted request to complete. If it does not complete within
// the request timeout the request is abandoned, the event is logged and an
// error with the Timeout pattern is returned. The bridge is idle afterwards
// in either case.
func (br *Bridge) Wait(ctx context.Context) (psram.Response, error) {
	br.crit.Lock()
	t := br.inflight
	spec := br.speculative
	br.crit.Unlock()

	if t == nil || spec {
		return psram.Response{}, curated.Errorf(NoRequest)
	}

	if err := br.settle(ctx, t); err != nil {
		return psram.Response{}, err
	}

	rsp, _ := t.Poll()
	return rsp, rsp.Err
}

// settle waits for the ticket to complete and resolves it. the ticket is
// abandoned if it does not complete within the request timeout
func (br *Bridge) settle(ctx context.Context, t *psram.Ticket) error {
	expired, stop := br.timeout()
	defer stop()

	select {
	case <-t.Done():
		br.crit.Lock()
		br.resolve(t)
		br.crit.Unlock()
		return nil
	case <-expired:
		br.abandon(t)
		return curated.Errorf(Timeout, t.Request)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve must be called with the critical section held and only after the
// ticket has completed. it is safe to call resolve more than once for the
// same ticket.
func (br *Bridge) resolve(t *psram.Ticket) {
	if br.inflight != t {
		return
	}

	if br.speculative && !br.stale {
		if rsp, ok := t.Poll(); ok && rsp.Err == nil {
			br.cached = &rsp
		}
	}

	br.inflight = nil
	br.speculative = false
	br.stale = false

	// the address changed while the previous request was in flight
	if br.pending {
		br.pending = false
		if br.cached == nil || br.cached.Request.Address != br.pendingAddr {
			br.prefetch(br.pendingAddr)
		}
	}
}

// abandon a ticket that did not complete in time. the controller may still
// complete it later but the result will be ignored
func (br *Bridge) abandon(t *psram.Ticket) {
	br.crit.Lock()
	defer br.crit.Unlock()

	if br.inflight != t {
		return
	}

	br.inflight = nil
	br.speculative = false
	br.stale = false
	br.pending = false
	br.stats.Timeouts++

	logger.Logf(br.env, "bridge", "irrecoverable: request abandoned: %s", t.Request)
}

// Do submits the request and waits for it to complete. If another request is
// in flight then Do waits for it to resolve first. Requests made before the
// controller has calibrated are held until calibration is complete.
func (br *Bridge) Do(ctx context.Context, req psram.Request) (psram.Response, error) {
	expired, stop := br.timeout()
	select {
	case <-br.ctl.Calibrated():
	case <-expired:
		stop()
		return psram.Response{}, curated.Errorf(Timeout, req)
	case <-ctx.Done():
		stop()
		return psram.Response{}, ctx.Err()
	}
	stop()

	for {
		br.crit.Lock()
		t := br.inflight
		br.crit.Unlock()

		if t != nil {
			if err := br.settle(ctx, t); err != nil {
				return psram.Response{}, err
			}
			continue // for loop
		}

		err := br.Submit(req)
		if curated.Is(err, Outstanding) {
			continue // for loop
		}
		if err != nil {
			return psram.Response{}, err
		}

		return br.Wait(ctx)
	}
}

// Prefetch notifies the bridge that the address on the host bus has changed.
// A read of the address is issued if the bridge is idle. If another request
// is in flight then the address is remembered and prefetched once the
// request has resolved. Only the most recent address is remembered.
func (br *Bridge) Prefetch(address uint32) {
	br.crit.Lock()
	defer br.crit.Unlock()

	if br.cached != nil && br.cached.Request.Address == address {
		return
	}

	if br.inflight != nil {
		if br.speculative && !br.stale && br.inflight.Request.Address == address {
			br.pending = false
			return
		}
		br.pending = true
		br.pendingAddr = address
		return
	}

	br.prefetch(address)
}

// prefetch must be called with the critical section held and with no
// request in flight.
func (br *Bridge) prefetch(address uint32) {
	t, err := br.ctl.Issue(psram.Request{Address: address, Direction: psram.Read})
	if err != nil {
		// the prefetch is speculative so an error is not important. the
		// read will be retried by Read()
		return
	}

	br.inflight = t
	br.speculative = true
	br.stale = false

	go func() {
		expired, stop := br.timeout()
		defer stop()
		select {
		case <-t.Done():
			br.crit.Lock()
			br.resolve(t)
			br.crit.Unlock()
		case <-expired:
			br.abandon(t)
		}
	}()
}

// Read a byte from the backing store. The prefetched result is used if it is
// for the same address. Otherwise any in-flight request is allowed to
// resolve and a new read is issued.
func (br *Bridge) Read(ctx context.Context, address uint32) (uint8, error) {
	for {
		br.crit.Lock()

		if br.cached != nil && br.cached.Request.Address == address {
			br.stats.PrefetchHits++
			d := br.cached.Data
			br.crit.Unlock()
			return d, nil
		}

		t := br.inflight
		br.crit.Unlock()

		if t == nil {
			break // for loop
		}

		// a prefetch for the same address will be cached when it resolves.
		// anything else is stale for the purposes of this read but must
		// still be allowed to resolve
		if err := br.settle(ctx, t); err != nil {
			return 0, err
		}
	}

	br.crit.Lock()
	br.stats.PrefetchMisses++
	br.crit.Unlock()

	rsp, err := br.Do(ctx, psram.Request{Address: address, Direction: psram.Read})
	if err != nil {
		return 0, err
	}

	br.crit.Lock()
	br.cached = &rsp
	br.crit.Unlock()

	return rsp.Data, nil
}

// Invalidate drops any prefetched data and any pending prefetch. A
// speculative request that is in flight is allowed to complete but its
// result will not be used.
func (br *Bridge) Invalidate() {
	br.crit.Lock()
	defer br.crit.Unlock()
	br.cached = nil
	br.pending = false
	if br.speculative {
		br.stale = true
	}
}
