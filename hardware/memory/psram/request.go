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
)

// Direction of a request.
type Direction int

// List of valid Direction values.
const (
	Read Direction = iota
	Write
)

func (d Direction) String() string {
	if d == Write {
		return "write"
	}
	return "read"
}

// Request is a byte level request for the backing store.
type Request struct {
	Address   uint32
	Direction Direction

	// the byte to write. ignored for reads
	Data uint8
}

func (r Request) String() string {
	if r.Direction == Write {
		return fmt.Sprintf("write %#02x to %#06x", r.Data, r.Address)
	}
	return fmt.Sprintf("read from %#06x", r.Address)
}

// Response to a Request.
type Response struct {
	Request Request

	// the byte read from the store. for writes this is the byte written
	Data uint8

	// the full word containing the address, as it was after the request was
	// serviced
	Word uint32

	Err error
}

// Ticket is the future result of an issued Request.
type Ticket struct {
	Request Request

	done chan struct{}
	rsp  Response
}

func newTicket(req Request) *Ticket {
	return &Ticket{
		Request: req,
		done:    make(chan struct{}),
	}
}

// complete must be called exactly once.
func (t *Ticket) complete(rsp Response) {
	t.rsp = rsp
	close(t.done)
}

// Done returns a channel that is closed when the request has been serviced.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Poll returns the response if the request has been serviced.
func (t *Ticket) Poll() (Response, bool) {
	select {
	case <-t.done:
		return t.rsp, true
	default:
	}
	return Response{}, false
}

// Wait for the request to be serviced.
func (t *Ticket) Wait(ctx context.Context) (Response, error) {
	select {
	case <-t.done:
		return t.rsp, t.rsp.Err
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}
