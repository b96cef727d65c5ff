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

package hostbus

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/hardware/memory/bridge"
	"github.com/jetsetilly/sdcart/hardware/memory/memorymap"
	"github.com/jetsetilly/sdcart/hardware/session"
	"github.com/jetsetilly/sdcart/logger"
)

// Sentinal error patterns.
const (
	NotDriven = "hostbus: bus not driven (%#04x)"
)

const logTag = "hostbus"

// Control register commands.
const (
	CommandCommit = uint8(0x80)
	CommandReload = uint8(0x40)
	commitMask    = uint8(0x7f)
	reloadMask    = uint8(0x3f)
)

// Bits in the status register.
const (
	StatusLoaded   = uint8(0x80)
	StatusComplete = uint8(0x40)
	StatusFailed   = uint8(0x20)
	StatusState    = uint8(0x0f)
)

// StatusRegister builds the value of the status register.
func StatusRegister(loaded bool, complete bool, failed bool, state int) uint8 {
	v := uint8(state) & StatusState
	if loaded {
		v |= StatusLoaded
	}
	if complete {
		v |= StatusComplete
	}
	if failed {
		v |= StatusFailed
	}
	return v
}

// Control receives the commands written to the control register.
type Control interface {
	// commit to the loaded image. the index is the selected slot
	Commit(index int)

	// reset and reload the slot
	Reload(slot int)

	// the value of the status register
	ControlStatus() uint8
}

// Cycle is one sample of the host bus.
type Cycle struct {
	Address uint16
	Data    uint8

	// the read/write line. true if the host is reading
	Read bool

	// the phase two clock. data is only valid when the clock is high
	Phi2 bool

	// the host processor is halted. only the video chip uses the bus
	Halt bool
}

func (c Cycle) String() string {
	dir := "W"
	if c.Read {
		dir = "R"
	}
	return fmt.Sprintf("%#04x %s %#02x phi2=%v halt=%v", c.Address, dir, c.Data, c.Phi2, c.Halt)
}

// Drive is the response of the cartridge to a Cycle.
type Drive struct {
	// the cartridge is driving the data lines
	Enabled bool
	Data    uint8
}

// Stats are the running totals of the server.
type Stats struct {
	Reads     uint64
	Writes    uint64
	Undriven  uint64
	Commands  uint64
	AudioOut  uint64
	BusErrors uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("reads=%d writes=%d undriven=%d commands=%d audio=%d errors=%d",
		s.Reads, s.Writes, s.Undriven, s.Commands, s.AudioOut, s.BusErrors)
}

// Server answers the host bus. Tick() and the helper functions should only
// be called from the host bus goroutine. Stats() can be called from any
// goroutine.
type Server struct {
	env  *environment.Environment
	sess *session.Session
	br   *bridge.Bridge
	ctl  Control
	snd  audio.Sink

	resident []byte

	// direction of the bus on the previous tick
	latchedRead bool

	// the address on the previous tick
	address      uint16
	addressValid bool

	// a write has been accepted for the current phi2 high phase
	writeAccepted bool

	reads     atomic.Uint64
	writes    atomic.Uint64
	undriven  atomic.Uint64
	commands  atomic.Uint64
	audioOut  atomic.Uint64
	busErrors atomic.Uint64
}

// NewServer is the preferred method of initialisation for the Server type.
// The resident image is served until the session flips to the loaded image.
func NewServer(env *environment.Environment, sess *session.Session, br *bridge.Bridge, ctl Control, snd audio.Sink, resident []byte) *Server {
	if snd == nil {
		snd = audio.Discard
	}
	return &Server{
		env:      env,
		sess:     sess,
		br:       br,
		ctl:      ctl,
		snd:      snd,
		resident: resident,
	}
}

func (srv *Server) String() string {
	return srv.Map().String()
}

// Stats returns the running totals of the server.
func (srv *Server) Stats() Stats {
	return Stats{
		Reads:     srv.reads.Load(),
		Writes:    srv.writes.Load(),
		Undriven:  srv.undriven.Load(),
		Commands:  srv.commands.Load(),
		AudioOut:  srv.audioOut.Load(),
		BusErrors: srv.busErrors.Load(),
	}
}

// Map returns the current memory map.
func (srv *Server) Map() memorymap.Map {
	m := memorymap.Map{
		ResidentLen: len(srv.resident),
	}

	if srv.sess.Mode() == session.Loaded {
		if hdr := srv.sess.Header(); hdr != nil {
			m.Loaded = true
			m.LoadedLen = hdr.PayloadLen
			m.LoadedBase = uint32(srv.env.Prefs.Memory.LoadedBase.Int())
			m.AudioBase, m.AudioEnabled = hdr.AudioWindow()
			return m
		}
	}

	m.AudioBase = uint16(srv.env.Prefs.Bus.ResidentAudioBase.Int())
	m.AudioEnabled = true

	return m
}

// Reset the bus latches. Should be called when the host is reset.
func (srv *Server) Reset() {
	srv.latchedRead = false
	srv.addressValid = false
	srv.writeAccepted = false
}

// Tick is called for every sample of the host bus.
func (srv *Server) Tick(ctx context.Context, c Cycle) Drive {
	latched := srv.latchedRead
	srv.latchedRead = c.Read

	if !srv.addressValid || c.Address != srv.address {
		srv.address = c.Address
		srv.addressValid = true
		srv.writeAccepted = false

		if c.Read {
			if a, area := srv.Map().MapAddress(c.Address, true); area == memorymap.Loaded {
				srv.br.Prefetch(a)
			}
		}
	}

	if !c.Phi2 {
		srv.writeAccepted = false
		return Drive{}
	}

	if !c.Read {
		// the host processor is the only source of writes
		if !srv.writeAccepted && !c.Halt {
			srv.writeAccepted = true
			srv.write(c.Address, c.Data)
		}
		return Drive{}
	}

	// the bus was being written to on the previous tick
	if !latched {
		return Drive{}
	}

	data, ok := srv.read(ctx, c.Address)
	if !ok {
		srv.undriven.Add(1)
		return Drive{}
	}

	return Drive{Enabled: true, Data: data}
}

func (srv *Server) read(ctx context.Context, address uint16) (uint8, bool) {
	srv.reads.Add(1)

	a, area := srv.Map().MapAddress(address, true)

	switch area {
	case memorymap.Control:
		return srv.ctl.ControlStatus(), true

	case memorymap.Resident:
		return srv.resident[a], true

	case memorymap.Loaded:
		d, err := srv.br.Read(ctx, a)
		if err != nil {
			srv.busErrors.Add(1)
			logger.Log(srv.env, logTag, curated.Errorf("hostbus: %#04x: %v", address, err))
			return 0, false
		}
		return d, true
	}

	return 0, false
}

func (srv *Server) write(address uint16, data uint8) {
	srv.writes.Add(1)

	a, area := srv.Map().MapAddress(address, false)

	switch area {
	case memorymap.Control:
		srv.command(data)

	case memorymap.Audio:
		srv.audioOut.Add(1)
		srv.snd.Write(audio.Event{
			Register: uint8(a) & (audio.WindowSize - 1),
			Data:     data,
			Strobe:   true,
		})
	}
}

func (srv *Server) command(data uint8) {
	srv.commands.Add(1)

	switch {
	case data&CommandCommit == CommandCommit:
		srv.ctl.Commit(int(data & commitMask))

	case data&CommandReload == CommandReload:
		if !srv.env.Prefs.Diagnostics.Bool() {
			logger.Logf(srv.env, logTag, "reload command ignored (%#02x)", data)
			return
		}
		srv.ctl.Reload(int(data & reloadMask))
	}
}

// Read is a helper function that puts the address on the bus for two ticks,
// the second of which has phi2 high. Returns the value driven on the data
// lines.
func (srv *Server) Read(ctx context.Context, address uint16) (uint8, error) {
	srv.Tick(ctx, Cycle{Address: address, Read: true})
	d := srv.Tick(ctx, Cycle{Address: address, Read: true, Phi2: true})
	if !d.Enabled {
		return 0, curated.Errorf(NotDriven, address)
	}
	return d.Data, nil
}

// Write is a helper function that writes the data to the address over two
// ticks, the second of which has phi2 high.
func (srv *Server) Write(ctx context.Context, address uint16, data uint8) {
	srv.Tick(ctx, Cycle{Address: address, Data: data})
	srv.Tick(ctx, Cycle{Address: address, Data: data, Phi2: true})
}
