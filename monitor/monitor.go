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

package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/hardware/memory/hostbus"
	"github.com/jetsetilly/sdcart/hardware/memory/memorymap"
	"github.com/jetsetilly/sdcart/logger"
)

// number of bytes shown by the peek command
const peekLen = 16

// number of entries shown by the log and audio commands
const recentLen = 10

const help = `s status   c commit   0-9 commit slot   r reload   v verify
p peek     m map      a audio           l log      h help     q quit
`

// Monitor is the interactive console.
type Monitor struct {
	env  *environment.Environment
	cart *hardware.Cartridge
	out  io.Writer

	// audio events are only available if the cartridge was created with a
	// recorder
	rec *audio.Recorder
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
// The recorder argument can be nil.
func NewMonitor(env *environment.Environment, cart *hardware.Cartridge, rec *audio.Recorder, out io.Writer) *Monitor {
	return &Monitor{
		env:  env,
		cart: cart,
		out:  out,
		rec:  rec,
	}
}

func (mon *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(mon.out, format, args...)
}

// Run reads commands from the input until the quit command, the end of the
// input, or the context is cancelled.
func (mon *Monitor) Run(ctx context.Context, input io.Reader) error {
	keys := make(chan rune)
	errs := make(chan error, 1)

	go func() {
		r := bufio.NewReader(input)
		for {
			k, _, err := r.ReadRune()
			if err != nil {
				errs <- err
				return
			}
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
	}()

	mon.printf("%s", help)

	for {
		select {
		case k := <-keys:
			quit, err := mon.Command(ctx, k)
			if err != nil {
				mon.printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
		case err := <-errs:
			if err == io.EOF {
				return nil
			}
			return err
		case <-ctx.Done():
			return nil
		}
	}
}

// Command performs the command for the key. Returns true if the key is the
// quit command.
func (mon *Monitor) Command(ctx context.Context, key rune) (bool, error) {
	switch key {
	case 'q', 'Q':
		return true, nil

	case 's', 'S':
		mon.printf("%s\n", mon.cart.Status())

	case 'c', 'C':
		mon.control(ctx, hostbus.CommandCommit|uint8(mon.cart.Session.Selection()))

	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		mon.control(ctx, hostbus.CommandCommit|uint8(key-'0'))

	case 'r', 'R':
		if !mon.env.Prefs.Diagnostics.Bool() {
			mon.printf("reload requires the diagnostics preference\n")
			break // switch
		}
		mon.control(ctx, hostbus.CommandReload|uint8(mon.cart.Session.Selection()))

	case 'v', 'V':
		sum, err := mon.cart.Verify(ctx)
		if err != nil {
			return false, err
		}
		mon.printf("verified: sum %#08x\n", sum)

	case 'p', 'P':
		return false, mon.peek(ctx)

	case 'm', 'M':
		m := mon.cart.Bus.Map()
		mon.printf("%s\n%s", m, m.Summary(true))

	case 'a', 'A':
		if mon.rec == nil {
			mon.printf("audio events are not being recorded\n")
			break // switch
		}
		ev := mon.rec.Events()
		if len(ev) > recentLen {
			ev = ev[len(ev)-recentLen:]
		}
		for _, e := range ev {
			mon.printf("%s\n", e)
		}

	case 'l', 'L':
		logger.Tail(mon.out, recentLen)

	case 'h', 'H', '?':
		mon.printf("%s", help)

	case '\n', '\r', ' ':

	default:
		mon.printf("unknown command (%q)\n", key)
	}

	return false, nil
}

// control writes the command to the control register and reports the status
// register.
func (mon *Monitor) control(ctx context.Context, cmd uint8) {
	mon.cart.Bus.Write(ctx, memorymap.ControlRegister, cmd)
	st, err := mon.cart.Bus.Read(ctx, memorymap.ControlRegister)
	if err != nil {
		mon.printf("error: %v\n", err)
		return
	}
	mon.printf("control %#02x: status %#02x (%s)\n", cmd, st, mon.cart.Session)
}

// peek reads the first bytes of the image being served.
func (mon *Monitor) peek(ctx context.Context) error {
	m := mon.cart.Bus.Map()
	origin := m.ResidentOrigin()
	if m.Loaded {
		origin = m.LoadedOrigin()
	}

	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%#04x:", origin))
	for i := 0; i < peekLen; i++ {
		a := int(origin) + i
		if a > int(memorymap.Memtop) {
			break // for loop
		}
		d, err := mon.cart.Bus.Read(ctx, uint16(a))
		if err != nil {
			return err
		}
		s.WriteString(fmt.Sprintf(" %02x", d))
	}
	mon.printf("%s\n", s.String())

	return nil
}
