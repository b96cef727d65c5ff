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

package hardware

import (
	"fmt"
	"io"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/sdcart/cartridgeloader"
	"github.com/jetsetilly/sdcart/hardware/memory/bridge"
	"github.com/jetsetilly/sdcart/hardware/memory/hostbus"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/hardware/session"
)

// Status is a snapshot of the cartridge for diagnostic purposes.
type Status struct {
	Mode    session.Mode
	Slot    int
	Pending bool

	Loader cartridgeloader.Status
	Bridge bridge.Stats
	Bus    hostbus.Stats

	Controller psram.State
	Reads      uint64
	Writes     uint64
}

func (st Status) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("mode: %s (slot %d)", st.Mode, st.Slot))
	if st.Pending {
		s.WriteString(" commit pending")
	}
	s.WriteString(fmt.Sprintf("\nloader: %s", st.Loader))
	if st.Loader.Header != nil {
		s.WriteString(fmt.Sprintf("\nimage: %s", st.Loader.Header))
	}
	s.WriteString(fmt.Sprintf("\npsram: %s reads=%d writes=%d", st.Controller, st.Reads, st.Writes))
	s.WriteString(fmt.Sprintf("\nbridge: %s", st.Bridge))
	s.WriteString(fmt.Sprintf("\nbus: %s", st.Bus))
	return s.String()
}

// Status returns a snapshot of the cartridge.
func (cart *Cartridge) Status() Status {
	st := Status{
		Mode:       cart.Session.Mode(),
		Slot:       cart.Session.Selection(),
		Pending:    cart.Session.Pending(),
		Loader:     cart.Loader.Status(),
		Bridge:     cart.Bridge.Stats(),
		Bus:        cart.Bus.Stats(),
		Controller: cart.Controller.State(),
	}
	st.Reads, st.Writes = cart.Controller.Stats()
	return st
}

// DumpStructure writes a graphviz description of the cartridge status to the
// writer.
func (cart *Cartridge) DumpStructure(w io.Writer) {
	st := cart.Status()
	memviz.Map(w, &st)
}
