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
	"context"
	"sync"

	"github.com/jetsetilly/sdcart/cartridgeloader"
	"github.com/jetsetilly/sdcart/curated"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/hardware/memory/bridge"
	"github.com/jetsetilly/sdcart/hardware/memory/hostbus"
	"github.com/jetsetilly/sdcart/hardware/memory/psram"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
	"github.com/jetsetilly/sdcart/hardware/session"
	"github.com/jetsetilly/sdcart/logger"
	"github.com/jetsetilly/sdcart/notifications"
)

// Sentinal error patterns.
const (
	NotStarted = "hardware: cartridge not started"
)

const logTag = "cartridge"

// Cartridge contains all the sub-systems of the cartridge.
type Cartridge struct {
	env *environment.Environment

	Session    *session.Session
	Reader     *sdcard.Reader
	Store      *psram.Store
	Controller *psram.Controller
	Bridge     *bridge.Bridge
	Loader     *cartridgeloader.Loader
	Bus        *hostbus.Server

	// the context given to Start()
	ctx context.Context

	// the running load. loadCrit serialises the starting of loads
	loadCrit   sync.Mutex
	loadCancel context.CancelFunc
	loadDone   chan struct{}
}

// NewCartridge creates a new cartridge and everything associated with it.
// The resident image is served to the host until the loaded image is
// committed.
func NewCartridge(env *environment.Environment, dev sdcard.Device, snd audio.Sink, resident []byte) (*Cartridge, error) {
	var err error

	cart := &Cartridge{env: env}

	cart.Store = psram.NewStore(env.Prefs.Memory.StoreSize.Int())
	cart.Controller, err = psram.NewController(env, cart.Store)
	if err != nil {
		return nil, err
	}

	cart.Bridge = bridge.NewBridge(env, cart.Controller)
	cart.Reader = sdcard.NewReader(env, dev)
	cart.Loader = cartridgeloader.NewLoader(env, cart.Reader, cart.Bridge, cart.Store.Size())
	cart.Session = session.NewSession(env.Prefs.Loader.DefaultSlot.Int())
	cart.Bus = hostbus.NewServer(env, cart.Session, cart.Bridge, cart, snd, resident)

	return cart, nil
}

func (cart *Cartridge) String() string {
	return cart.Session.String()
}

// Start the backing store controller and the loader. The loader loads the
// default slot. Start() should be called only once. Everything stops when
// the context is cancelled.
func (cart *Cartridge) Start(ctx context.Context) {
	cart.ctx = ctx

	go func() {
		err := cart.Controller.Run(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Log(cart.env, logTag, err)
		}
	}()

	cart.startLoad(cart.Session.Selection())
}

// startLoad cancels any running load and starts a new one for the slot.
func (cart *Cartridge) startLoad(slot int) {
	cart.loadCrit.Lock()
	defer cart.loadCrit.Unlock()

	if cart.ctx == nil {
		logger.Log(cart.env, logTag, curated.Errorf(NotStarted))
		return
	}

	if cart.loadCancel != nil {
		cart.loadCancel()
		<-cart.loadDone
	}

	cart.Session.Select(slot)
	cart.Bridge.Invalidate()

	ctx, cancel := context.WithCancel(cart.ctx)
	done := make(chan struct{})
	cart.loadCancel = cancel
	cart.loadDone = done

	go func() {
		defer close(done)

		hdr, err := cart.Loader.Load(ctx, cartridgeloader.NewRequest(cart.env.Prefs, slot))
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			cart.Session.Fail()
			return
		}
		if cart.Session.Complete(hdr) {
			cart.committed()
		}
	}()
}

func (cart *Cartridge) committed() {
	cart.Bridge.Invalidate()
	logger.Logf(cart.env, logTag, "committed: slot %d: %s", cart.Session.Selection(), cart.Session.Header())
	cart.env.Notify(notifications.NotifyImageCommitted)
}

// WaitForLoad blocks until the current load has finished. The returned
// error is the error that stopped the load, if any.
func (cart *Cartridge) WaitForLoad(ctx context.Context) (cartridgeloader.Status, error) {
	cart.loadCrit.Lock()
	done := cart.loadDone
	cart.loadCrit.Unlock()

	if done == nil {
		return cartridgeloader.Status{}, curated.Errorf(NotStarted)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return cart.Loader.Status(), ctx.Err()
	}

	st := cart.Loader.Status()
	return st, st.Err
}

// Commit implements the hostbus.Control interface. If the index is for a
// slot other than the one that is loaded or being loaded, then a new load is
// started and the commit waits for it to complete.
func (cart *Cartridge) Commit(index int) {
	if cart.Session.Mode() == session.Loaded {
		return
	}

	if index != cart.Session.Selection() {
		logger.Logf(cart.env, logTag, "selecting slot %d", index)
		cart.startLoad(index)
	}

	if cart.Session.Commit() {
		cart.committed()
	}
}

// Reload implements the hostbus.Control interface. The session is reset and
// the slot is loaded. The host is served the resident image until the next
// commit.
func (cart *Cartridge) Reload(slot int) {
	logger.Logf(cart.env, logTag, "reload: slot %d", slot)
	cart.env.Notify(notifications.NotifyReload)

	cart.loadCrit.Lock()
	if cart.loadCancel != nil {
		cart.loadCancel()
		<-cart.loadDone
		cart.loadCancel = nil
	}
	cart.loadCrit.Unlock()

	cart.Session.Reset(slot)
	cart.Bus.Reset()
	cart.startLoad(slot)
}

// ControlStatus implements the hostbus.Control interface.
func (cart *Cartridge) ControlStatus() uint8 {
	st := cart.Loader.Status()
	return hostbus.StatusRegister(
		cart.Session.Mode() == session.Loaded,
		cart.Session.Eligible(),
		cart.Session.Failed(),
		int(st.State),
	)
}
