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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jetsetilly/sdcart/digest"
	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/hardware"
	"github.com/jetsetilly/sdcart/hardware/audio"
	"github.com/jetsetilly/sdcart/hardware/memory/hostbus"
	"github.com/jetsetilly/sdcart/hardware/memory/memorymap"
	"github.com/jetsetilly/sdcart/hardware/preferences"
	"github.com/jetsetilly/sdcart/hardware/sdcard"
	"github.com/jetsetilly/sdcart/logger"
	"github.com/jetsetilly/sdcart/modalflag"
	"github.com/jetsetilly/sdcart/monitor"
	"github.com/jetsetilly/sdcart/monitor/easyterm"
	"github.com/jetsetilly/sdcart/notifications"
	"github.com/jetsetilly/sdcart/paths"
	"github.com/jetsetilly/sdcart/prefs"
	"github.com/jetsetilly/sdcart/provision"
	"github.com/jetsetilly/sdcart/statsview"
	"github.com/jetsetilly/sdcart/version"
)

// number of audio events kept by the recorder used by the monitor
const audioEvents = 256

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PROVISION", "INSPECT", "PORTS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md)

	case "PROVISION":
		err = provisionCard(md)

	case "INSPECT":
		err = inspect(ctx, md)

	case "PORTS":
		err = ports()

	case "VERSION":
		fmt.Println(version.String())
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// notices are printed as they happen.
type notices struct {
	output io.Writer
}

func (n notices) Notify(notice notifications.Notice) error {
	fmt.Fprintf(n.output, "* %s\n", strings.TrimPrefix(string(notice), "Notify"))
	return nil
}

// newEnvironment creates the environment with preferences loaded from the
// configuration directory. the command line preferences are pushed onto the
// preferences stack before loading.
func newEnvironment(cmdlinePrefs string, notify notifications.Notify) (*environment.Environment, error) {
	if cmdlinePrefs != "" {
		prefs.PushCommandLineStack(cmdlinePrefs)
	}

	pth, err := paths.ResourcePath("preferences")
	if err != nil {
		return nil, err
	}

	p, err := preferences.NewPreferences(pth)
	if err != nil {
		return nil, err
	}

	if cmdlinePrefs != "" {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "sdcart", "unused preferences: %s", unused)
		}
	}

	return environment.NewEnvironment(environment.MainCartridge, notify, p)
}

// openDevice opens the serial port if one is named or otherwise the SD card
// image file.
func openDevice(serialPort string, baud int, image string) (sdcard.Device, func() error, error) {
	if serialPort != "" {
		ser, err := sdcard.OpenSerial(serialPort, baud)
		if err != nil {
			return nil, nil, err
		}
		return ser, ser.Close, nil
	}

	if image == "" {
		return nil, nil, fmt.Errorf("SD card image or serial port required")
	}

	img, err := sdcard.OpenImage(image)
	if err != nil {
		return nil, nil, err
	}
	return img, img.Close, nil
}

func run(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	serialPort := md.AddString("serial", "", "serial port of the SD card reader")
	baud := md.AddInt("baud", 115200, "baud rate of the serial port")
	resident := md.AddString("resident", "", "resident image. a minimal stub is used if not specified")
	cmdlinePrefs := md.AddString("prefs", "", "preferences for this run. eg. \"loader.defaultSlot::2\"")
	mon := md.AddBool("monitor", false, "start the interactive monitor")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	memviz := md.AddBool("memviz", false, "write cartridge structure to a graphviz file on exit")
	log := md.AddBool("log", false, "echo log to stdout")

	md.AdditionalHelp("the SD card image is the only argument. it is not required if -serial is used")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, false)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("stats server not available in this build")
		}
		statsview.Launch(os.Stdout)
	}

	if len(md.RemainingArgs()) > 1 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	env, err := newEnvironment(*cmdlinePrefs, notices{output: os.Stdout})
	if err != nil {
		return err
	}

	dev, closeDev, err := openDevice(*serialPort, *baud, md.GetArg(0))
	if err != nil {
		return err
	}
	defer closeDev()

	res := hardware.ResidentStub()
	if *resident != "" {
		res, err = os.ReadFile(*resident)
		if err != nil {
			return err
		}
	}

	rec := &audio.Recorder{Max: audioEvents}
	dig := digest.NewAudio()
	cart, err := hardware.NewCartridge(env, dev, audio.Tee{rec, dig}, res)
	if err != nil {
		return err
	}
	logger.Logf(env, "sdcart", "%s: %s", version.String(), dev)
	cart.Start(ctx)

	defer func() {
		if dig.Events() > 0 {
			fmt.Printf("audio: %s\n", dig)
		}
	}()

	if *memviz {
		defer func() {
			var title string
			if h := cart.Session.Header(); h != nil {
				title = h.Title
			}
			f, err := os.Create(fmt.Sprintf("%s.dot", paths.UniqueFilename("memviz", title)))
			if err != nil {
				logger.Log(env, "sdcart", err)
				return
			}
			defer f.Close()
			cart.DumpStructure(f)
		}()
	}

	if *mon {
		var term easyterm.Terminal
		if err := term.Initialise(os.Stdin, os.Stdout); err != nil {
			return err
		}
		defer term.CleanUp()
		term.CBreakMode()

		return monitor.NewMonitor(env, cart, rec, os.Stdout).Run(ctx, os.Stdin)
	}

	// without the monitor the host behaves like the resident stub. the
	// selection is committed and the loaded image is verified
	cart.Bus.Write(ctx, memorymap.ControlRegister, hostbus.CommandCommit|uint8(cart.Session.Selection()))

	st, err := cart.WaitForLoad(ctx)
	if err != nil {
		return err
	}
	fmt.Println(cart.Status())

	sum, err := cart.Verify(ctx)
	if err != nil {
		return err
	}
	if sum != st.Checksum {
		return fmt.Errorf("checksum mismatch: %08x != %08x", sum, st.Checksum)
	}

	return nil
}

func provisionCard(md *modalflag.Modes) error {
	md.NewMode()

	cmdlinePrefs := md.AddString("prefs", "", "preferences that affect the layout of the card")
	md.AdditionalHelp("the first argument is the card image to create. the remaining arguments are games or archives of games")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) < 2 {
		return fmt.Errorf("card image and at least one game required for %s mode", md)
	}

	env, err := newEnvironment(*cmdlinePrefs, nil)
	if err != nil {
		return err
	}

	l := provision.NewLayout(env.Prefs)

	games, err := provision.Expand(md.RemainingArgs()[1:])
	if err != nil {
		return err
	}

	f, err := os.Create(md.GetArg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	err = provision.BuildImage(f, l, games)
	if err != nil {
		return err
	}

	for i, g := range games {
		fmt.Printf("%3d  sector %-6d %s\n", i, l.SlotSector(i), provision.Title(g))
	}

	return nil
}

func inspect(ctx context.Context, md *modalflag.Modes) error {
	md.NewMode()

	serialPort := md.AddString("serial", "", "serial port of the SD card reader")
	baud := md.AddInt("baud", 115200, "baud rate of the serial port")
	cmdlinePrefs := md.AddString("prefs", "", "preferences that affect the layout of the card")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	env, err := newEnvironment(*cmdlinePrefs, nil)
	if err != nil {
		return err
	}

	dev, closeDev, err := openDevice(*serialPort, *baud, md.GetArg(0))
	if err != nil {
		return err
	}
	defer closeDev()

	entries, err := provision.Inspect(ctx, env, dev)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no games found")
	}

	for _, e := range entries {
		fmt.Println(e)
	}

	return nil
}

func ports() error {
	l, err := sdcard.Ports()
	if err != nil {
		return err
	}
	if len(l) == 0 {
		fmt.Println("no serial ports found")
	}
	for _, p := range l {
		fmt.Println(p)
	}
	return nil
}
