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

package sdcard

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// the serial bridge protocol is command based. every command is four ASCII
// bytes, optionally followed by an argument
//
//	SDST		answer is one status byte
//	SDRD nnnn	nnnn is the sector index (big-endian). answer is one status
//			byte, then the 512 bytes of the sector if the status is
//			statusOK
//	SDSZ		answer is the number of sectors on the card (four bytes,
//			big-endian)
var (
	cmdStatus = []byte("SDST")
	cmdRead   = []byte("SDRD")
	cmdSize   = []byte("SDSZ")
)

const (
	// the status byte of a card that is idle and ready
	statusReady = 0x06

	// the status byte at the start of a successful sector read
	statusOK = 0x00
)

// how long a single call to Read() on the port can block. the sector timeout
// is enforced by the Reader, this only needs to be short enough that a
// cancelled read is noticed quickly
const portReadTimeout = 50 * time.Millisecond

// Serial is an SD card attached through a USB serial bridge.
type Serial struct {
	portName string

	// the port is shared by every command so only one command can be in
	// progress at once
	crit    sync.Mutex
	port    serial.Port
	sectors int
}

// Ports returns the list of serial ports on the system.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// OpenSerial opens the named port at the baud rate and queries the number of
// sectors on the card.
func OpenSerial(portName string, baud int) (*Serial, error) {
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("sdcard: %s: %w", portName, err)
	}

	ser := &Serial{
		portName: portName,
		port:     port,
	}

	err = port.SetReadTimeout(portReadTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("sdcard: %s: %w", portName, err)
	}

	err = port.SetDTR(true)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("sdcard: %s: %w", portName, err)
	}

	err = port.ResetInputBuffer()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("sdcard: %s: %w", portName, err)
	}

	var sz [4]byte
	err = ser.command(context.Background(), cmdSize, sz[:])
	if err != nil {
		ser.Close()
		return nil, fmt.Errorf("sdcard: %s: %w", portName, err)
	}
	ser.sectors = int(binary.BigEndian.Uint32(sz[:]))

	return ser, nil
}

func (ser *Serial) String() string {
	return fmt.Sprintf("%s (%d sectors)", ser.portName, ser.sectors)
}

// Close the serial port.
func (ser *Serial) Close() error {
	ser.crit.Lock()
	defer ser.crit.Unlock()
	ser.port.SetDTR(false)
	return ser.port.Close()
}

// Sectors implements the Device interface.
func (ser *Serial) Sectors() int {
	return ser.sectors
}

// Ready implements the Device interface. The card is asked for its status
// every time the function is called. A card that does not answer is not
// ready.
func (ser *Serial) Ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 4*portReadTimeout)
	defer cancel()

	var status [1]byte
	if err := ser.command(ctx, cmdStatus, status[:]); err != nil {
		return false
	}
	return status[0] == statusReady
}

// OpenSector implements the Device interface. The serial port remains
// reserved for the sector until the returned ReadCloser is closed.
func (ser *Serial) OpenSector(ctx context.Context, index int) (io.ReadCloser, error) {
	ser.crit.Lock()

	cmd := make([]byte, 0, len(cmdRead)+4)
	cmd = append(cmd, cmdRead...)
	cmd = binary.BigEndian.AppendUint32(cmd, uint32(index))

	var status [1]byte
	err := ser.exchange(ctx, cmd, status[:])
	if err != nil {
		ser.crit.Unlock()
		return nil, err
	}
	if status[0] != statusOK {
		ser.crit.Unlock()
		return nil, fmt.Errorf("read command failed with status %#02x", status[0])
	}

	return &serialSector{ser: ser, ctx: ctx, remaining: SectorSize}, nil
}

// command sends the command and reads the answer into rsp.
func (ser *Serial) command(ctx context.Context, cmd []byte, rsp []byte) error {
	ser.crit.Lock()
	defer ser.crit.Unlock()
	return ser.exchange(ctx, cmd, rsp)
}

// exchange must be called with the critical section held.
func (ser *Serial) exchange(ctx context.Context, cmd []byte, rsp []byte) error {
	for sent := 0; sent < len(cmd); {
		n, err := ser.port.Write(cmd[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return ser.receive(ctx, rsp)
}

// receive fills rsp from the port. must be called with the critical section
// held.
func (ser *Serial) receive(ctx context.Context, rsp []byte) error {
	for o := 0; o < len(rsp); {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := ser.port.Read(rsp[o:])
		if err != nil {
			return err
		}

		// a read of zero bytes is a port read timeout. try again unless the
		// context has been cancelled
		o += n
	}
	return nil
}

// serialSector is the io.ReadCloser returned by OpenSector().
type serialSector struct {
	ser       *Serial
	ctx       context.Context
	remaining int
}

func (s *serialSector) Read(p []byte) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	if s.ser == nil {
		return 0, io.ErrClosedPipe
	}
	if len(p) > s.remaining {
		p = p[:s.remaining]
	}

	var n int
	for n == 0 {
		if err := s.ctx.Err(); err != nil {
			s.release()
			return 0, err
		}

		var err error
		n, err = s.ser.port.Read(p)
		if err != nil {
			s.release()
			return n, err
		}
	}

	s.remaining -= n

	return n, nil
}

func (s *serialSector) Close() error {
	s.release()
	return nil
}

// release the serial port for the next command. a sector that is abandoned
// part way through leaves bytes in the input buffer which must be discarded
func (s *serialSector) release() {
	if s.ser == nil {
		return
	}
	if s.remaining > 0 {
		s.ser.port.ResetInputBuffer()
	}
	s.ser.crit.Unlock()
	s.ser = nil
}
