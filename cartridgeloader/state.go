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

package cartridgeloader

// State of the loader.
type State int

// List of valid State values. The numeric values are visible to the host
// through the control register and must fit in four bits.
const (
	Idle State = iota
	AwaitReady
	Seek
	ReadSector
	Scan
	Found
	VerifyHeader
	Stream
	Complete
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitReady:
		return "await ready"
	case Seek:
		return "seek"
	case ReadSector:
		return "read sector"
	case Scan:
		return "scan"
	case Found:
		return "found"
	case VerifyHeader:
		return "verify header"
	case Stream:
		return "stream"
	case Complete:
		return "complete"
	case Error:
		return "error"
	}
	return "unknown"
}

// Finished returns true if the state is Complete or Error.
func (s State) Finished() bool {
	return s == Complete || s == Error
}
