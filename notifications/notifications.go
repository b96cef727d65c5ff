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

package notifications

// Notice describes events that somehow change the presentation of the
// cartridge. These notices can be used to present additional information to
// the user of the cartridge.
type Notice string

// List of defined notifications.
const (
	// the loader has started searching for a game image
	NotifyLoadStarted Notice = "NotifyLoadStarted"

	// the payload has been completely written to the backing store
	NotifyLoadComplete Notice = "NotifyLoadComplete"

	// the loader stopped with an error. the resident image continues to be
	// served
	NotifyLoadFailed Notice = "NotifyLoadFailed"

	// the host bus has switched from the resident image to the loaded image
	NotifyImageCommitted Notice = "NotifyImageCommitted"

	// a diagnostic reload has been requested through the control register
	NotifyReload Notice = "NotifyReload"
)

// Notify is used for direct communication between the hardware and the
// user interface (if there is one).
type Notify interface {
	Notify(notice Notice) error
}
