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

package environment

import (
	"github.com/jetsetilly/sdcart/hardware/preferences"
	"github.com/jetsetilly/sdcart/notifications"
)

// Label is used to name the environment.
type Label string

// MainCartridge is the label used for the main cartridge instance. This is
// the instance whose log entries are recorded.
const MainCartridge = Label("")

// Environment is used to provide context for a cartridge. Particularly
// useful when running more than one cartridge at once.
type Environment struct {
	Label Label

	// the cartridge preferences
	Prefs *preferences.Preferences

	// notices are forwarded to this implementation. can be nil
	Notices notifications.Notify
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The Notify and Preferences arguments may be nil. If the preferences are nil
// then a new set of preferences with default values is created.
func NewEnvironment(label Label, notify notifications.Notify, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label:   label,
		Notices: notify,
	}

	if prefs == nil {
		var err error
		prefs, err = preferences.NewPreferences("")
		if err != nil {
			return nil, err
		}
	}
	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// regression testing where the initial state must be the same for every run.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsMainCartridge returns true if the environment is for the main cartridge
// instance.
func (env *Environment) IsMainCartridge() bool {
	return env.Label == MainCartridge
}

// AllowLogging implements the logger.Permission interface. Only the main
// cartridge instance creates log entries.
func (env *Environment) AllowLogging() bool {
	return env.IsMainCartridge()
}

// Notify implements the notifications.Notify interface. The notice is
// dropped if there is no Notify implementation.
func (env *Environment) Notify(notice notifications.Notice) error {
	if env.Notices == nil {
		return nil
	}
	return env.Notices.Notify(notice)
}
