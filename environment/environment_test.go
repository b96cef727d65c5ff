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

package environment_test

import (
	"testing"

	"github.com/jetsetilly/sdcart/environment"
	"github.com/jetsetilly/sdcart/logger"
	"github.com/jetsetilly/sdcart/notifications"
	"github.com/jetsetilly/sdcart/test"
)

type notices struct {
	received []notifications.Notice
}

func (n *notices) Notify(notice notifications.Notice) error {
	n.received = append(n.received, notice)
	return nil
}

func TestEnvironment(t *testing.T) {
	n := &notices{}

	env, err := environment.NewEnvironment(environment.MainCartridge, n, nil)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, env.IsMainCartridge())
	test.ExpectSuccess(t, env.AllowLogging())
	test.ExpectEquality(t, env.Prefs.Loader.HeaderLen.Int(), 128)

	test.ExpectSuccess(t, env.Notify(notifications.NotifyLoadComplete))
	test.DemandEquality(t, len(n.received), 1)
	test.ExpectEquality(t, n.received[0], notifications.NotifyLoadComplete)

	var _ logger.Permission = env
}

func TestSecondaryEnvironment(t *testing.T) {
	env, err := environment.NewEnvironment("verify", nil, nil)
	test.DemandSuccess(t, err)
	test.ExpectFailure(t, env.IsMainCartridge())
	test.ExpectFailure(t, env.AllowLogging())

	// no Notify implementation is not an error
	test.ExpectSuccess(t, env.Notify(notifications.NotifyLoadStarted))
}
