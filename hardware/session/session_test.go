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

package session_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jetsetilly/sdcart/hardware/memory/imageheader"
	"github.com/jetsetilly/sdcart/hardware/session"
	"github.com/jetsetilly/sdcart/test"
)

func TestCommitAfterComplete(t *testing.T) {
	s := session.NewSession(0)
	test.ExpectEquality(t, s.Mode(), session.Resident)

	test.ExpectFailure(t, s.Complete(imageheader.Header{Title: "test"}))
	test.ExpectEquality(t, s.Mode(), session.Resident)
	test.ExpectEquality(t, s.Header().Title, "test")

	test.ExpectSuccess(t, s.Commit())
	test.ExpectEquality(t, s.Mode(), session.Loaded)

	// committing again changes nothing
	test.ExpectFailure(t, s.Commit())
	test.ExpectEquality(t, s.Mode(), session.Loaded)
}

func TestPendingCommit(t *testing.T) {
	s := session.NewSession(0)

	test.ExpectFailure(t, s.Commit())
	test.ExpectSuccess(t, s.Pending())
	test.ExpectEquality(t, s.Mode(), session.Resident)

	test.ExpectSuccess(t, s.Complete(imageheader.Header{}))
	test.ExpectEquality(t, s.Mode(), session.Loaded)
	test.ExpectFailure(t, s.Pending())
}

func TestFailure(t *testing.T) {
	s := session.NewSession(0)
	s.Commit()
	s.Fail()
	test.ExpectSuccess(t, s.Failed())
	test.ExpectEquality(t, s.Mode(), session.Resident)
	test.ExpectSuccess(t, s.Header() == nil)
}

func TestSelectAndReset(t *testing.T) {
	s := session.NewSession(2)
	test.ExpectEquality(t, s.Selection(), 2)

	s.Complete(imageheader.Header{})
	test.ExpectSuccess(t, s.Select(3))
	test.ExpectEquality(t, s.Selection(), 3)
	test.ExpectFailure(t, s.Eligible())

	s.Complete(imageheader.Header{})
	s.Commit()
	test.ExpectEquality(t, s.Mode(), session.Loaded)

	// selection is not possible once the mode has flipped
	test.ExpectFailure(t, s.Select(4))
	test.ExpectEquality(t, s.Selection(), 3)

	s.Reset(5)
	test.ExpectEquality(t, s.Mode(), session.Resident)
	test.ExpectEquality(t, s.Selection(), 5)
	test.ExpectFailure(t, s.Eligible())
	test.ExpectFailure(t, s.Pending())
}

// the mode must flip exactly once however many goroutines try to commit.
func TestIdempotence(t *testing.T) {
	for n := 0; n < 50; n++ {
		s := session.NewSession(0)

		var flips atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if s.Commit() {
					flips.Add(1)
				}
			}()
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Complete(imageheader.Header{}) {
				flips.Add(1)
			}
		}()

		wg.Wait()
		test.ExpectEquality(t, flips.Load(), int32(1))
		test.ExpectEquality(t, s.Mode(), session.Loaded)
	}
}
