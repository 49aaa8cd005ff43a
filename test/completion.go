// This file is part of Scenepipe.
//
// Scenepipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Scenepipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Scenepipe.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"testing"
	"time"
)

// ExpectCompletion waits for the done channel to be closed (or to receive a
// value). The test fails if that doesn't happen before the timeout
func ExpectCompletion(t *testing.T, done <-chan struct{}, timeout time.Duration, tags ...any) bool {
	t.Helper()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		t.Errorf("%sdid not complete within %v", id(tags...), timeout)
		return false
	}
}

// DemandCompletion is the same as ExpectCompletion except that failure is a
// testing fatality. Use this when the test cannot continue safely if the
// operation is still running
func DemandCompletion(t *testing.T, done <-chan struct{}, timeout time.Duration, tags ...any) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("%sdid not complete within %v", id(tags...), timeout)
	}
}

// ExpectBlocked checks that the done channel is not closed within the
// duration. It is the complement of ExpectCompletion and is used to show that
// an operation is waiting on a condition
func ExpectBlocked(t *testing.T, done <-chan struct{}, duration time.Duration, tags ...any) bool {
	t.Helper()
	select {
	case <-done:
		t.Errorf("%scompleted but was expected to block", id(tags...))
		return false
	case <-time.After(duration):
		return true
	}
}

// Go runs the function in a new goroutine and returns a channel that is
// closed when the function returns
func Go(f func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	return done
}
