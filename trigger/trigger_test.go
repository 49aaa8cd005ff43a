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

package trigger_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/test"
	"github.com/jetsetilly/scenepipe/trigger"
)

var _ pipeline.Trigger = (*trigger.Event)(nil)

const timeout = 2 * time.Second

func TestNilCallback(t *testing.T) {
	_, err := trigger.NewEvent(nil)
	test.ExpectFailure(t, err)
}

func TestTrigger(t *testing.T) {
	called := make(chan struct{}, 10)
	e, err := trigger.NewEvent(func() { called <- struct{}{} })
	test.DemandSuccess(t, err)

	e.Trigger()
	test.ExpectCompletion(t, called, timeout)

	e.Trigger()
	test.ExpectCompletion(t, called, timeout)

	test.ExpectSuccess(t, e.Close())
	test.ExpectSuccess(t, e.Close())

	// triggering a closed event does nothing
	e.Trigger()
	test.ExpectBlocked(t, called, 20*time.Millisecond)
}

func TestCoalesce(t *testing.T) {
	var count atomic.Int64
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	e, err := trigger.NewEvent(func() {
		if count.Add(1) == 1 {
			started <- struct{}{}
			<-release
		}
	})
	test.DemandSuccess(t, err)
	defer e.Close()

	// the first callback is held while more triggers arrive
	e.Trigger()
	test.DemandCompletion(t, started, timeout)
	for range 10 {
		e.Trigger()
	}
	close(release)

	deadline := time.Now().Add(timeout)
	for count.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	test.ExpectEquality(t, count.Load(), int64(2))
}

func TestCloseWaitsForCallback(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{}, 1)

	e, err := trigger.NewEvent(func() {
		started <- struct{}{}
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})
	test.DemandSuccess(t, err)

	e.Trigger()
	test.DemandCompletion(t, started, timeout)
	test.ExpectSuccess(t, e.Close())
	test.ExpectEquality(t, finished.Load(), true)
}

func TestTriggerDuringClose(t *testing.T) {
	for range 20 {
		e, err := trigger.NewEvent(func() {})
		test.DemandSuccess(t, err)

		var wg sync.WaitGroup
		stop := make(chan struct{})
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
						e.Trigger()
					}
				}
			}()
		}

		time.Sleep(time.Millisecond)
		test.ExpectSuccess(t, e.Close())

		// a new event is likely to reuse the descriptors of the closed one.
		// triggers still arriving at the closed event must not reach it
		var spurious atomic.Int64
		n, err := trigger.NewEvent(func() { spurious.Add(1) })
		test.DemandSuccess(t, err)

		time.Sleep(5 * time.Millisecond)
		close(stop)
		wg.Wait()
		time.Sleep(5 * time.Millisecond)

		test.ExpectSuccess(t, n.Close())
		test.ExpectEquality(t, spurious.Load(), int64(0))
	}
}
