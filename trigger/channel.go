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

//go:build !linux

package trigger

import (
	"fmt"
	"sync"
)

// Event is a triggerable event backed by a channel.
type Event struct {
	callback func()

	ch        chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewEvent is the preferred method of initialisation for the Event type.
func NewEvent(callback func()) (*Event, error) {
	if callback == nil {
		return nil, fmt.Errorf("trigger: nil callback")
	}

	e := &Event{
		callback: callback,
		ch:       make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go e.run()

	return e, nil
}

// Trigger the event. Safe to call from any goroutine and after Close().
func (e *Event) Trigger() {
	select {
	case <-e.quit:
	case e.ch <- struct{}{}:
	default:
		// already pending
	}
}

func (e *Event) run() {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		case <-e.ch:
			e.callback()
		}
	}
}

// Close stops the callback goroutine. Any callback in progress completes
// before Close() returns.
func (e *Event) Close() error {
	e.closeOnce.Do(func() {
		close(e.quit)
		<-e.done
	})
	return nil
}
