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

//go:build linux

package trigger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/jetsetilly/scenepipe/logger"
	"golang.org/x/sys/unix"
)

// Event is a triggerable event backed by an eventfd.
type Event struct {
	fd       int
	stopFd   int
	callback func()

	// a trigger holds the read lock while it writes to the eventfd so that
	// the descriptor cannot be closed, and its number reused, underneath it
	crit      sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewEvent is the preferred method of initialisation for the Event type.
func NewEvent(callback func()) (*Event, error) {
	if callback == nil {
		return nil, fmt.Errorf("trigger: nil callback")
	}

	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("trigger: %w", err)
	}

	stopFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("trigger: %w", err)
	}

	e := &Event{
		fd:       fd,
		stopFd:   stopFd,
		callback: callback,
		done:     make(chan struct{}),
	}
	go e.run()

	return e, nil
}

// Fd returns the eventfd file descriptor.
func (e *Event) Fd() int {
	return e.fd
}

// Trigger the event. Safe to call from any goroutine and after Close().
func (e *Event) Trigger() {
	e.crit.RLock()
	defer e.crit.RUnlock()

	if e.closed {
		return
	}
	if err := signal(e.fd); err != nil {
		logger.Log(logger.Allow, "trigger", err)
	}
}

func signal(fd int) error {
	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	_, err := unix.Write(fd, b[:])

	// the counter is saturated, which means the event is already pending
	if errors.Is(err, unix.EAGAIN) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("trigger: %w", err)
	}
	return nil
}

func (e *Event) run() {
	defer close(e.done)

	fds := []unix.PollFd{
		{Fd: int32(e.fd), Events: unix.POLLIN},
		{Fd: int32(e.stopFd), Events: unix.POLLIN},
	}

	var b [8]byte

	for {
		fds[0].Revents = 0
		fds[1].Revents = 0

		_, err := unix.Poll(fds, -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			logger.Logf(logger.Allow, "trigger", "poll: %v", err)
			return
		}

		if fds[1].Revents&unix.POLLIN == unix.POLLIN {
			return
		}

		if fds[0].Revents&unix.POLLIN == unix.POLLIN {
			// reading resets the counter. any number of triggers result in
			// one call to the callback
			_, err := unix.Read(e.fd, b[:])
			if err == nil {
				e.callback()
			} else if !errors.Is(err, unix.EAGAIN) {
				logger.Logf(logger.Allow, "trigger", "read: %v", err)
			}
		}
	}
}

// Close stops the callback goroutine and releases the eventfd. Any callback
// in progress completes before Close() returns.
func (e *Event) Close() error {
	var err error

	e.closeOnce.Do(func() {
		// no trigger is writing to the eventfd once the write lock is held
		// and none will start afterwards
		e.crit.Lock()
		e.closed = true
		e.crit.Unlock()

		if err = signal(e.stopFd); err != nil {
			return
		}
		<-e.done

		if cerr := unix.Close(e.fd); cerr != nil {
			err = fmt.Errorf("trigger: %w", cerr)
		}
		if cerr := unix.Close(e.stopFd); cerr != nil && err == nil {
			err = fmt.Errorf("trigger: %w", cerr)
		}
	})

	return err
}
