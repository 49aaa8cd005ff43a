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

// Package keyboard reads single key presses from the controlling terminal.
// The terminal is put into cbreak mode for the lifetime of the Keyboard so
// that keys are delivered without waiting for the return key.
package keyboard

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/term"
)

// list of ASCII codes for non-alphanumeric keys.
const (
	KeyInterrupt = 3
	KeyEsc       = 27
)

// list of ASCII codes that can follow KeyEsc.
const (
	EscCursor = 91
)

// list of ASCII codes that can follow EscCursor.
const (
	CursorUp       = 'A'
	CursorDown     = 'B'
	CursorForward  = 'C'
	CursorBackward = 'D'
)

// Key is a single key press. Cursor keys are reported with Cursor set to one
// of the Cursor values and Rune set to zero.
type Key struct {
	Rune   rune
	Cursor byte
}

// how long a read will wait before checking whether the keyboard has been
// closed.
const readTimeout = 100 * time.Millisecond

// Keyboard reads key presses from a terminal.
type Keyboard struct {
	t *term.Term

	closed chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Open the named terminal. Usually "/dev/tty".
func Open(device string) (*Keyboard, error) {
	t, err := term.Open(device, term.CBreakMode, term.ReadTimeout(readTimeout))
	if err != nil {
		return nil, fmt.Errorf("keyboard: %w", err)
	}
	return &Keyboard{
		t:      t,
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Run calls the handler for every key press until Close() is called, the
// handler returns false or reading fails. Run must only be called once.
func (kb *Keyboard) Run(handler func(k Key) bool) error {
	defer close(kb.done)
	return run(kb.t, kb.closed, handler)
}

// Close stops a running Run() and restores the terminal.
func (kb *Keyboard) Close() error {
	var err error
	kb.once.Do(func() {
		close(kb.closed)
		_ = kb.t.Restore()
		err = kb.t.Close()
	})
	return err
}

// Wait for Run() to return. Only valid if Run() has been called.
func (kb *Keyboard) Wait() {
	<-kb.done
}

// run is separate from Keyboard.Run() so that it can be tested with any
// io.Reader.
func run(r io.Reader, closed <-chan struct{}, handler func(k Key) bool) error {
	var b [1]byte
	var esc int

	for {
		select {
		case <-closed:
			return nil
		default:
		}

		n, err := r.Read(b[:])
		if err != nil {
			if errors.Is(err, io.EOF) {
				continue // for loop
			}
			select {
			case <-closed:
				return nil
			default:
			}
			return fmt.Errorf("keyboard: %w", err)
		}
		if n == 0 {
			continue // for loop
		}

		var k Key

		switch esc {
		case 1:
			if b[0] == EscCursor {
				esc = 2
			} else {
				esc = 0
			}
			continue // for loop
		case 2:
			esc = 0
			k.Cursor = b[0]
		default:
			if b[0] == KeyEsc {
				esc = 1
				continue // for loop
			}
			k.Rune = rune(b[0])
		}

		if !handler(k) {
			return nil
		}
	}
}
