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

package keyboard

import (
	"strings"
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/test"
)

const (
	blocked    = 25 * time.Millisecond
	completion = 2 * time.Second
)

func TestRun(t *testing.T) {
	input := strings.NewReader("ab\x1b[Aq")
	closed := make(chan struct{})

	var keys []Key
	err := run(input, closed, func(k Key) bool {
		keys = append(keys, k)
		return k.Rune != 'q'
	})
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(keys), 4)
	test.ExpectEquality(t, keys[0], Key{Rune: 'a'})
	test.ExpectEquality(t, keys[1], Key{Rune: 'b'})
	test.ExpectEquality(t, keys[2], Key{Cursor: CursorUp})
	test.ExpectEquality(t, keys[3], Key{Rune: 'q'})
}

func TestRunClosed(t *testing.T) {
	closed := make(chan struct{})
	close(closed)

	err := run(strings.NewReader("abc"), closed, func(k Key) bool {
		t.Errorf("unexpected key: %v", k)
		return true
	})
	test.ExpectSuccess(t, err)
}

// timeoutReader returns no data until it is told to return a key
type timeoutReader struct {
	keys chan byte
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	select {
	case k := <-r.keys:
		p[0] = k
		return 1, nil
	default:
		time.Sleep(time.Millisecond)
		return 0, nil
	}
}

func TestRunCloseWhileWaiting(t *testing.T) {
	r := &timeoutReader{keys: make(chan byte, 1)}
	closed := make(chan struct{})

	seen := make(chan Key, 1)
	done := test.Go(func() {
		_ = run(r, closed, func(k Key) bool {
			seen <- k
			return true
		})
	})

	r.keys <- 'x'
	test.ExpectEquality(t, <-seen, Key{Rune: 'x'})

	test.ExpectBlocked(t, done, blocked)
	close(closed)
	test.ExpectCompletion(t, done, completion)
}
