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

package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/jetsetilly/scenepipe/logger"
)

// the watchdog notices when the render goroutine has stopped making
// progress. it cannot do anything about it except log a warning
type watchdog struct {
	sync      *Synchronisation
	threshold time.Duration
	interval  time.Duration

	// the number of stalls detected. a stall that continues over several
	// checks is counted once
	stalls atomic.Int64

	quit chan struct{}
	done chan struct{}
}

// the longest time between checks by the watchdog
const maxWatchdogInterval = 250 * time.Millisecond

func newWatchdog(s *Synchronisation, threshold time.Duration) *watchdog {
	interval := threshold / 4
	if interval > maxWatchdogInterval {
		interval = maxWatchdogInterval
	} else if interval < time.Millisecond {
		interval = time.Millisecond
	}

	return &watchdog{
		sync:      s,
		threshold: threshold,
		interval:  interval,
	}
}

func (wd *watchdog) start() {
	wd.quit = make(chan struct{})
	wd.done = make(chan struct{})
	go wd.run()
}

func (wd *watchdog) stop() {
	if wd.done == nil {
		return
	}
	close(wd.quit)
	<-wd.done
}

func (wd *watchdog) run() {
	defer close(wd.done)

	ticker := time.NewTicker(wd.interval)
	defer ticker.Stop()

	var stalled bool

	for {
		select {
		case <-wd.quit:
			return
		case <-ticker.C:
		}

		d := wd.sync.SinceRenderFinished()
		if d > wd.threshold {
			if !stalled {
				stalled = true
				wd.stalls.Add(1)
				logger.Logf(logger.Allow, "render", "no progress for %.1f seconds", d.Seconds())
			}
		} else if stalled {
			stalled = false
			logger.Log(logger.Allow, "render", "progress resumed")
		}
	}
}
