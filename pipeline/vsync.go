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
	"time"

	"github.com/jetsetilly/scenepipe/assert"
	"github.com/jetsetilly/scenepipe/logger"
)

// VSyncNotifier paces the pipeline. It produces one VSyncTick for every
// update/render cycle, either by waiting on the hardware vsync of a
// VSyncMonitor or by sleeping for the remainder of the frame budget.
type VSyncNotifier struct {
	sync    *Synchronisation
	monitor VSyncMonitor

	// hardware vsync is wanted. whether it is used depends on the monitor
	wantHardware bool

	// the monitor was initialised successfully and must be terminated
	initialised bool

	// the hardware vsync is being used
	hardware bool

	// frame number of the most recent tick. only accessed by the vsync
	// goroutine
	frameNumber uint32

	quit chan struct{}
	done chan struct{}
}

// NewVSyncNotifier is the preferred method of initialisation for the
// VSyncNotifier type. The monitor can be nil, in which case the software
// timer is always used.
func NewVSyncNotifier(s *Synchronisation, monitor VSyncMonitor, opts Options) *VSyncNotifier {
	return &VSyncNotifier{
		sync:         s,
		monitor:      monitor,
		wantHardware: opts.HardwareVSync,
	}
}

// Start the vsync goroutine. Must only be called once.
func (vs *VSyncNotifier) Start() {
	assert.Always(vs.done == nil, "vsync notifier already started")

	if vs.monitor != nil {
		vs.initialised = vs.monitor.Initialize()
		vs.hardware = vs.wantHardware && vs.initialised && vs.monitor.UseHardware()
	}
	if !vs.hardware {
		logger.Log(logger.Allow, "vsync", "using fallback timed thread")
	}

	vs.quit = make(chan struct{})
	vs.done = make(chan struct{})
	go vs.run()
}

// Hardware returns true if the hardware vsync is being used. Only meaningful
// after Start().
func (vs *VSyncNotifier) Hardware() bool {
	return vs.hardware
}

// Stop waits for the vsync goroutine to end and then terminates the
// VSyncMonitor. The Synchronisation must have been stopped before calling
// this function.
func (vs *VSyncNotifier) Stop() {
	if vs.done == nil {
		return
	}

	close(vs.quit)
	<-vs.done

	if vs.initialised {
		vs.monitor.Terminate()
		vs.initialised = false
	}
}

func (vs *VSyncNotifier) run() {
	defer close(vs.done)

	for {
		start := time.Now()
		vsyncsPerRender := vs.sync.VSyncsPerRender()

		var tick VSyncTick
		if vs.hardware {
			tick = vs.hardwareSync(vsyncsPerRender)
		} else {
			tick = softwareTick(start)
		}

		vs.frameNumber++
		tick.FrameNumber = vs.frameNumber

		if !vs.sync.VSyncNotifierSyncWithUpdateAndRender(tick) {
			return
		}

		if !vs.hardware {
			budget := FrameBudget * time.Duration(vsyncsPerRender)
			if !vs.sleep(budget - time.Since(start)) {
				return
			}
		}
	}
}

// wait for the number of hardware vsyncs. the tick is for the final vsync
func (vs *VSyncNotifier) hardwareSync(n int) VSyncTick {
	var tick VSyncTick
	for range n {
		_, sec, usec, valid := vs.monitor.DoSync()
		tick = VSyncTick{
			Valid:        valid,
			Seconds:      sec,
			Microseconds: usec,
		}
	}
	return tick
}

func softwareTick(t time.Time) VSyncTick {
	return VSyncTick{
		Valid:        true,
		Seconds:      uint32(t.Unix()),
		Microseconds: uint32(t.Nanosecond() / 1000),
	}
}

// sleep for the duration, which can be negative if the frame overran its
// budget. returns false if Stop() was called during the sleep
func (vs *VSyncNotifier) sleep(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-vs.quit:
			return false
		default:
			return true
		}
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-vs.quit:
		return false
	case <-t.C:
		return true
	}
}
