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
	"fmt"
	"os"

	"github.com/jetsetilly/scenepipe/assert"
	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline/fps"
)

// UpdateThread drives the Update step of the Core. It runs once for every
// vsync tick, publishes the frame to the render goroutine and sleeps when the
// scene has nothing to do.
type UpdateThread struct {
	sync    *Synchronisation
	core    Core
	trigger Trigger

	// nil if FPS tracking is disabled
	fps     *fps.Tracker
	fpsFile string

	// log the update status every N frames. zero disables logging
	statusLogInterval int
	statusLogCount    int

	done chan struct{}
}

// NewUpdateThread is the preferred method of initialisation for the
// UpdateThread type.
func NewUpdateThread(s *Synchronisation, services Services, opts Options) *UpdateThread {
	assert.Always(services.Core != nil, "update thread requires a core")

	ut := &UpdateThread{
		sync:              s,
		core:              services.Core,
		trigger:           services.Trigger,
		fpsFile:           opts.FPSFile,
		statusLogInterval: opts.UpdateStatusLogInterval,
	}

	if opts.FPSTrackingSeconds > 0 {
		var err error
		ut.fps, err = fps.NewTracker(opts.FPSTrackingSeconds)
		if err != nil {
			logger.Log(logger.Allow, "update", err)
		}
	}

	return ut
}

// Start the update goroutine. Must only be called once.
func (ut *UpdateThread) Start() {
	assert.Always(ut.done == nil, "update thread already started")
	ut.done = make(chan struct{})
	go ut.run()
}

// Stop waits for the update goroutine to end. The Synchronisation must have
// been stopped before calling this function.
func (ut *UpdateThread) Stop() {
	if ut.done == nil {
		return
	}
	<-ut.done
}

func (ut *UpdateThread) run() {
	defer close(ut.done)
	defer ut.flushFPS()

	for ut.sync.UpdateReadyToRun() {
		var status UpdateStatus
		ut.core.Update(ut.sync.UpdateSlot(), &status)

		if ut.fps != nil && !ut.fps.Full() {
			if ut.fps.Track(status.SecondsFromLastFrame) {
				ut.flushFPS()
			}
		}

		if status.NeedsNotification && ut.trigger != nil {
			ut.trigger.Trigger()
		}

		renderNeedsUpdate, running := ut.sync.UpdateSyncWithRender()

		ut.logStatus(status.KeepUpdating)

		if !running {
			break
		}

		if status.KeepUpdating == NotRequested && !renderNeedsUpdate {
			if !ut.sync.UpdateTryToSleep() {
				break
			}
		}
	}
}

func (ut *UpdateThread) logStatus(keep KeepUpdating) {
	if ut.statusLogInterval <= 0 {
		return
	}

	ut.statusLogCount++
	if ut.statusLogCount < ut.statusLogInterval {
		return
	}
	ut.statusLogCount = 0

	logger.Logf(logger.Allow, "update", "keepUpdating: %t because: %s", keep != NotRequested, keep)
}

// write the FPS samples to the log and to the FPS file. the samples are only
// ever written once
func (ut *UpdateThread) flushFPS() {
	if ut.fps == nil {
		return
	}

	trk := ut.fps
	ut.fps = nil

	samples := trk.Samples()
	if len(samples) == 0 {
		return
	}

	for i, s := range samples {
		logger.Logf(logger.Allow, "fps", "fps( %d ):%f", i, s.Frames)
	}

	if ut.fpsFile == "" {
		return
	}

	if err := writeFPS(ut.fpsFile, trk); err != nil {
		logger.Log(logger.Allow, "fps", err)
		return
	}
	logger.Logf(logger.Allow, "fps", "written to %s", ut.fpsFile)
}

func writeFPS(pth string, trk *fps.Tracker) (rerr error) {
	f, err := os.Create(pth)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("update: %w", err)
		}
	}()
	return trk.Write(f)
}
