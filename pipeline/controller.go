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
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/scenepipe/assert"
	"github.com/jetsetilly/scenepipe/logger"
)

// Sentinel errors returned by NewController().
var (
	ErrNoCore       = errors.New("pipeline: no core")
	ErrNoSurface    = errors.New("pipeline: no surface")
	ErrNoEGLFactory = errors.New("pipeline: no EGL factory")
)

// Controller is the root of the pipeline. It owns the Synchronisation and
// the three goroutines that rendezvous through it.
type Controller struct {
	services Services
	opts     Options

	sync     *Synchronisation
	update   *UpdateThread
	render   *RenderThread
	vsync    *VSyncNotifier
	watchdog *watchdog

	// guards the started and stopped fields. Start() and Stop() can be
	// called from different goroutines
	crit    sync.Mutex
	started bool
	stopped bool
}

// NewController is the preferred method of initialisation for the Controller
// type. The Core, Surface and EGLFactory services are required.
func NewController(services Services, opts Options) (*Controller, error) {
	if services.Core == nil {
		return nil, ErrNoCore
	}
	if services.Surface == nil {
		return nil, ErrNoSurface
	}
	if services.EGLFactory == nil {
		return nil, ErrNoEGLFactory
	}

	opts = opts.normalise()

	ctl := &Controller{
		services: services,
		opts:     opts,
	}

	ctl.sync = NewSynchronisation(opts.FrameSlots, services.Markers)
	ctl.sync.SetVSyncsPerRender(opts.VSyncsPerRender)
	ctl.update = NewUpdateThread(ctl.sync, services, opts)
	ctl.render = NewRenderThread(ctl.sync, services)
	ctl.vsync = NewVSyncNotifier(ctl.sync, services.VSyncMonitor, opts)

	if opts.StallWarning > 0 {
		ctl.watchdog = newWatchdog(ctl.sync, opts.StallWarning)
	}

	return ctl, nil
}

// Start the pipeline. Must only be called once.
func (ctl *Controller) Start() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	assert.Always(!ctl.started, "pipeline already started")
	ctl.started = true

	ctl.services.Core.SetMinimumFrameTimeInterval(minimumFrameTime(ctl.opts.VSyncsPerRender))

	ctl.sync.Start()
	ctl.update.Start()
	ctl.render.Start()
	ctl.vsync.Start()

	if ctl.watchdog != nil {
		ctl.watchdog.start()
	}

	logger.Logf(logger.Allow, "controller", "started with %d frame slots", ctl.opts.FrameSlots)
}

// Stop the pipeline and wait for all goroutines to end. It is safe to call
// Stop() more than once and on a pipeline that was never started.
func (ctl *Controller) Stop() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	if !ctl.started || ctl.stopped {
		return
	}
	ctl.stopped = true

	ctl.sync.Stop()
	ctl.vsync.Stop()
	ctl.update.Stop()
	ctl.render.Stop()

	if ctl.watchdog != nil {
		ctl.watchdog.stop()
	}

	logger.Log(logger.Allow, "controller", "stopped")
}

// Pause the pipeline. No updates happen until Resume() is called except for
// those requested with RequestUpdateOnce().
func (ctl *Controller) Pause() {
	ctl.sync.Pause()
	ctl.sync.UpdateRequested()
}

// Resume the pipeline. At least one update follows.
func (ctl *Controller) Resume() {
	ctl.sync.Resume()
}

// RequestUpdate wakes the update goroutine if it is sleeping.
func (ctl *Controller) RequestUpdate() {
	ctl.sync.UpdateRequested()
}

// RequestUpdateOnce requests a single update even if the pipeline is paused.
func (ctl *Controller) RequestUpdateOnce() {
	ctl.sync.UpdateRequested()
	ctl.sync.UpdateWhilePaused()
}

// ReplaceSurface switches rendering to a new surface. The function blocks
// until the render goroutine has made the switch. Returns false if the
// pipeline stopped before the switch happened.
//
// Replacing the current surface with itself is a programming error.
func (ctl *Controller) ReplaceSurface(surface Surface) bool {
	ctl.crit.Lock()
	running := ctl.started && !ctl.stopped
	ctl.crit.Unlock()
	if !running {
		return false
	}

	ctl.render.ReplaceSurface(surface)

	// a frame is needed for the render goroutine to notice the new surface
	ctl.sync.UpdateRequested()
	ctl.sync.UpdateWhilePaused()

	return ctl.render.WaitForSurfaceReplaceComplete()
}

// SurfaceLost stops drawing to the current surface, which can no longer be
// used. Updates carry on and frames are consumed by the render goroutine but
// nothing is drawn until ReplaceSurface() is called.
func (ctl *Controller) SurfaceLost() {
	ctl.crit.Lock()
	running := ctl.started && !ctl.stopped
	ctl.crit.Unlock()
	if !running {
		return
	}

	ctl.render.SurfaceLost()
}

// SetRenderRefreshRate sets the number of vsyncs for every update/render
// cycle.
func (ctl *Controller) SetRenderRefreshRate(vsyncsPerRender int) {
	if vsyncsPerRender < 1 {
		logger.Logf(logger.Allow, "controller", "ignoring render refresh rate of %d", vsyncsPerRender)
		return
	}
	ctl.sync.SetVSyncsPerRender(vsyncsPerRender)
	ctl.services.Core.SetMinimumFrameTimeInterval(minimumFrameTime(vsyncsPerRender))
}

// SetVSyncMode changes the buffer swap synchronisation of the graphics
// context.
func (ctl *Controller) SetVSyncMode(mode SyncMode) {
	ctl.render.SetVSyncMode(mode)
}

// RenderSync acknowledges the most recent buffer swap of a pixmap surface.
func (ctl *Controller) RenderSync() {
	ctl.render.RenderSync()
}

// State returns a snapshot of the synchronisation state.
func (ctl *Controller) State() State {
	return ctl.sync.State()
}

// Stalls returns the number of times the render goroutine has been seen to
// stall. Always zero if the stall warning is disabled.
func (ctl *Controller) Stalls() int {
	if ctl.watchdog == nil {
		return 0
	}
	return int(ctl.watchdog.stalls.Load())
}

// DumpState writes a graph of the synchronisation state in the Graphviz DOT
// format.
func (ctl *Controller) DumpState(w io.Writer) error {
	st := ctl.sync.State()
	ew := &errWriter{w: w}
	memviz.Map(ew, &st)
	if ew.err != nil {
		return fmt.Errorf("pipeline: %w", ew.err)
	}
	return nil
}

// errWriter records the first error from the underlying writer
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

func minimumFrameTime(vsyncsPerRender int) uint32 {
	return uint32(FrameBudget.Microseconds()) * uint32(vsyncsPerRender)
}
