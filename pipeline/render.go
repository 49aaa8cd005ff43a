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
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/scenepipe/assert"
	"github.com/jetsetilly/scenepipe/logger"
)

// values sent to the render goroutine. staged under renderThread.pendingCrit
// and applied by the render goroutine at the top of the render loop
type renderValues struct {
	replaceSurface bool
	surface        Surface

	changeSyncMode bool
	syncMode       SyncMode

	surfaceLost bool
}

// RenderThread drives the Render step of the Core. It owns the graphics
// context, which is created, used and destroyed on the render goroutine only.
type RenderThread struct {
	sync       *Synchronisation
	core       Core
	gl         GL
	eglFactory EGLFactory

	// checks that the graphics context is only used on the render goroutine
	owner *assert.Owner

	// only accessed by the render goroutine
	egl         EGL
	lastRender  time.Time
	surfaceLost bool

	// values staged for the render goroutine. newDataAvailable is set after
	// every change and cleared by the render goroutine when it takes the
	// values
	pendingCrit      sync.Mutex
	pending          renderValues
	newDataAvailable atomic.Bool

	// the current surface. written by the render goroutine but read by
	// other goroutines so it is also guarded by pendingCrit
	surface Surface

	// surface replacement completion
	replaceCrit      sync.Mutex
	replaceCond      *sync.Cond
	replaceCompleted bool
	exited           bool

	// the external acknowledgement required by pixmap surfaces
	pixmapCrit         sync.Mutex
	pixmapCond         *sync.Cond
	pixmapSyncRunning  bool
	pixmapSyncReceived bool

	done chan struct{}
}

// NewRenderThread is the preferred method of initialisation for the
// RenderThread type.
func NewRenderThread(s *Synchronisation, services Services) *RenderThread {
	assert.Always(services.Surface != nil, "render thread requires a surface")
	assert.Always(services.EGLFactory != nil, "render thread requires an EGL factory")

	rt := &RenderThread{
		sync:       s,
		core:       services.Core,
		gl:         services.GL,
		eglFactory: services.EGLFactory,
		surface:    services.Surface,
		owner:      assert.NewOwner("graphics context"),
	}
	rt.replaceCond = sync.NewCond(&rt.replaceCrit)
	rt.pixmapCond = sync.NewCond(&rt.pixmapCrit)

	return rt
}

// Start the render goroutine. Must only be called once.
func (rt *RenderThread) Start() {
	assert.Always(rt.done == nil, "render thread already started")

	rt.pixmapCrit.Lock()
	rt.pixmapSyncRunning = rt.currentSurface().Type() == PixmapSurface
	rt.pixmapCrit.Unlock()

	rt.done = make(chan struct{})
	go rt.run()
}

// Stop the render goroutine and wait for it to end. The Synchronisation must
// have been stopped before calling this function.
func (rt *RenderThread) Stop() {
	if rt.done == nil {
		return
	}

	rt.pixmapCrit.Lock()
	rt.pixmapSyncRunning = false
	rt.pixmapCond.Broadcast()
	rt.pixmapCrit.Unlock()

	rt.currentSurface().StopRender()

	rt.RenderSync()
	rt.sync.UpdateRequested()
	rt.sync.SetRenderRunning(false)

	<-rt.done
}

func (rt *RenderThread) currentSurface() Surface {
	rt.pendingCrit.Lock()
	defer rt.pendingCrit.Unlock()
	return rt.surface
}

// sendMessage stages a change for the render goroutine. the change is picked
// up at the top of the next render loop
func (rt *RenderThread) sendMessage(f func(v *renderValues)) {
	rt.pendingCrit.Lock()
	f(&rt.pending)
	rt.pendingCrit.Unlock()
	rt.newDataAvailable.Store(true)
}

// ReplaceSurface stages a new surface for the render goroutine. The function
// does not block. Use WaitForSurfaceReplaceComplete() to wait for the render
// goroutine to switch to the new surface.
//
// Replacing a surface with itself is a programming error.
func (rt *RenderThread) ReplaceSurface(surface Surface) {
	assert.Always(surface != nil, "cannot replace surface with nil")
	assert.Never(surface == rt.currentSurface(), "cannot replace surface with the current surface")

	rt.replaceCrit.Lock()
	rt.replaceCompleted = false
	rt.replaceCrit.Unlock()

	rt.sendMessage(func(v *renderValues) {
		v.replaceSurface = true
		v.surface = surface
		v.surfaceLost = false
	})

	// a pixmap surface may be waiting for an acknowledgement that will never
	// come now that the surface is being replaced
	rt.RenderSync()
}

// SurfaceLost tells the render goroutine that the current surface can no
// longer be drawn to. Frames are consumed without rendering until the next
// surface replacement.
func (rt *RenderThread) SurfaceLost() {
	rt.sendMessage(func(v *renderValues) {
		v.surfaceLost = true
		rt.sync.SurfaceLost()
	})

	// the lost surface will never acknowledge a buffer swap
	rt.RenderSync()
}

// WaitForSurfaceReplaceComplete blocks until the render goroutine has
// switched to the surface given to ReplaceSurface(). Returns false if the
// render goroutine ended before the replacement happened.
func (rt *RenderThread) WaitForSurfaceReplaceComplete() bool {
	rt.replaceCrit.Lock()
	defer rt.replaceCrit.Unlock()

	for !rt.replaceCompleted && !rt.exited {
		rt.replaceCond.Wait()
	}

	return rt.replaceCompleted
}

// SetVSyncMode stages a change of buffer swap synchronisation.
func (rt *RenderThread) SetVSyncMode(mode SyncMode) {
	rt.sendMessage(func(v *renderValues) {
		v.changeSyncMode = true
		v.syncMode = mode
	})
}

// RenderSync acknowledges the most recent buffer swap of a pixmap surface.
func (rt *RenderThread) RenderSync() {
	rt.pixmapCrit.Lock()
	defer rt.pixmapCrit.Unlock()
	rt.pixmapSyncReceived = true
	rt.pixmapCond.Broadcast()
}

func (rt *RenderThread) run() {
	defer close(rt.done)
	defer func() {
		rt.replaceCrit.Lock()
		rt.exited = true
		rt.replaceCond.Broadcast()
		rt.replaceCrit.Unlock()
	}()

	// the graphics context is bound to the OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	rt.owner.Claim()
	defer rt.owner.Release()

	rt.initializeEgl()

	for rt.sync.RenderSyncWithUpdate() {
		rt.checkForUpdates()

		if rt.surfaceLost {
			rt.sync.RenderFinished(false)
			continue
		}

		surface := rt.currentSurface()
		surface.ConsumeEvents()

		if !surface.PreRender(rt.egl, rt.gl) {
			rt.sync.RenderFinished(false)
			continue
		}

		if !rt.sync.RenderRunning() {
			rt.sync.RenderFinished(false)
			continue
		}

		var status RenderStatus
		rt.core.Render(rt.sync.RenderSlot(), &status)
		rt.sync.RenderFinished(status.NeedsUpdate)

		if status.HasRendered {
			now := time.Now()
			elapsed := elapsedMicros(now.Sub(rt.lastRender))
			rt.lastRender = now
			if surface.PostRender(rt.egl, rt.gl, elapsed) {
				rt.waitForPixmapSync()
			}
		}
	}

	rt.sync.SetRenderRunning(false)
	rt.shutdownEgl()
}

func (rt *RenderThread) initializeEgl() {
	rt.owner.Check()

	rt.egl = rt.eglFactory.Create()
	surface := rt.currentSurface()

	assert.Fatal(surface.InitializeEgl(rt.egl), "render: initialise egl")
	assert.Fatal(surface.CreateEglSurface(rt.egl), "render: create egl surface")
	assert.Fatal(rt.egl.CreateContext(), "render: create context")
	assert.Fatal(rt.egl.MakeContextCurrent(), "render: make context current")

	rt.egl.SetRefreshSync(SyncVerticalRetrace)

	if rt.gl != nil {
		logger.Logf(logger.Allow, "render", "GL vendor: %s", rt.gl.GetString(GLVendor))
		logger.Logf(logger.Allow, "render", "GL renderer: %s", rt.gl.GetString(GLRenderer))
		logger.Logf(logger.Allow, "render", "GL version: %s", rt.gl.GetString(GLVersion))
	}

	rt.core.ContextCreated()
	rt.core.RequestReloadResources()

	rt.lastRender = time.Now()
}

func (rt *RenderThread) shutdownEgl() {
	rt.owner.Check()

	rt.core.ContextToBeDestroyed()
	rt.egl.TerminateGles()
	rt.eglFactory.Destroy()
	rt.egl = nil
}

// the duration in microseconds, saturating rather than wrapping after a long
// time without a render
func elapsedMicros(d time.Duration) uint32 {
	us := d.Microseconds()
	if us < 0 {
		return 0
	}
	if us > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(us)
}

// take any values sent to the render goroutine and apply them. a surface loss
// staged after a replacement takes effect once the replacement is complete
func (rt *RenderThread) checkForUpdates() {
	if !rt.newDataAvailable.CompareAndSwap(true, false) {
		return
	}

	rt.pendingCrit.Lock()
	v := rt.pending
	rt.pending = renderValues{}

	// a new surface cancels any earlier loss. the synchronisation is told
	// while the values are still locked so that a loss sent after these
	// values is not cancelled
	lost := v.surfaceLost || (rt.surfaceLost && !v.replaceSurface)
	if v.replaceSurface && !lost {
		rt.sync.SurfaceLostCancel()
	}
	rt.pendingCrit.Unlock()

	if v.changeSyncMode {
		rt.egl.SetRefreshSync(v.syncMode)
		logger.Logf(logger.Allow, "render", "sync mode: %s", v.syncMode)
	}

	if v.replaceSurface {
		rt.changeSurface(v.surface)
	}

	if lost && !rt.surfaceLost {
		logger.Logf(logger.Allow, "render", "%s surface lost", rt.currentSurface().Type())
	}
	rt.surfaceLost = lost
}

func (rt *RenderThread) changeSurface(newSurface Surface) {
	rt.owner.Check()

	oldSurface := rt.currentSurface()

	if newSurface.ReplaceEGLSurface(rt.egl) {
		logger.Log(logger.Allow, "render", "context lost during surface replacement")
		rt.core.ContextToBeDestroyed()
		rt.core.ContextCreated()
		rt.core.RequestReloadResources()
	}

	oldSurface.TransferDisplayOwner(newSurface)

	rt.pendingCrit.Lock()
	rt.surface = newSurface
	rt.pendingCrit.Unlock()

	rt.pixmapCrit.Lock()
	rt.pixmapSyncReceived = false
	rt.pixmapSyncRunning = newSurface.Type() == PixmapSurface && rt.sync.Running()
	rt.pixmapCrit.Unlock()

	logger.Logf(logger.Allow, "render", "surface replaced with %s surface", newSurface.Type())

	rt.replaceCrit.Lock()
	rt.replaceCompleted = true
	rt.replaceCond.Broadcast()
	rt.replaceCrit.Unlock()
}

// wait for RenderSync() to be called. only pixmap surfaces require this
func (rt *RenderThread) waitForPixmapSync() {
	rt.pixmapCrit.Lock()
	defer rt.pixmapCrit.Unlock()

	for rt.pixmapSyncRunning && !rt.pixmapSyncReceived {
		rt.pixmapCond.Wait()
	}
	rt.pixmapSyncReceived = false
}
