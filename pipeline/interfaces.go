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

// SurfaceType distinguishes surfaces presented directly to the display from
// surfaces composited by an external process.
type SurfaceType int

// List of valid SurfaceType values.
const (
	// a window surface is presented directly
	WindowSurface SurfaceType = iota

	// a pixmap surface is composited externally. the owner of the surface
	// must acknowledge every buffer swap with a call to RenderSync() before
	// the next frame can be rendered
	PixmapSurface
)

func (t SurfaceType) String() string {
	switch t {
	case WindowSurface:
		return "window"
	case PixmapSurface:
		return "pixmap"
	}
	return "unknown surface"
}

// SyncMode is the buffer swap synchronisation requested of the graphics
// context. The values match those expected by SDL_GL_SetSwapInterval().
type SyncMode int

// List of valid SyncMode values.
const (
	SyncImmediate       SyncMode = 0
	SyncVerticalRetrace SyncMode = 1
	SyncAdaptive        SyncMode = -1
)

func (m SyncMode) String() string {
	switch m {
	case SyncImmediate:
		return "immediate"
	case SyncVerticalRetrace:
		return "vertical retrace"
	case SyncAdaptive:
		return "adaptive"
	}
	return "unknown sync mode"
}

// EGL is the owner of the graphics context. Every method is called from the
// render goroutine only.
type EGL interface {
	CreateContext() error
	MakeContextCurrent() error
	SetRefreshSync(mode SyncMode)
	TerminateGles()
}

// EGLFactory creates the EGL implementation on the render goroutine.
type EGLFactory interface {
	Create() EGL
	Destroy()
}

// Names accepted by GL.GetString(). The values are the same as the GL
// constants of the same name.
const (
	GLVendor   uint32 = 0x1f00
	GLRenderer uint32 = 0x1f01
	GLVersion  uint32 = 0x1f02
)

// GL is the part of the graphics library used by the pipeline itself. The
// scene's Core will make much more use of the graphics library than this.
type GL interface {
	GetString(name uint32) string
}

// Surface is the render target. Platform surfaces implement this interface
// directly, the pipeline never needs to know the concrete type.
//
// With the exception of StopRender() and Type(), every method is called from
// the render goroutine.
type Surface interface {
	Type() SurfaceType

	// prepare the surface for use with the EGL implementation. called once
	// when the render goroutine starts
	InitializeEgl(egl EGL) error
	CreateEglSurface(egl EGL) error

	// the surface is taking over from a previous surface. returns true if
	// the graphics context was lost in the process
	ReplaceEGLSurface(egl EGL) (contextLost bool)

	// called before rendering. returns false if the surface is not ready,
	// in which case the frame is skipped
	PreRender(egl EGL, gl GL) bool

	// called after a frame has been rendered. the elapsed time is since the
	// previous successful render. returns true if the pipeline must wait for
	// an external acknowledgement (RenderSync) before continuing
	PostRender(egl EGL, gl GL, elapsedMicros uint32) bool

	// flush any input events the surface has queued
	ConsumeEvents()

	// the surface should stop rendering. called from the goroutine stopping
	// the pipeline
	StopRender()

	// transfer ownership of the display connection to the new surface if
	// they share a display
	TransferDisplayOwner(newSurface Surface)
}

// Core is the scene-graph engine driven by the pipeline.
//
// Update() is called from the update goroutine and Render() is called from
// the render goroutine. The slot argument identifies the frame being written
// or read and the two goroutines never use the same slot at the same time.
// No further locking of the scene graph is required.
type Core interface {
	Update(slot int, status *UpdateStatus)
	Render(slot int, status *RenderStatus)

	// the graphics context has been created or is about to be destroyed.
	// called from the render goroutine
	ContextCreated()
	ContextToBeDestroyed()

	// any GPU resources should be reloaded
	RequestReloadResources()

	// the minimum time between frames in microseconds. changes with the
	// number of vsyncs per render
	SetMinimumFrameTimeInterval(micros uint32)
}

// VSyncMonitor is a source of hardware vertical sync.
type VSyncMonitor interface {
	// prepare the monitor. returns false if the monitor is unavailable
	Initialize() bool
	Terminate()

	// returns true if the monitor should be used in preference to the
	// software timer
	UseHardware() bool

	// block until the next vertical sync. the returned values are the
	// hardware sequence number and timestamp of the sync
	DoSync() (sequence uint32, seconds uint32, microseconds uint32, valid bool)
}

// Trigger is a cross-goroutine notification. The update goroutine triggers
// the event when the scene has notifications for the UI goroutine.
type Trigger interface {
	Trigger()
}

// Markers receives performance markers from the pipeline.
type Markers interface {
	AddMarker(m Marker)
}

// Services are the collaborators required by the pipeline. Trigger and
// Markers are optional and can be nil.
type Services struct {
	Core         Core
	Surface      Surface
	EGLFactory   EGLFactory
	GL           GL
	VSyncMonitor VSyncMonitor
	Trigger      Trigger
	Markers      Markers
}
