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

package sdlplatform

import (
	"fmt"
	"sync/atomic"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/veandco/go-sdl2/sdl"
)

// Window implements the pipeline.Surface interface.
type Window struct {
	window *sdl.Window
	title  string

	stopped atomic.Bool

	// the window owns the display connection. the first window to be
	// initialised is the owner
	displayOwner atomic.Bool
}

// NewWindow is the preferred method of initialisation for the Window type.
// Must be called from the main thread.
func NewWindow(title string, width, height int32) (*Window, error) {
	sw, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		width, height,
		sdl.WINDOW_OPENGL|sdl.WINDOW_ALLOW_HIGHDPI|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	return &Window{
		window: sw,
		title:  title,
	}, nil
}

func (w *Window) String() string {
	return w.title
}

// Destroy the window. Must be called from the main thread once the window is
// no longer in use by the pipeline.
func (w *Window) Destroy() error {
	if w.window == nil {
		return nil
	}
	err := w.window.Destroy()
	w.window = nil
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	return nil
}

// Hide the window. Must be called from the main thread.
func (w *Window) Hide() {
	if w.window != nil {
		w.window.Hide()
	}
}

func toEGL(egl pipeline.EGL) (*EGL, error) {
	e, ok := egl.(*EGL)
	if !ok {
		return nil, fmt.Errorf("sdl: unsupported EGL implementation (%T)", egl)
	}
	return e, nil
}

// Type implements the pipeline.Surface interface.
func (w *Window) Type() pipeline.SurfaceType {
	return pipeline.WindowSurface
}

// InitializeEgl implements the pipeline.Surface interface.
func (w *Window) InitializeEgl(egl pipeline.EGL) error {
	e, err := toEGL(egl)
	if err != nil {
		return err
	}
	e.window = w.window
	w.displayOwner.Store(true)
	return nil
}

// CreateEglSurface implements the pipeline.Surface interface. The SDL window
// is the surface so there is nothing to create.
func (w *Window) CreateEglSurface(egl pipeline.EGL) error {
	e, err := toEGL(egl)
	if err != nil {
		return err
	}
	if e.window != w.window {
		return fmt.Errorf("sdl: EGL is not using window %s", w.title)
	}
	return nil
}

// ReplaceEGLSurface implements the pipeline.Surface interface. The existing
// context is made current with this window. If that fails a new context is
// created and the context is reported as lost.
func (w *Window) ReplaceEGLSurface(egl pipeline.EGL) bool {
	e, err := toEGL(egl)
	if err != nil {
		logger.Log(logger.Allow, "sdl", err)
		return false
	}

	e.window = w.window
	if err := e.MakeContextCurrent(); err == nil {
		return false
	}

	logger.Logf(logger.Allow, "sdl", "recreating context for %s", w.title)
	e.deleteContext()
	if err := e.CreateContext(); err != nil {
		logger.Log(logger.Allow, "sdl", err)
	} else if err := e.MakeContextCurrent(); err != nil {
		logger.Log(logger.Allow, "sdl", err)
	}

	return true
}

// PreRender implements the pipeline.Surface interface. A minimised window is
// not ready.
func (w *Window) PreRender(_ pipeline.EGL, _ pipeline.GL) bool {
	if w.stopped.Load() {
		return false
	}
	return w.window.GetFlags()&sdl.WINDOW_MINIMIZED != sdl.WINDOW_MINIMIZED
}

// PostRender implements the pipeline.Surface interface.
func (w *Window) PostRender(_ pipeline.EGL, _ pipeline.GL, _ uint32) bool {
	w.window.GLSwap()
	return false
}

// ConsumeEvents implements the pipeline.Surface interface. SDL events are
// serviced on the main thread by Platform.Service() so there is nothing to do.
func (w *Window) ConsumeEvents() {
}

// StopRender implements the pipeline.Surface interface.
func (w *Window) StopRender() {
	w.stopped.Store(true)
}

// TransferDisplayOwner implements the pipeline.Surface interface.
func (w *Window) TransferDisplayOwner(newSurface pipeline.Surface) {
	nw, ok := newSurface.(*Window)
	if !ok || !w.displayOwner.Load() {
		return
	}
	w.displayOwner.Store(false)
	nw.displayOwner.Store(true)
	logger.Logf(logger.Allow, "sdl", "display owner is now %s", nw.title)
}
