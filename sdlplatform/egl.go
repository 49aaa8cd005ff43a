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

	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/veandco/go-sdl2/sdl"
)

// EGL implements the pipeline.EGL interface with an SDL GL context.
type EGL struct {
	window *sdl.Window

	context    sdl.GLContext
	hasContext bool

	// gl.Init() must be called once a context is current
	glInitialised bool
}

// CreateContext implements the pipeline.EGL interface.
func (e *EGL) CreateContext() error {
	if e.window == nil {
		return fmt.Errorf("sdl: no window for GL context")
	}

	ctx, err := e.window.GLCreateContext()
	if err != nil {
		return fmt.Errorf("sdl: %w", err)
	}
	e.context = ctx
	e.hasContext = true

	return nil
}

// MakeContextCurrent implements the pipeline.EGL interface.
func (e *EGL) MakeContextCurrent() error {
	if !e.hasContext {
		return fmt.Errorf("sdl: no GL context")
	}

	if err := e.window.GLMakeCurrent(e.context); err != nil {
		return fmt.Errorf("sdl: %w", err)
	}

	if !e.glInitialised {
		if err := gl.Init(); err != nil {
			return fmt.Errorf("gl: %w", err)
		}
		e.glInitialised = true
	}

	return nil
}

// SetRefreshSync implements the pipeline.EGL interface. If adaptive sync is
// not supported then vertical retrace is used instead.
func (e *EGL) SetRefreshSync(mode pipeline.SyncMode) {
	err := sdl.GLSetSwapInterval(int(mode))
	if err == nil {
		return
	}
	logger.Logf(logger.Allow, "sdl", "GLSetSwapInterval(%d): %s", int(mode), err.Error())

	if mode == pipeline.SyncAdaptive {
		if err := sdl.GLSetSwapInterval(int(pipeline.SyncVerticalRetrace)); err != nil {
			logger.Logf(logger.Allow, "sdl", "GLSetSwapInterval(%d): %s", int(pipeline.SyncVerticalRetrace), err.Error())
		}
	}
}

// TerminateGles implements the pipeline.EGL interface.
func (e *EGL) TerminateGles() {
	e.deleteContext()
	e.window = nil
}

func (e *EGL) deleteContext() {
	if e.hasContext {
		sdl.GLDeleteContext(e.context)
		e.hasContext = false
		e.glInitialised = false
	}
}

// EGLFactory implements the pipeline.EGLFactory interface.
type EGLFactory struct {
	egl *EGL
}

// Create implements the pipeline.EGLFactory interface.
func (f *EGLFactory) Create() pipeline.EGL {
	f.egl = &EGL{}
	return f.egl
}

// Destroy implements the pipeline.EGLFactory interface.
func (f *EGLFactory) Destroy() {
	f.egl = nil
}

// GL implements the pipeline.GL interface with go-gl.
type GL struct{}

// GetString implements the pipeline.GL interface.
func (GL) GetString(name uint32) string {
	return gl.GoStr(gl.GetString(name))
}
