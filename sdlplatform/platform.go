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
	"runtime"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/veandco/go-sdl2/sdl"
)

// Platform is the SDL video subsystem.
type Platform struct {
	mode sdl.DisplayMode
}

// NewPlatform is the preferred method of initialisation for the Platform
// type. Must be called from the main thread.
func NewPlatform() (*Platform, error) {
	// the SDL package calls LockOSThread() but we call it here too. it can't
	// hurt and we never unlock it in any case
	runtime.LockOSThread()

	err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS)
	if err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}

	for _, a := range []struct {
		attr  sdl.GLattr
		value int
	}{
		{attr: sdl.GL_CONTEXT_MAJOR_VERSION, value: 3},
		{attr: sdl.GL_CONTEXT_MINOR_VERSION, value: 2},
		{attr: sdl.GL_CONTEXT_FLAGS, value: sdl.GL_CONTEXT_FORWARD_COMPATIBLE_FLAG},
		{attr: sdl.GL_CONTEXT_PROFILE_MASK, value: sdl.GL_CONTEXT_PROFILE_CORE},
		{attr: sdl.GL_DOUBLEBUFFER, value: 1},
	} {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("sdl: %w", err)
		}
	}

	var sdlVersion sdl.Version
	sdl.VERSION(&sdlVersion)
	logger.Logf(logger.Allow, "sdl", "version %d.%d.%d", sdlVersion.Major, sdlVersion.Minor, sdlVersion.Patch)

	plt := &Platform{}

	plt.mode, err = sdl.GetCurrentDisplayMode(0)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl: %w", err)
	}
	logger.Logf(logger.Allow, "sdl", "refresh rate: %dHz", plt.mode.RefreshRate)

	return plt, nil
}

// RefreshRate returns the refresh rate of the display. Returns zero if the
// refresh rate is unknown.
func (plt *Platform) RefreshRate() int {
	return int(plt.mode.RefreshRate)
}

// Service SDL events. The handler is called for every pending event. Service
// waits for up to timeout milliseconds for the first event. Returns false if
// SDL has been asked to quit or if the handler returned false.
func (plt *Platform) Service(timeout int, handler func(ev sdl.Event) bool) bool {
	ev := sdl.WaitEventTimeout(timeout)
	for ev != nil {
		if _, ok := ev.(*sdl.QuitEvent); ok {
			return false
		}
		if handler != nil && !handler(ev) {
			return false
		}
		ev = sdl.PollEvent()
	}
	return true
}

// Destroy the platform. All windows must have been destroyed first.
func (plt *Platform) Destroy() {
	sdl.Quit()
}
