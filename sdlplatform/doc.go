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

// Package sdlplatform implements the pipeline's platform interfaces with SDL2
// and OpenGL.
//
// The Platform must be created on the main thread and SDL events must be
// serviced on the main thread. Windows are also created and destroyed on the
// main thread. The GL context is created by the EGL type, which is only ever
// used on the pipeline's render goroutine.
package sdlplatform
