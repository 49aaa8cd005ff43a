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

// Package headless implements the pipeline's platform interfaces without a
// display. The surfaces, graphics context and vsync monitor are instrumented
// so that they can be inspected by tests and by the performance package.
//
// A headless Surface can be a window surface or a pixmap surface. A pixmap
// surface requires the owner to call RenderSync() on the pipeline after every
// buffer swap.
package headless
