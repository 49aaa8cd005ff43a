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
	"github.com/go-gl/gl/v3.2-core/gl"
	"github.com/jetsetilly/scenepipe/scene"
)

// Painter implements the scene.Painter interface. Nodes are drawn as solid
// rectangles with the scissor test so no shaders are required.
type Painter struct {
	factory *EGLFactory
}

// NewPainter is the preferred method of initialisation for the Painter type.
// The viewport is the size of the window currently in use by the EGL created
// by the factory.
func NewPainter(factory *EGLFactory) *Painter {
	return &Painter{factory: factory}
}

// Paint implements the scene.Painter interface.
func (p *Painter) Paint(f *scene.Frame) {
	e := p.factory.egl
	if e == nil || e.window == nil {
		return
	}
	width, height := e.window.GLGetDrawableSize()

	gl.Viewport(0, 0, width, height)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ClearColor(f.Background[0], f.Background[1], f.Background[2], 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.Enable(gl.SCISSOR_TEST)
	for _, n := range f.Nodes {
		// GL coordinates start at the bottom of the viewport
		y := float64(height) - n.Y - n.Height
		gl.Scissor(int32(n.X), int32(y), int32(n.Width), int32(n.Height))
		gl.ClearColor(n.Colour[0], n.Colour[1], n.Colour[2], 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	gl.Disable(gl.SCISSOR_TEST)
}
