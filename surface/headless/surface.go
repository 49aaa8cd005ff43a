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

package headless

import (
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/scenepipe/pipeline"
)

// Surface implements the pipeline.Surface interface.
type Surface struct {
	name string
	typ  pipeline.SurfaceType

	ready       atomic.Bool
	contextLost atomic.Bool
	stopped     atomic.Bool

	// the surface owns the display connection
	displayOwner atomic.Bool

	preRender     atomic.Int64
	postRender    atomic.Int64
	consumeEvents atomic.Int64
	lastElapsed   atomic.Uint32

	// record of calls other than the per-frame calls
	crit  sync.Mutex
	calls []string
}

func newSurface(name string, typ pipeline.SurfaceType) *Surface {
	s := &Surface{
		name: name,
		typ:  typ,
	}
	s.ready.Store(true)
	return s
}

// NewWindow creates a headless window surface.
func NewWindow(name string) *Surface {
	return newSurface(name, pipeline.WindowSurface)
}

// NewPixmap creates a headless pixmap surface.
func NewPixmap(name string) *Surface {
	return newSurface(name, pipeline.PixmapSurface)
}

func (s *Surface) String() string {
	return s.name
}

func (s *Surface) record(call string) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the list of calls made to the surface, excluding the calls
// made for every frame.
func (s *Surface) Calls() []string {
	s.crit.Lock()
	defer s.crit.Unlock()
	c := make([]string, len(s.calls))
	copy(c, s.calls)
	return c
}

// SetReady changes the value returned by PreRender().
func (s *Surface) SetReady(ready bool) {
	s.ready.Store(ready)
}

// SetContextLost changes the value returned by ReplaceEGLSurface().
func (s *Surface) SetContextLost(lost bool) {
	s.contextLost.Store(lost)
}

// PreRenderCount returns the number of calls to PreRender().
func (s *Surface) PreRenderCount() int {
	return int(s.preRender.Load())
}

// PostRenderCount returns the number of calls to PostRender().
func (s *Surface) PostRenderCount() int {
	return int(s.postRender.Load())
}

// ConsumeEventsCount returns the number of calls to ConsumeEvents().
func (s *Surface) ConsumeEventsCount() int {
	return int(s.consumeEvents.Load())
}

// LastElapsed returns the elapsed time given to the most recent PostRender().
func (s *Surface) LastElapsed() uint32 {
	return s.lastElapsed.Load()
}

// DisplayOwner returns true if the surface owns the display connection.
func (s *Surface) DisplayOwner() bool {
	return s.displayOwner.Load()
}

// Stopped returns true if StopRender() has been called.
func (s *Surface) Stopped() bool {
	return s.stopped.Load()
}

// Type implements the pipeline.Surface interface.
func (s *Surface) Type() pipeline.SurfaceType {
	return s.typ
}

// InitializeEgl implements the pipeline.Surface interface.
func (s *Surface) InitializeEgl(_ pipeline.EGL) error {
	s.record("InitializeEgl")
	s.displayOwner.Store(true)
	return nil
}

// CreateEglSurface implements the pipeline.Surface interface.
func (s *Surface) CreateEglSurface(_ pipeline.EGL) error {
	s.record("CreateEglSurface")
	return nil
}

// ReplaceEGLSurface implements the pipeline.Surface interface.
func (s *Surface) ReplaceEGLSurface(egl pipeline.EGL) bool {
	s.record("ReplaceEGLSurface")
	if e, ok := egl.(*EGL); ok {
		e.surfaceReplaced()
	}
	return s.contextLost.Load()
}

// PreRender implements the pipeline.Surface interface.
func (s *Surface) PreRender(_ pipeline.EGL, _ pipeline.GL) bool {
	s.preRender.Add(1)
	return s.ready.Load() && !s.stopped.Load()
}

// PostRender implements the pipeline.Surface interface. A pixmap surface
// always asks for the pipeline to wait for RenderSync().
func (s *Surface) PostRender(_ pipeline.EGL, _ pipeline.GL, elapsedMicros uint32) bool {
	s.postRender.Add(1)
	s.lastElapsed.Store(elapsedMicros)
	return s.typ == pipeline.PixmapSurface
}

// ConsumeEvents implements the pipeline.Surface interface.
func (s *Surface) ConsumeEvents() {
	s.consumeEvents.Add(1)
}

// StopRender implements the pipeline.Surface interface.
func (s *Surface) StopRender() {
	s.record("StopRender")
	s.stopped.Store(true)
}

// TransferDisplayOwner implements the pipeline.Surface interface. Display
// ownership can only be transferred to another headless surface.
func (s *Surface) TransferDisplayOwner(newSurface pipeline.Surface) {
	s.record("TransferDisplayOwner")
	if !s.displayOwner.Load() {
		return
	}
	if ns, ok := newSurface.(*Surface); ok {
		s.displayOwner.Store(false)
		ns.displayOwner.Store(true)
	}
}
