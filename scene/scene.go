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

package scene

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline"
)

// Node is a single item in the scene.
type Node struct {
	Name   string
	X, Y   float64
	Width  float64
	Height float64
	Colour [3]float32
}

// Frame is the scene as it was at the end of an update.
type Frame struct {
	Number     uint64
	Background [3]float32
	Nodes      []Node
}

// Message changes the position of a node. It is applied at the start of the
// next update.
type Message struct {
	Node string
	X, Y float64
}

// Painter draws a frame. It is called from the render goroutine while the
// graphics context is current.
type Painter interface {
	Paint(f *Frame)
}

// Scene implements the pipeline.Core interface.
type Scene struct {
	// guards the fields that can be changed from outside the update goroutine
	crit         sync.Mutex
	messages     []Message
	animations   []*animation
	notification bool

	// only accessed by the update goroutine
	nodes      []Node
	background [3]float32
	lastUpdate time.Time
	frameNum   uint64

	// one frame for each slot
	frames [pipeline.MaxFrameSlots]Frame

	painter Painter

	// only accessed by the render goroutine
	hasContext bool

	// resources need to be reloaded on the next render
	reloadPending atomic.Bool

	minFrameTime atomic.Uint32

	updates          atomic.Uint64
	renders          atomic.Uint64
	contextCreated   atomic.Int64
	contextDestroyed atomic.Int64
}

// NewScene is the preferred method of initialisation for the Scene type. The
// painter can be nil.
func NewScene(painter Painter) *Scene {
	s := &Scene{
		painter:    painter,
		background: [3]float32{0.1, 0.1, 0.15},
	}
	s.minFrameTime.Store(uint32(pipeline.FrameBudget.Microseconds()))
	return s
}

// AddNode adds a node to the scene. Must be called before the pipeline is
// started.
func (s *Scene) AddNode(n Node) {
	s.nodes = append(s.nodes, n)
}

// Send a message to the scene.
func (s *Scene) Send(m Message) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.messages = append(s.messages, m)
}

// Animate moves the named node by dx and dy over the duration. A duration of
// zero or less creates an animation that moves the node back and forth
// forever.
func (s *Scene) Animate(node string, dx, dy float64, duration time.Duration) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.animations = append(s.animations, &animation{
		node:     node,
		dx:       dx,
		dy:       dy,
		duration: duration,
	})
}

// StopAnimations removes all animations from the scene.
func (s *Scene) StopAnimations() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.animations = nil
}

// Notify asks for the UI to be notified after the next update.
func (s *Scene) Notify() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.notification = true
}

// Updates returns the number of updates.
func (s *Scene) Updates() uint64 {
	return s.updates.Load()
}

// Renders returns the number of frames painted.
func (s *Scene) Renders() uint64 {
	return s.renders.Load()
}

// ContextCount returns the number of times the graphics context has been
// created and destroyed.
func (s *Scene) ContextCount() (created int, destroyed int) {
	return int(s.contextCreated.Load()), int(s.contextDestroyed.Load())
}

// Update implements the pipeline.Core interface.
func (s *Scene) Update(slot int, status *pipeline.UpdateStatus) {
	now := time.Now()

	var dt time.Duration
	if s.lastUpdate.IsZero() {
		dt = time.Duration(s.minFrameTime.Load()) * time.Microsecond
	} else {
		dt = now.Sub(s.lastUpdate)
	}
	s.lastUpdate = now
	status.SecondsFromLastFrame = dt.Seconds()

	s.crit.Lock()
	messages := s.messages
	s.messages = nil
	animations := s.animations
	status.NeedsNotification = s.notification
	s.notification = false
	s.crit.Unlock()

	for _, m := range messages {
		if n := s.node(m.Node); n != nil {
			n.X = m.X
			n.Y = m.Y
		}
	}
	if len(messages) > 0 {
		status.KeepUpdating |= pipeline.IncomingMessages
	}

	var running int
	for _, a := range animations {
		if a.finished() {
			continue
		}
		if n := s.node(a.node); n != nil {
			a.advance(n, dt)
		}
		if !a.finished() {
			running++
		}
	}
	if running > 0 {
		status.KeepUpdating |= pipeline.AnimationsRunning
	} else if len(animations) > 0 {
		s.removeFinished()
	}

	if s.reloadPending.Load() {
		status.KeepUpdating |= pipeline.LoadingResources
	}

	s.frameNum++
	f := &s.frames[slot]
	f.Number = s.frameNum
	f.Background = s.background
	f.Nodes = append(f.Nodes[:0], s.nodes...)

	s.updates.Add(1)
}

func (s *Scene) node(name string) *Node {
	for i := range s.nodes {
		if s.nodes[i].Name == name {
			return &s.nodes[i]
		}
	}
	return nil
}

func (s *Scene) removeFinished() {
	s.crit.Lock()
	defer s.crit.Unlock()
	var n []*animation
	for _, a := range s.animations {
		if !a.finished() {
			n = append(n, a)
		}
	}
	s.animations = n
}

// Render implements the pipeline.Core interface.
func (s *Scene) Render(slot int, status *pipeline.RenderStatus) {
	if !s.hasContext {
		return
	}

	if s.reloadPending.CompareAndSwap(true, false) {
		logger.Log(logger.Allow, "scene", "resources reloaded")

		// the reload may have changed what the scene looks like
		status.NeedsUpdate = true
	}

	if s.painter != nil {
		s.painter.Paint(&s.frames[slot])
	}
	status.HasRendered = true

	s.renders.Add(1)
}

// ContextCreated implements the pipeline.Core interface.
func (s *Scene) ContextCreated() {
	s.hasContext = true
	s.contextCreated.Add(1)
}

// ContextToBeDestroyed implements the pipeline.Core interface.
func (s *Scene) ContextToBeDestroyed() {
	s.hasContext = false
	s.contextDestroyed.Add(1)
}

// RequestReloadResources implements the pipeline.Core interface.
func (s *Scene) RequestReloadResources() {
	s.reloadPending.Store(true)
}

// SetMinimumFrameTimeInterval implements the pipeline.Core interface.
func (s *Scene) SetMinimumFrameTimeInterval(micros uint32) {
	s.minFrameTime.Store(micros)
}
