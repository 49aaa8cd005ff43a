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
	"sync"
	"time"

	"github.com/jetsetilly/scenepipe/assert"
	"github.com/jetsetilly/scenepipe/logger"
)

// Synchronisation is the rendezvous point for the vsync, update and render
// goroutines.
//
// All state is guarded by a single mutex. Each condition variable shares that
// mutex and is broadcast whenever a change might allow a waiter to continue.
// Every wait is a predicate loop that includes the running flag so Stop()
// is guaranteed to release all waiters.
type Synchronisation struct {
	crit sync.Mutex

	// broadcast when a frame becomes ready for rendering
	updateFinished *sync.Cond

	// broadcast when a frame has been rendered
	renderFinished *sync.Cond

	// broadcast when a new vsync tick has been recorded
	vsyncReceived *sync.Cond

	// broadcast when the conditions the vsync goroutine waits on change
	vsyncSleep *sync.Cond

	// broadcast when the update goroutine should stop sleeping
	updateSleep *sync.Cond

	// broadcast when the paused state changes
	pausedCond *sync.Cond

	markers Markers

	// the frame slots and the index of the slot being written by Update and
	// being read by Render
	slots      []FrameSlot
	updateSlot int
	renderSlot int

	// number of frames that have been produced by Update but not yet
	// finished by Render. Update blocks when this reaches len(slots)
	updateReadyCount int

	running       bool
	renderRunning bool
	paused        bool
	sleeping      bool

	// the most recent render requested another update
	updateRequired bool

	// a one-shot request for an update. cleared when Update next decides
	// whether to sleep
	updateRequested bool

	// allow one update while paused. the count is a safety net that limits
	// the number of ticks delivered while the flag is set
	allowUpdateWhilePaused      bool
	allowUpdateWhilePausedCount int

	// the most recent tick and whether it has been consumed by Update
	tick        VSyncTick
	tickPending bool

	vsyncsPerRender int

	// the surface has been lost. the render goroutine consumes frames without
	// drawing until the loss is cancelled by a surface replacement
	surfaceLost bool

	// the most recent progress of the render goroutine. either the time a
	// render finished or the time a frame became available to an idle
	// renderer
	lastProgress time.Time
}

// number of ticks delivered by VSync while an update is allowed during a
// pause
const allowUpdateWhilePausedTicks = 3

// NewSynchronisation is the preferred method of initialisation for the
// Synchronisation type. The number of frame slots must be two or three.
func NewSynchronisation(frameSlots int, markers Markers) *Synchronisation {
	assert.Always(frameSlots >= MinFrameSlots && frameSlots <= MaxFrameSlots, "frame slots must be between %d and %d (%d)", MinFrameSlots, MaxFrameSlots, frameSlots)

	s := &Synchronisation{
		markers:         markers,
		slots:           make([]FrameSlot, frameSlots),
		renderRunning:   true,
		vsyncsPerRender: 1,
	}
	for i := range s.slots {
		s.slots[i].Index = i
	}

	s.updateFinished = sync.NewCond(&s.crit)
	s.renderFinished = sync.NewCond(&s.crit)
	s.vsyncReceived = sync.NewCond(&s.crit)
	s.vsyncSleep = sync.NewCond(&s.crit)
	s.updateSleep = sync.NewCond(&s.crit)
	s.pausedCond = sync.NewCond(&s.crit)

	return s
}

// must be called with the critical section held
func (s *Synchronisation) broadcastAll() {
	s.updateFinished.Broadcast()
	s.renderFinished.Broadcast()
	s.vsyncReceived.Broadcast()
	s.vsyncSleep.Broadcast()
	s.updateSleep.Broadcast()
	s.pausedCond.Broadcast()
}

func (s *Synchronisation) addMarker(m MarkerType) {
	if s.markers != nil {
		s.markers.AddMarker(Marker{Type: m, Timestamp: time.Now()})
	}
}

// Start marks the synchronisation as running. Must be called before any of the
// pipeline goroutines are started.
func (s *Synchronisation) Start() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.running = true
	s.lastProgress = time.Now()
}

// Stop the synchronisation. Every waiting goroutine is woken and will see that
// the pipeline is no longer running.
func (s *Synchronisation) Stop() {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.running = false
	s.updateRequested = true
	s.paused = false
	s.sleeping = false
	s.broadcastAll()

	logger.Log(logger.Allow, "sync", "stopped")
}

// Pause the pipeline. The update and vsync goroutines will idle until
// Resume() is called.
func (s *Synchronisation) Pause() {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.paused = true
	s.vsyncSleep.Broadcast()
	s.addMarker(MarkerPaused)
}

// Resume the pipeline after a Pause(). Resume also wakes an update goroutine
// that is sleeping because it has nothing to do, so at least one update will
// follow a Resume().
func (s *Synchronisation) Resume() {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.paused = false
	s.sleeping = false
	s.updateRequested = true
	s.pausedCond.Broadcast()
	s.vsyncSleep.Broadcast()
	s.updateSleep.Broadcast()
	s.addMarker(MarkerResume)
}

// UpdateRequested wakes the update goroutine if it is sleeping. The request
// is one-shot: it prevents at most one sleep.
func (s *Synchronisation) UpdateRequested() {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.updateRequested = true
	s.updateSleep.Broadcast()
}

// UpdateWhilePaused allows one update to happen even if the pipeline is
// paused. Used when a paused pipeline must produce a frame, for example
// when the surface is being replaced.
func (s *Synchronisation) UpdateWhilePaused() {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.allowUpdateWhilePaused = true
	s.allowUpdateWhilePausedCount = allowUpdateWhilePausedTicks
	s.vsyncSleep.Broadcast()
	s.updateSleep.Broadcast()
	s.pausedCond.Broadcast()
}

// SurfaceLost records that the surface can no longer be drawn to. An update
// is requested, even if the pipeline is paused, so that the render goroutine
// sees the loss promptly.
func (s *Synchronisation) SurfaceLost() {
	s.crit.Lock()
	s.surfaceLost = true
	s.crit.Unlock()

	s.UpdateRequested()
	s.UpdateWhilePaused()

	logger.Log(logger.Allow, "sync", "surface lost")
}

// SurfaceLostCancel clears the loss recorded by SurfaceLost().
func (s *Synchronisation) SurfaceLostCancel() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.surfaceLost = false
}

// VSyncNotifierSyncWithUpdateAndRender is called by the vsync goroutine once
// per tick. The tick is recorded and the update goroutine woken.
//
// The function blocks while the previous tick has not been consumed or while
// the pipeline is paused or sleeping. Returns false when the pipeline has
// been stopped.
func (s *Synchronisation) VSyncNotifierSyncWithUpdateAndRender(tick VSyncTick) bool {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.tick = tick
	s.tickPending = true
	s.vsyncReceived.Broadcast()
	s.addMarker(MarkerVSync)

	if s.allowUpdateWhilePaused {
		s.allowUpdateWhilePausedCount--
		if s.allowUpdateWhilePausedCount <= 0 {
			s.allowUpdateWhilePaused = false
			s.allowUpdateWhilePausedCount = 0
		}
	}

	for s.running && (s.tickPending || (!s.allowUpdateWhilePaused && (s.sleeping || s.paused))) {
		s.vsyncSleep.Wait()
	}

	return s.running
}

// UpdateReadyToRun is the suspension point at the top of the update loop. It
// waits for a vsync tick, or for a pause to end. Returns false when the
// pipeline has been stopped.
func (s *Synchronisation) UpdateReadyToRun() bool {
	s.crit.Lock()
	defer s.crit.Unlock()

	var wokenFromPause bool
	for s.running && s.paused && !s.allowUpdateWhilePaused {
		s.pausedCond.Wait()
		wokenFromPause = true
	}

	// the transition out of a pause is treated as a tick
	if !wokenFromPause {
		for s.running && !s.tickPending {
			s.vsyncReceived.Wait()
		}
	}

	if !s.running {
		return false
	}

	s.tickPending = false
	s.allowUpdateWhilePaused = false
	s.allowUpdateWhilePausedCount = 0
	s.vsyncSleep.Broadcast()
	s.addMarker(MarkerUpdateStart)

	return true
}

// UpdateSyncWithRender is called by the update goroutine once the frame in
// the update slot has been written. The frame is published to the render
// goroutine and the update slot moves on.
//
// The function blocks while every slot is waiting to be rendered. Returns
// whether the most recent render requested another update and whether the
// pipeline is still running.
func (s *Synchronisation) UpdateSyncWithRender() (renderNeedsUpdate bool, running bool) {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.addMarker(MarkerUpdateEnd)

	s.slots[s.updateSlot].Ready = true
	s.updateSlot = (s.updateSlot + 1) % len(s.slots)

	if s.updateReadyCount == 0 {
		s.lastProgress = time.Now()
	}
	s.updateReadyCount++
	assert.Always(s.updateReadyCount <= len(s.slots), "too many frames ready for render (%d)", s.updateReadyCount)

	s.updateFinished.Broadcast()

	for s.running && s.updateReadyCount == len(s.slots) {
		s.renderFinished.Wait()
	}

	return s.updateRequired, s.running
}

// UpdateWaitForAllRenderingToFinish blocks the update goroutine until every
// ready frame has been rendered. An update request ends the wait early.
func (s *Synchronisation) UpdateWaitForAllRenderingToFinish() {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.waitForAllRenderingToFinish()
}

// must be called with the critical section held
func (s *Synchronisation) waitForAllRenderingToFinish() {
	for s.running && s.updateReadyCount != 0 && !s.updateRequested {
		s.renderFinished.Wait()
	}
}

// UpdateTryToSleep is called by the update goroutine when the scene has
// nothing more to do. The goroutine sleeps until an update is requested, the
// pipeline is resumed or a render reports that another update is required.
//
// Returns false when the pipeline has been stopped.
func (s *Synchronisation) UpdateTryToSleep() bool {
	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.updateRequired && !s.updateRequested {
		s.waitForAllRenderingToFinish()
	}

	for s.running && !s.updateRequired && !s.updateRequested {
		s.sleeping = true
		s.vsyncSleep.Broadcast()
		s.updateSleep.Wait()
		s.sleeping = false
		s.vsyncSleep.Broadcast()
	}

	s.updateRequested = false

	return s.running
}

// RenderSyncWithUpdate is the suspension point of the render goroutine. It
// blocks until a frame is ready. Returns false when the pipeline has been
// stopped.
func (s *Synchronisation) RenderSyncWithUpdate() bool {
	s.crit.Lock()
	defer s.crit.Unlock()

	for s.running && s.updateReadyCount == 0 {
		s.updateFinished.Wait()
	}

	if s.running {
		s.addMarker(MarkerRenderStart)
	}

	return s.running
}

// RenderFinished is called by the render goroutine once the frame in the
// render slot has been dealt with, even if nothing was drawn. The needsUpdate
// argument indicates that the scene needs another update.
func (s *Synchronisation) RenderFinished(needsUpdate bool) {
	s.crit.Lock()
	defer s.crit.Unlock()

	assert.Always(s.updateReadyCount > 0, "render finished without a frame being ready")

	s.slots[s.renderSlot].Ready = false
	s.slots[s.renderSlot].NeedsUpdate = needsUpdate
	s.renderSlot = (s.renderSlot + 1) % len(s.slots)

	s.updateRequired = needsUpdate
	s.updateReadyCount--
	s.lastProgress = time.Now()

	s.renderFinished.Broadcast()
	if needsUpdate {
		s.updateSleep.Broadcast()
	}

	s.addMarker(MarkerRenderEnd)
}

// SetRenderRunning enables or disables rendering. Frames are still consumed
// when rendering is disabled but nothing is drawn.
func (s *Synchronisation) SetRenderRunning(running bool) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.renderRunning = running
}

// RenderRunning returns true if rendering is enabled.
func (s *Synchronisation) RenderRunning() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.renderRunning
}

// Running returns true if the synchronisation has been started and not yet
// stopped.
func (s *Synchronisation) Running() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.running
}

// Paused returns true if the pipeline is paused.
func (s *Synchronisation) Paused() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.paused
}

// Sleeping returns true if the update goroutine is sleeping.
func (s *Synchronisation) Sleeping() bool {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.sleeping
}

// SetVSyncsPerRender sets the number of vsyncs that make up one tick of the
// pipeline. A value of two will halve the frame rate.
func (s *Synchronisation) SetVSyncsPerRender(n int) {
	assert.Always(n > 0, "vsyncs per render must be positive (%d)", n)
	s.crit.Lock()
	defer s.crit.Unlock()
	s.vsyncsPerRender = n
}

// VSyncsPerRender returns the value set by SetVSyncsPerRender().
func (s *Synchronisation) VSyncsPerRender() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.vsyncsPerRender
}

// FrameNumber returns the frame number of the most recent vsync tick.
func (s *Synchronisation) FrameNumber() uint32 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.tick.FrameNumber
}

// TimeMicroseconds returns the timestamp of the most recent vsync tick.
func (s *Synchronisation) TimeMicroseconds() uint64 {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.tick.Micros()
}

// UpdateSlot returns the index of the slot the update goroutine should write.
func (s *Synchronisation) UpdateSlot() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.updateSlot
}

// RenderSlot returns the index of the slot the render goroutine should read.
func (s *Synchronisation) RenderSlot() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.renderSlot
}

// Slots returns a copy of the frame slots.
func (s *Synchronisation) Slots() []FrameSlot {
	s.crit.Lock()
	defer s.crit.Unlock()
	c := make([]FrameSlot, len(s.slots))
	copy(c, s.slots)
	return c
}

// SinceRenderFinished returns how long a frame has been waiting for the render
// goroutine. Returns zero if no frame is waiting or if the pipeline is not in
// a state where a render is expected.
func (s *Synchronisation) SinceRenderFinished() time.Duration {
	s.crit.Lock()
	defer s.crit.Unlock()
	if !s.running || s.paused || s.updateReadyCount == 0 {
		return 0
	}
	return time.Since(s.lastProgress)
}

// State is a snapshot of the synchronisation state.
type State struct {
	Running                bool
	RenderRunning          bool
	Paused                 bool
	Sleeping               bool
	UpdateRequired         bool
	UpdateRequested        bool
	AllowUpdateWhilePaused bool
	UpdateReadyCount       int
	UpdateSlot             int
	RenderSlot             int
	Slots                  []FrameSlot
	Tick                   VSyncTick
	TickPending            bool
	VSyncsPerRender        int
	SurfaceLost            bool
}

// State returns a snapshot of the synchronisation state.
func (s *Synchronisation) State() State {
	s.crit.Lock()
	defer s.crit.Unlock()

	st := State{
		Running:                s.running,
		RenderRunning:          s.renderRunning,
		Paused:                 s.paused,
		Sleeping:               s.sleeping,
		UpdateRequired:         s.updateRequired,
		UpdateRequested:        s.updateRequested,
		AllowUpdateWhilePaused: s.allowUpdateWhilePaused,
		UpdateReadyCount:       s.updateReadyCount,
		UpdateSlot:             s.updateSlot,
		RenderSlot:             s.renderSlot,
		Slots:                  make([]FrameSlot, len(s.slots)),
		Tick:                   s.tick,
		TickPending:            s.tickPending,
		VSyncsPerRender:        s.vsyncsPerRender,
		SurfaceLost:            s.surfaceLost,
	}
	copy(st.Slots, s.slots)

	return st
}
