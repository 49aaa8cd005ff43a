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

package pipeline_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/jetsetilly/scenepipe/pipeline"
	"github.com/jetsetilly/scenepipe/surface/headless"
	"github.com/jetsetilly/scenepipe/test"
)

const timeout = 2 * time.Second

// testCore checks that the update and render goroutines never use the same
// slot at the same time and that update is never too far ahead of render
type testCore struct {
	slots           int
	secondsPerFrame float64

	keepUpdating      atomic.Uint32
	notify            atomic.Bool
	renderNeedsUpdate atomic.Bool

	// locked by a test to stall the render goroutine
	renderGate sync.Mutex

	updates atomic.Int64
	renders atomic.Int64

	writing     atomic.Int64
	reading     atomic.Int64
	violations  atomic.Int64
	tooFarAhead atomic.Int64

	contextCreated   atomic.Int64
	contextDestroyed atomic.Int64
	reloads          atomic.Int64
	minFrameTime     atomic.Uint32
}

func newTestCore(slots int, keep pipeline.KeepUpdating) *testCore {
	c := &testCore{slots: slots}
	c.keepUpdating.Store(uint32(keep))
	c.writing.Store(-1)
	c.reading.Store(-1)
	return c
}

func (c *testCore) Update(slot int, status *pipeline.UpdateStatus) {
	c.writing.Store(int64(slot))
	if c.reading.Load() == int64(slot) {
		c.violations.Add(1)
	}
	if c.updates.Load()-c.renders.Load() > int64(c.slots-1) {
		c.tooFarAhead.Add(1)
	}

	status.KeepUpdating = pipeline.KeepUpdating(c.keepUpdating.Load())
	status.NeedsNotification = c.notify.Load()
	status.SecondsFromLastFrame = c.secondsPerFrame

	c.updates.Add(1)
	c.writing.Store(-1)
}

func (c *testCore) Render(slot int, status *pipeline.RenderStatus) {
	c.renderGate.Lock()
	defer c.renderGate.Unlock()

	c.reading.Store(int64(slot))
	if c.writing.Load() == int64(slot) {
		c.violations.Add(1)
	}

	status.HasRendered = true
	status.NeedsUpdate = c.renderNeedsUpdate.Load()

	c.renders.Add(1)
	c.reading.Store(-1)
}

func (c *testCore) ContextCreated() { c.contextCreated.Add(1) }
func (c *testCore) ContextToBeDestroyed() { c.contextDestroyed.Add(1) }
func (c *testCore) RequestReloadResources() { c.reloads.Add(1) }

func (c *testCore) SetMinimumFrameTimeInterval(micros uint32) {
	c.minFrameTime.Store(micros)
}

type testTrigger struct {
	count atomic.Int64
}

func (t *testTrigger) Trigger() {
	t.count.Add(1)
}

type fixture struct {
	core    *testCore
	surface *headless.Surface
	factory *headless.EGLFactory
	monitor *headless.Monitor
	trigger *testTrigger
	ctl     *pipeline.Controller
}

func newFixture(t *testing.T, surface *headless.Surface, keep pipeline.KeepUpdating, opts pipeline.Options) *fixture {
	t.Helper()

	f := &fixture{
		core:    newTestCore(opts.FrameSlots, keep),
		surface: surface,
		factory: headless.NewEGLFactory(false),
		monitor: headless.NewMonitor(time.Millisecond, true),
		trigger: &testTrigger{},
	}

	var err error
	f.ctl, err = pipeline.NewController(pipeline.Services{
		Core:         f.core,
		Surface:      f.surface,
		EGLFactory:   f.factory,
		GL:           headless.GL{},
		VSyncMonitor: f.monitor,
		Trigger:      f.trigger,
	}, opts)
	test.DemandSuccess(t, err)

	t.Cleanup(f.ctl.Stop)

	return f
}

func testOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.StallWarning = 0
	return opts
}

func waitUntil(t *testing.T, cond func() bool, tags ...any) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Errorf("condition not met within %v %v", timeout, tags)
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

// wait for the pipeline to reach a steady state after a pause or after the
// update goroutine has gone to sleep
func settle() {
	time.Sleep(30 * time.Millisecond)
}

func TestNewControllerErrors(t *testing.T) {
	_, err := pipeline.NewController(pipeline.Services{}, testOptions())
	test.ExpectEquality(t, errors.Is(err, pipeline.ErrNoCore), true)

	_, err = pipeline.NewController(pipeline.Services{
		Core: newTestCore(2, pipeline.NotRequested),
	}, testOptions())
	test.ExpectEquality(t, errors.Is(err, pipeline.ErrNoSurface), true)

	_, err = pipeline.NewController(pipeline.Services{
		Core:    newTestCore(2, pipeline.NotRequested),
		Surface: headless.NewWindow("win"),
	}, testOptions())
	test.ExpectEquality(t, errors.Is(err, pipeline.ErrNoEGLFactory), true)
}

func TestStopWithoutStart(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, testOptions())
	test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout)
	test.ExpectEquality(t, f.factory.Created(), 0)
}

func TestLifecycle(t *testing.T) {
	for _, slots := range []int{2, 3} {
		opts := testOptions()
		opts.FrameSlots = slots

		f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, opts)
		f.ctl.Start()
		test.ExpectPanic(t, f.ctl.Start, slots)

		waitUntil(t, func() bool { return f.core.renders.Load() >= 50 }, slots)

		test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout, slots)
		test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout, slots)

		test.ExpectEquality(t, f.core.violations.Load(), int64(0), slots)
		test.ExpectEquality(t, f.core.tooFarAhead.Load(), int64(0), slots)

		test.ExpectEquality(t, f.factory.Created(), 1, slots)
		test.ExpectEquality(t, f.factory.Destroyed(), 1, slots)
		test.ExpectEquality(t, f.factory.EGL().Terminated(), true, slots)
		test.ExpectEquality(t, f.factory.EGL().SyncModes()[0], pipeline.SyncVerticalRetrace, slots)

		test.ExpectEquality(t, f.core.contextCreated.Load(), int64(1), slots)
		test.ExpectEquality(t, f.core.contextDestroyed.Load(), int64(1), slots)
		test.ExpectEquality(t, f.core.reloads.Load(), int64(1), slots)
		test.ExpectEquality(t, f.core.minFrameTime.Load(), uint32(16667), slots)

		calls := f.surface.Calls()
		test.ExpectEquality(t, slices.Equal(calls, []string{"InitializeEgl", "CreateEglSurface", "StopRender"}), true, calls)

		test.ExpectEquality(t, f.monitor.Terminated(), true, slots)
		test.ExpectEquality(t, f.surface.ConsumeEventsCount() >= 50, true, slots)
		test.ExpectEquality(t, f.surface.PostRenderCount() >= 50, true, slots)
	}
}

func TestIdlePipelineSleeps(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, testOptions())
	f.ctl.Start()

	waitUntil(t, func() bool { return f.ctl.State().Sleeping })
	settle()

	// nothing happens while the update goroutine is asleep, not even vsync
	updates := f.core.updates.Load()
	renders := f.core.renders.Load()
	syncs := f.monitor.Syncs()
	settle()
	test.ExpectEquality(t, f.core.updates.Load(), updates)
	test.ExpectEquality(t, f.core.renders.Load(), renders)
	test.ExpectEquality(t, f.monitor.Syncs() <= syncs+1, true)

	// an update request causes one update
	f.ctl.RequestUpdate()
	waitUntil(t, func() bool { return f.core.updates.Load() == updates+1 })
	waitUntil(t, func() bool { return f.ctl.State().Sleeping })
	settle()
	test.ExpectEquality(t, f.core.updates.Load(), updates+1)
	test.ExpectEquality(t, f.core.renders.Load(), renders+1)
}

func TestRenderRequestsUpdate(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, testOptions())
	f.core.renderNeedsUpdate.Store(true)
	f.ctl.Start()

	// the render keeps asking for updates so the update goroutine never
	// sleeps
	waitUntil(t, func() bool { return f.core.updates.Load() >= 20 })

	f.core.renderNeedsUpdate.Store(false)
	waitUntil(t, func() bool { return f.ctl.State().Sleeping })
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	waitUntil(t, func() bool { return f.core.updates.Load() >= 5 })

	f.ctl.Pause()
	settle()
	test.ExpectEquality(t, f.ctl.State().Paused, true)

	updates := f.core.updates.Load()
	settle()
	test.ExpectEquality(t, f.core.updates.Load(), updates)

	f.ctl.Resume()
	waitUntil(t, func() bool { return f.core.updates.Load() > updates+5 })
	test.ExpectEquality(t, f.core.violations.Load(), int64(0))
}

// the steady state update rate is the same before and after any number of
// pause and resume cycles
func TestPauseResumeSymmetry(t *testing.T) {
	opts := testOptions()
	opts.HardwareVSync = false

	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, opts)
	f.ctl.Start()
	waitUntil(t, func() bool { return f.core.updates.Load() >= 5 })

	const window = 500 * time.Millisecond
	rate := func() int64 {
		start := f.core.updates.Load()
		time.Sleep(window)
		return f.core.updates.Load() - start
	}

	before := rate()
	test.DemandEquality(t, before > 10, true, before)

	for i := range 100 {
		f.ctl.Pause()
		if i%10 == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		f.ctl.Resume()
		if i%25 == 0 {
			time.Sleep(20 * time.Millisecond)
		}
	}
	test.ExpectEquality(t, f.ctl.State().Paused, false)
	settle()

	after := rate()
	diff := after - before
	if diff < 0 {
		diff = -diff
	}
	test.ExpectEquality(t, diff <= max(before/5, 3), true, before, after)
	test.ExpectEquality(t, f.core.violations.Load(), int64(0))
	test.ExpectEquality(t, f.core.tooFarAhead.Load(), int64(0))
}

func TestResumeWakesSleeper(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, testOptions())
	f.ctl.Start()

	waitUntil(t, func() bool { return f.ctl.State().Sleeping })
	f.ctl.Pause()
	settle()
	updates := f.core.updates.Load()

	f.ctl.Resume()
	waitUntil(t, func() bool { return f.core.updates.Load() > updates })
}

func TestRequestUpdateOnce(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	waitUntil(t, func() bool { return f.core.updates.Load() >= 5 })
	f.ctl.Pause()
	settle()

	updates := f.core.updates.Load()
	f.ctl.RequestUpdateOnce()
	waitUntil(t, func() bool { return f.core.updates.Load() == updates+1 })
	settle()
	test.ExpectEquality(t, f.core.updates.Load(), updates+1)
	test.ExpectEquality(t, f.ctl.State().Paused, true)
}

func TestReplaceSurface(t *testing.T) {
	a := headless.NewWindow("a")
	f := newFixture(t, a, pipeline.AnimationsRunning, testOptions())

	b := headless.NewWindow("b")
	test.ExpectEquality(t, f.ctl.ReplaceSurface(b), false)

	f.ctl.Start()
	waitUntil(t, func() bool { return f.core.renders.Load() >= 5 })

	test.ExpectEquality(t, f.ctl.ReplaceSurface(b), true)
	prerender := a.PreRenderCount()

	// the new surface is in place by the time ReplaceSurface() returns
	test.ExpectEquality(t, f.factory.EGL().SurfacesReplaced(), 1)
	test.ExpectEquality(t, slices.Contains(b.Calls(), "ReplaceEGLSurface"), true, b.Calls())

	waitUntil(t, func() bool { return b.PreRenderCount() >= 10 })
	test.ExpectEquality(t, a.PreRenderCount(), prerender)

	test.ExpectEquality(t, a.DisplayOwner(), false)
	test.ExpectEquality(t, b.DisplayOwner(), true)
	test.ExpectEquality(t, f.factory.EGL().SurfacesReplaced(), 1)

	f.ctl.Stop()

	test.ExpectEquality(t, slices.Equal(a.Calls(), []string{"InitializeEgl", "CreateEglSurface", "TransferDisplayOwner"}), true, a.Calls())
	test.ExpectEquality(t, slices.Equal(b.Calls(), []string{"ReplaceEGLSurface", "StopRender"}), true, b.Calls())

	// the context survived the replacement
	test.ExpectEquality(t, f.core.contextCreated.Load(), int64(1))
	test.ExpectEquality(t, f.core.contextDestroyed.Load(), int64(1))
	test.ExpectEquality(t, f.core.violations.Load(), int64(0))
}

func TestReplaceSurfaceContextLost(t *testing.T) {
	f := newFixture(t, headless.NewWindow("a"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	b := headless.NewWindow("b")
	b.SetContextLost(true)
	test.ExpectEquality(t, f.ctl.ReplaceSurface(b), true)

	test.ExpectEquality(t, f.core.contextCreated.Load(), int64(2))
	test.ExpectEquality(t, f.core.contextDestroyed.Load(), int64(1))
	test.ExpectEquality(t, f.core.reloads.Load(), int64(2))
}

func TestReplaceSurfaceWhilePaused(t *testing.T) {
	f := newFixture(t, headless.NewWindow("a"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()
	waitUntil(t, func() bool { return f.core.updates.Load() >= 5 })

	f.ctl.Pause()
	settle()

	b := headless.NewWindow("b")
	test.ExpectCompletion(t, test.Go(func() { f.ctl.ReplaceSurface(b) }), timeout)
	test.ExpectEquality(t, b.DisplayOwner(), true)
	test.ExpectEquality(t, f.ctl.State().Paused, true)
}

func TestReplaceSurfaceWhileSleeping(t *testing.T) {
	f := newFixture(t, headless.NewWindow("a"), pipeline.NotRequested, testOptions())
	f.ctl.Start()
	waitUntil(t, func() bool { return f.ctl.State().Sleeping })

	b := headless.NewWindow("b")
	test.ExpectCompletion(t, test.Go(func() { f.ctl.ReplaceSurface(b) }), timeout)
	test.ExpectEquality(t, b.DisplayOwner(), true)
}

func TestReplaceWithSameSurface(t *testing.T) {
	a := headless.NewWindow("a")
	f := newFixture(t, a, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()
	test.ExpectPanic(t, func() { f.ctl.ReplaceSurface(a) })
}

func TestPixmapSync(t *testing.T) {
	pix := headless.NewPixmap("pix")
	f := newFixture(t, pix, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	// every buffer swap must be acknowledged before the next render
	waitUntil(t, func() bool { return pix.PostRenderCount() == 1 })
	settle()
	test.ExpectEquality(t, pix.PostRenderCount(), 1)

	f.ctl.RenderSync()
	waitUntil(t, func() bool { return pix.PostRenderCount() == 2 })
	settle()
	test.ExpectEquality(t, pix.PostRenderCount(), 2)

	// stopping releases the render goroutine from the acknowledgement wait
	test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout)
}

func TestPixmapReplacedByWindow(t *testing.T) {
	pix := headless.NewPixmap("pix")
	f := newFixture(t, pix, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	waitUntil(t, func() bool { return pix.PostRenderCount() == 1 })

	win := headless.NewWindow("win")
	test.ExpectCompletion(t, test.Go(func() { f.ctl.ReplaceSurface(win) }), timeout)
	waitUntil(t, func() bool { return win.PostRenderCount() >= 10 })
	test.ExpectEquality(t, pix.PostRenderCount(), 1)
}

func TestSurfaceNotReady(t *testing.T) {
	win := headless.NewWindow("win")
	win.SetReady(false)

	f := newFixture(t, win, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	// frames are consumed but nothing is rendered
	waitUntil(t, func() bool { return win.PreRenderCount() >= 10 })
	test.ExpectEquality(t, f.core.renders.Load(), int64(0))
	test.ExpectEquality(t, win.PostRenderCount(), 0)

	win.SetReady(true)
	waitUntil(t, func() bool { return f.core.renders.Load() >= 10 })
}

func TestSurfaceLost(t *testing.T) {
	win := headless.NewWindow("win")
	f := newFixture(t, win, pipeline.AnimationsRunning, testOptions())

	// nothing to lose before the pipeline starts
	f.ctl.SurfaceLost()
	test.ExpectEquality(t, f.ctl.State().SurfaceLost, false)

	f.ctl.Start()
	waitUntil(t, func() bool { return win.PostRenderCount() >= 5 })

	f.ctl.SurfaceLost()
	test.ExpectEquality(t, f.ctl.State().SurfaceLost, true)
	settle()

	// updates carry on but the lost surface is never drawn to
	updates := f.core.updates.Load()
	renders := f.core.renders.Load()
	post := win.PostRenderCount()
	prerender := win.PreRenderCount()
	settle()
	test.ExpectEquality(t, f.core.updates.Load() > updates, true)
	test.ExpectEquality(t, f.core.renders.Load(), renders)
	test.ExpectEquality(t, win.PostRenderCount(), post)
	test.ExpectEquality(t, win.PreRenderCount(), prerender)
	test.ExpectEquality(t, f.core.violations.Load(), int64(0))

	test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout)
	test.ExpectEquality(t, win.Stopped(), true)
	test.ExpectEquality(t, f.factory.Destroyed(), 1)
}

func TestSurfaceLostThenReplaced(t *testing.T) {
	a := headless.NewWindow("a")
	f := newFixture(t, a, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()
	waitUntil(t, func() bool { return a.PostRenderCount() >= 5 })

	f.ctl.SurfaceLost()
	settle()
	renders := f.core.renders.Load()

	b := headless.NewWindow("b")
	test.ExpectEquality(t, f.ctl.ReplaceSurface(b), true)
	test.ExpectEquality(t, f.ctl.State().SurfaceLost, false)

	waitUntil(t, func() bool { return b.PostRenderCount() >= 10 })
	test.ExpectEquality(t, f.core.renders.Load() > renders, true)
	test.ExpectEquality(t, b.DisplayOwner(), true)
}

func TestSurfaceLostWhilePaused(t *testing.T) {
	a := headless.NewWindow("a")
	f := newFixture(t, a, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()
	waitUntil(t, func() bool { return f.core.updates.Load() >= 5 })

	f.ctl.Pause()
	settle()
	updates := f.core.updates.Load()

	// the loss is processed even though the pipeline is paused
	f.ctl.SurfaceLost()
	waitUntil(t, func() bool { return f.core.updates.Load() == updates+1 })
	test.ExpectEquality(t, f.ctl.State().Paused, true)

	b := headless.NewWindow("b")
	test.ExpectCompletion(t, test.Go(func() { f.ctl.ReplaceSurface(b) }), timeout)
	test.ExpectEquality(t, b.DisplayOwner(), true)
}

func TestPixmapSurfaceLost(t *testing.T) {
	pix := headless.NewPixmap("pix")
	f := newFixture(t, pix, pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	// the render goroutine is waiting for an acknowledgement that the lost
	// surface will never give
	waitUntil(t, func() bool { return pix.PostRenderCount() == 1 })
	updates := f.core.updates.Load()

	f.ctl.SurfaceLost()
	waitUntil(t, func() bool { return f.core.updates.Load() > updates+10 })
	test.ExpectEquality(t, pix.PostRenderCount(), 1)

	test.ExpectCompletion(t, test.Go(f.ctl.Stop), timeout)
}

func TestSetVSyncMode(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	f.ctl.SetVSyncMode(pipeline.SyncAdaptive)
	waitUntil(t, func() bool {
		egl := f.factory.EGL()
		if egl == nil {
			return false
		}
		modes := egl.SyncModes()
		return len(modes) > 0 && modes[len(modes)-1] == pipeline.SyncAdaptive
	})
	test.ExpectEquality(t, len(f.factory.EGL().SyncModes()), 2)
}

func TestSetRenderRefreshRate(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, testOptions())
	f.ctl.Start()

	f.ctl.SetRenderRefreshRate(2)
	test.ExpectEquality(t, f.ctl.State().VSyncsPerRender, 2)
	test.ExpectEquality(t, f.core.minFrameTime.Load(), uint32(33334))

	f.ctl.SetRenderRefreshRate(0)
	test.ExpectEquality(t, f.ctl.State().VSyncsPerRender, 2)

	// two hardware syncs for every update
	f.ctl.Stop()
	updates := f.core.updates.Load()
	test.ExpectEquality(t, int64(f.monitor.Syncs()) < 2*updates+10, true)
}

func TestTrigger(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, testOptions())
	f.core.notify.Store(true)
	f.ctl.Start()
	waitUntil(t, func() bool { return f.trigger.count.Load() >= 5 })
}

func TestFPSFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fps.txt")

	opts := testOptions()
	opts.FPSTrackingSeconds = 1
	opts.FPSFile = fn

	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, opts)
	f.core.secondsPerFrame = 0.25
	f.ctl.Start()

	waitUntil(t, func() bool { return f.core.updates.Load() >= 4 })
	f.ctl.Stop()

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), "4.000000\n")
}

func TestFPSFlushedOnStop(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "fps.txt")

	opts := testOptions()
	opts.FPSTrackingSeconds = 10
	opts.FPSFile = fn

	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, opts)
	f.core.secondsPerFrame = 0.5
	f.ctl.Start()

	waitUntil(t, func() bool { return f.ctl.State().Sleeping })
	f.ctl.Stop()

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), "1.000000\n")
}

func TestUpdateStatusLog(t *testing.T) {
	opts := testOptions()
	opts.UpdateStatusLogInterval = 1

	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, opts)
	f.ctl.Start()

	waitUntil(t, func() bool {
		var b strings.Builder
		logger.Tail(&b, 10)
		return strings.Contains(b.String(), "update: keepUpdating: true because: <animations running>")
	})
}

func TestStallWarning(t *testing.T) {
	opts := testOptions()
	opts.StallWarning = 50 * time.Millisecond

	f := newFixture(t, headless.NewWindow("win"), pipeline.AnimationsRunning, opts)

	f.core.renderGate.Lock()
	f.ctl.Start()
	waitUntil(t, func() bool { return f.ctl.Stalls() == 1 })
	f.core.renderGate.Unlock()

	waitUntil(t, func() bool { return f.core.renders.Load() >= 5 })
	test.ExpectEquality(t, f.ctl.Stalls(), 1)
}

func TestDumpState(t *testing.T) {
	f := newFixture(t, headless.NewWindow("win"), pipeline.NotRequested, testOptions())

	var b bytes.Buffer
	test.ExpectSuccess(t, f.ctl.DumpState(&b))
	test.ExpectEquality(t, strings.Contains(b.String(), "digraph"), true)
}
