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
	"time"

	"github.com/jetsetilly/scenepipe/logger"
	"github.com/veandco/go-sdl2/sdl"
)

// DisplayMonitor implements the pipeline.VSyncMonitor interface. SDL does not
// expose the vertical blank directly so syncs are paced against the refresh
// rate of the display using the SDL performance counter.
type DisplayMonitor struct {
	plt *Platform

	period    time.Duration
	frequency uint64
	start     uint64
}

// NewDisplayMonitor is the preferred method of initialisation for the
// DisplayMonitor type.
func NewDisplayMonitor(plt *Platform) *DisplayMonitor {
	return &DisplayMonitor{plt: plt}
}

// Initialize implements the pipeline.VSyncMonitor interface. Fails if the
// refresh rate of the display is unknown.
func (m *DisplayMonitor) Initialize() bool {
	rate := m.plt.RefreshRate()
	if rate <= 0 {
		logger.Log(logger.Allow, "sdl", "refresh rate unknown. display monitor unavailable")
		return false
	}

	m.period = time.Second / time.Duration(rate)
	m.frequency = sdl.GetPerformanceFrequency()
	m.start = sdl.GetPerformanceCounter()
	return m.frequency > 0
}

// Terminate implements the pipeline.VSyncMonitor interface.
func (m *DisplayMonitor) Terminate() {
}

// UseHardware implements the pipeline.VSyncMonitor interface.
func (m *DisplayMonitor) UseHardware() bool {
	return m.period > 0
}

// DoSync implements the pipeline.VSyncMonitor interface. Blocks until the
// start of the next refresh period.
func (m *DisplayMonitor) DoSync() (uint32, uint32, uint32, bool) {
	now := m.elapsed()
	next := (now/m.period + 1) * m.period
	time.Sleep(next - now)

	seq := uint32(next / m.period)
	sec := uint32(next / time.Second)
	usec := uint32((next % time.Second) / time.Microsecond)
	return seq, sec, usec, true
}

func (m *DisplayMonitor) elapsed() time.Duration {
	ticks := sdl.GetPerformanceCounter() - m.start
	secs := ticks / m.frequency
	rem := ticks % m.frequency
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/m.frequency)
}
