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
	"sync/atomic"
	"time"
)

// Monitor implements the pipeline.VSyncMonitor interface. Each call to
// DoSync() sleeps for the period of the monitor.
type Monitor struct {
	period    time.Duration
	hardware  bool
	available bool

	// only accessed by the vsync goroutine
	sequence uint32

	syncs       atomic.Int64
	initialised atomic.Bool
	terminated  atomic.Bool
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
// If hardware is false then the pipeline will use its software timer even
// though the monitor is available.
func NewMonitor(period time.Duration, hardware bool) *Monitor {
	return &Monitor{
		period:    period,
		hardware:  hardware,
		available: true,
	}
}

// NewUnavailableMonitor returns a monitor that fails to initialise.
func NewUnavailableMonitor() *Monitor {
	return &Monitor{}
}

// Initialize implements the pipeline.VSyncMonitor interface.
func (m *Monitor) Initialize() bool {
	m.initialised.Store(true)
	return m.available
}

// Terminate implements the pipeline.VSyncMonitor interface.
func (m *Monitor) Terminate() {
	m.terminated.Store(true)
}

// UseHardware implements the pipeline.VSyncMonitor interface.
func (m *Monitor) UseHardware() bool {
	return m.available && m.hardware
}

// DoSync implements the pipeline.VSyncMonitor interface.
func (m *Monitor) DoSync() (uint32, uint32, uint32, bool) {
	time.Sleep(m.period)
	m.syncs.Add(1)
	m.sequence++
	now := time.Now()
	return m.sequence, uint32(now.Unix()), uint32(now.Nanosecond() / 1000), true
}

// Syncs returns the number of calls to DoSync().
func (m *Monitor) Syncs() int {
	return int(m.syncs.Load())
}

// Initialised returns true if Initialize() has been called.
func (m *Monitor) Initialised() bool {
	return m.initialised.Load()
}

// Terminated returns true if Terminate() has been called.
func (m *Monitor) Terminated() bool {
	return m.terminated.Load()
}
