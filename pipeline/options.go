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
	"os"
	"path/filepath"
	"time"
)

// The number of frame slots shared by the update and render goroutines.
const (
	MinFrameSlots = 2
	MaxFrameSlots = 3
)

// FrameBudget is the duration of one vsync when there is no hardware vsync
// to measure. It is the budget of a 60Hz display.
const FrameBudget = 16667 * time.Microsecond

// Options used by NewController(). The values usually come from
// Preferences.Options() but can be created directly.
type Options struct {
	// number of frame slots. between MinFrameSlots and MaxFrameSlots
	FrameSlots int

	// number of vsyncs for every update/render cycle
	VSyncsPerRender int

	// use the hardware vsync of the VSyncMonitor if it is available
	HardwareVSync bool

	// length of the FPS tracking window in seconds. zero disables tracking
	FPSTrackingSeconds int

	// file the FPS samples are written to when tracking has completed
	FPSFile string

	// log the update status every N frames. zero disables logging
	UpdateStatusLogInterval int

	// warn when the render goroutine has made no progress for this long.
	// zero disables the warning
	StallWarning time.Duration
}

// DefaultFPSFile is the file FPS samples are written to unless the
// preferences say otherwise.
func DefaultFPSFile() string {
	return filepath.Join(os.TempDir(), "scenepipe_fps.txt")
}

// DefaultOptions returns the options used when there are no preferences.
func DefaultOptions() Options {
	return Options{
		FrameSlots:      MinFrameSlots,
		VSyncsPerRender: 1,
		HardwareVSync:   true,
		FPSFile:         DefaultFPSFile(),
		StallWarning:    2 * time.Second,
	}
}

// normalise values that would otherwise cause a panic further on
func (o Options) normalise() Options {
	if o.FrameSlots < MinFrameSlots {
		o.FrameSlots = MinFrameSlots
	} else if o.FrameSlots > MaxFrameSlots {
		o.FrameSlots = MaxFrameSlots
	}
	if o.VSyncsPerRender < 1 {
		o.VSyncsPerRender = 1
	}
	if o.FPSTrackingSeconds < 0 {
		o.FPSTrackingSeconds = 0
	}
	if o.UpdateStatusLogInterval < 0 {
		o.UpdateStatusLogInterval = 0
	}
	if o.StallWarning < 0 {
		o.StallWarning = 0
	}
	return o
}
