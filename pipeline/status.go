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
	"strings"
)

// KeepUpdating is a bitmask of reasons for the scene to require another
// update.
type KeepUpdating uint32

// List of valid KeepUpdating bits.
const (
	NotRequested         KeepUpdating = 0
	StageKeepRendering   KeepUpdating = 1 << 0
	IncomingMessages     KeepUpdating = 1 << 1
	AnimationsRunning    KeepUpdating = 1 << 2
	DynamicsChanged      KeepUpdating = 1 << 3
	LoadingResources     KeepUpdating = 1 << 4
	NotificationsPending KeepUpdating = 1 << 5
)

var keepUpdatingReasons = []struct {
	bit    KeepUpdating
	reason string
}{
	{StageKeepRendering, "<keep rendering requested>"},
	{IncomingMessages, "<messages sent to update>"},
	{AnimationsRunning, "<animations running>"},
	{DynamicsChanged, "<dynamics running>"},
	{LoadingResources, "<resources loading>"},
	{NotificationsPending, "<notifications pending>"},
}

func (k KeepUpdating) String() string {
	if k == NotRequested {
		return "<not requested>"
	}
	s := strings.Builder{}
	for _, r := range keepUpdatingReasons {
		if k&r.bit == r.bit {
			s.WriteString(r.reason)
			s.WriteString(" ")
		}
	}
	return strings.TrimSpace(s.String())
}

// UpdateStatus is filled in by Core.Update().
type UpdateStatus struct {
	KeepUpdating KeepUpdating

	// the UI goroutine should be notified. the pipeline will fire the
	// Trigger in the Services
	NeedsNotification bool

	// time since the previous frame, in seconds. used for FPS tracking
	SecondsFromLastFrame float64
}

// RenderStatus is filled in by Core.Render().
type RenderStatus struct {
	// another update is required because of something that happened during
	// the render
	NeedsUpdate bool

	// something was drawn. the surface buffers will only be swapped if this
	// is true
	HasRendered bool
}

// FrameSlot is one of the frames produced by Update and consumed by Render.
type FrameSlot struct {
	Index       int
	Ready       bool
	NeedsUpdate bool
}

// VSyncTick is produced once per frame by the VSyncNotifier.
type VSyncTick struct {
	Valid        bool
	FrameNumber  uint32
	Seconds      uint32
	Microseconds uint32
}

// Micros returns the timestamp of the tick in microseconds.
func (t VSyncTick) Micros() uint64 {
	return uint64(t.Seconds)*1000000 + uint64(t.Microseconds)
}
