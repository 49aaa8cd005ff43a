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
	"time"
)

// MarkerType identifies a point in the pipeline.
type MarkerType int

// List of valid MarkerType values.
const (
	MarkerVSync MarkerType = iota
	MarkerUpdateStart
	MarkerUpdateEnd
	MarkerRenderStart
	MarkerRenderEnd
	MarkerPaused
	MarkerResume
)

func (m MarkerType) String() string {
	switch m {
	case MarkerVSync:
		return "VSYNC"
	case MarkerUpdateStart:
		return "UPDATE_START"
	case MarkerUpdateEnd:
		return "UPDATE_END"
	case MarkerRenderStart:
		return "RENDER_START"
	case MarkerRenderEnd:
		return "RENDER_END"
	case MarkerPaused:
		return "PAUSED"
	case MarkerResume:
		return "RESUME"
	}
	return "unknown marker"
}

// Marker is a timestamped MarkerType.
type Marker struct {
	Type      MarkerType
	Timestamp time.Time
}

func (m Marker) String() string {
	return m.Type.String()
}
