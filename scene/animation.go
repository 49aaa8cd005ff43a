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
	"time"
)

// animation moves a node by a fixed amount over a duration. an animation with
// no duration moves the node back and forth forever with a period of
// loopPeriod
type animation struct {
	node     string
	dx, dy   float64
	duration time.Duration
	elapsed  time.Duration
}

const loopPeriod = 2 * time.Second

func (a *animation) finished() bool {
	return a.duration > 0 && a.elapsed >= a.duration
}

// progress of the animation in the range 0 to 1
func (a *animation) progress(elapsed time.Duration) float64 {
	if a.duration > 0 {
		if elapsed >= a.duration {
			return 1.0
		}
		return float64(elapsed) / float64(a.duration)
	}

	// triangle wave for looping animations
	p := float64(elapsed%loopPeriod) / float64(loopPeriod) * 2.0
	if p > 1.0 {
		p = 2.0 - p
	}
	return p
}

func (a *animation) advance(n *Node, dt time.Duration) {
	before := a.progress(a.elapsed)
	a.elapsed += dt
	after := a.progress(a.elapsed)
	n.X += a.dx * (after - before)
	n.Y += a.dy * (after - before)
}
