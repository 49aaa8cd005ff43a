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
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/test"
)

func TestAnimation(t *testing.T) {
	a := &animation{dx: 10, dy: -4, duration: 100 * time.Millisecond}
	var n Node

	a.advance(&n, 50*time.Millisecond)
	test.ExpectApproximate(t, n.X, 5.0, 0.0001)
	test.ExpectApproximate(t, n.Y, -2.0, 0.0001)
	test.ExpectEquality(t, a.finished(), false)

	// the animation does not overshoot
	a.advance(&n, 100*time.Millisecond)
	test.ExpectApproximate(t, n.X, 10.0, 0.0001)
	test.ExpectApproximate(t, n.Y, -4.0, 0.0001)
	test.ExpectEquality(t, a.finished(), true)
}

func TestLoopingAnimation(t *testing.T) {
	a := &animation{dx: 10}
	var n Node

	a.advance(&n, loopPeriod/4)
	test.ExpectApproximate(t, n.X, 5.0, 0.0001)

	a.advance(&n, loopPeriod/4)
	test.ExpectApproximate(t, n.X, 10.0, 0.0001)

	a.advance(&n, loopPeriod/2)
	test.ExpectApproximate(t, n.X, 0.0, 0.0001)
	test.ExpectEquality(t, a.finished(), false)
}
