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

package fps_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/scenepipe/pipeline/fps"
	"github.com/jetsetilly/scenepipe/test"
)

const tolerance = 1e-5

func TestFractionalAttribution(t *testing.T) {
	trk, err := fps.NewTracker(2)
	test.DemandSuccess(t, err)

	for range 3 {
		trk.Track(0.4)
	}

	s := trk.Samples()
	test.DemandEquality(t, len(s), 2)
	test.ExpectApproximate(t, s[0].Seconds, 1.0, tolerance)
	test.ExpectApproximate(t, s[1].Seconds, 0.2, tolerance)
	test.ExpectApproximate(t, s[0].Frames, 2.5, tolerance)
	test.ExpectApproximate(t, s[1].Frames, 0.5, tolerance)
	test.ExpectApproximate(t, trk.TotalSeconds(), 1.2, tolerance)
	test.ExpectFailure(t, trk.Full())
}

func TestConservation(t *testing.T) {
	trk, err := fps.NewTracker(10)
	test.DemandSuccess(t, err)

	durations := []float64{0.016, 0.033, 0.7, 0.25, 1.3, 0.017, 0.45, 0.0999}

	var total float64
	var frames float64
	for _, d := range durations {
		trk.Track(d)
		total += d
		frames++
	}

	var seconds, counted float64
	for _, s := range trk.Samples() {
		seconds += s.Seconds
		counted += s.Frames
	}
	test.ExpectApproximate(t, seconds, total, tolerance)
	test.ExpectApproximate(t, counted, frames, tolerance)
}

func TestFrameLongerThanOneSecond(t *testing.T) {
	trk, err := fps.NewTracker(4)
	test.DemandSuccess(t, err)

	trk.Track(2.5)

	s := trk.Samples()
	test.DemandEquality(t, len(s), 3)
	test.ExpectApproximate(t, s[0].Frames, 0.4, tolerance)
	test.ExpectApproximate(t, s[1].Frames, 0.4, tolerance)
	test.ExpectApproximate(t, s[2].Frames, 0.2, tolerance)
	test.ExpectApproximate(t, s[2].Seconds, 0.5, tolerance)
}

func TestFull(t *testing.T) {
	trk, err := fps.NewTracker(1)
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, trk.Track(0.5))
	test.ExpectSuccess(t, trk.Track(0.75))
	test.ExpectSuccess(t, trk.Full())

	// excess time is not recorded once full
	test.ExpectApproximate(t, trk.TotalSeconds(), 1.0, tolerance)
	test.ExpectSuccess(t, trk.Track(1.0))
	test.ExpectApproximate(t, trk.TotalSeconds(), 1.0, tolerance)

	trk.Reset()
	test.ExpectFailure(t, trk.Full())
	test.ExpectEquality(t, len(trk.Samples()), 0)
}

func TestInvalid(t *testing.T) {
	_, err := fps.NewTracker(0)
	test.ExpectFailure(t, err)

	trk, err := fps.NewTracker(1)
	test.DemandSuccess(t, err)
	trk.Track(0)
	trk.Track(-1)
	test.ExpectEquality(t, len(trk.Samples()), 0)
}

func TestWrite(t *testing.T) {
	trk, err := fps.NewTracker(2)
	test.DemandSuccess(t, err)

	for range 3 {
		trk.Track(0.4)
	}

	w := &strings.Builder{}
	test.ExpectSuccess(t, trk.Write(w))
	test.ExpectEquality(t, w.String(), "2.500000\n0.500000\n")
}
