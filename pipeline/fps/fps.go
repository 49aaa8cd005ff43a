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

// Package fps records the frame rate of the update goroutine over a fixed
// number of seconds.
//
// Frame durations are attributed to one-second buckets exactly. A frame
// that straddles the boundary between two buckets contributes a fraction of
// itself to each, in proportion to the time spent on either side of the
// boundary. The sum of the seconds recorded in all buckets is therefore the
// sum of all the frame durations tracked, until the tracker is full.
package fps

import (
	"fmt"
	"io"
)

// Sample is one second of tracking. Frames is the (possibly fractional) number
// of frames that happened in the second. Seconds is the amount of the
// second that has been filled, which is 1.0 for every sample except the
// most recent.
type Sample struct {
	Frames  float64
	Seconds float64
}

// Tracker accumulates frame durations into one-second samples.
type Tracker struct {
	samples []Sample
	idx     int
}

// NewTracker is the preferred method of initialisation for the Tracker type.
// The seconds argument is the number of one-second samples to record.
func NewTracker(seconds int) (*Tracker, error) {
	if seconds <= 0 {
		return nil, fmt.Errorf("fps: tracking duration must be positive (%d)", seconds)
	}
	return &Tracker{
		samples: make([]Sample, seconds),
	}, nil
}

// Track adds the duration of a frame, in seconds. Returns true if the
// tracker is full. Durations of zero or less are ignored.
func (trk *Tracker) Track(frameSeconds float64) bool {
	if frameSeconds <= 0 {
		return trk.Full()
	}

	remaining := frameSeconds
	for remaining > 0 && !trk.Full() {
		s := &trk.samples[trk.idx]
		space := 1.0 - s.Seconds
		if remaining < space {
			s.Seconds += remaining
			s.Frames += remaining / frameSeconds
			remaining = 0
		} else {
			s.Seconds = 1.0
			s.Frames += space / frameSeconds
			remaining -= space
			trk.idx++
		}
	}

	return trk.Full()
}

// Full returns true if every sample has been filled.
func (trk *Tracker) Full() bool {
	return trk.idx >= len(trk.samples)
}

// Samples returns a copy of the samples that have been started.
func (trk *Tracker) Samples() []Sample {
	n := trk.idx
	if n < len(trk.samples) && trk.samples[n].Seconds > 0 {
		n++
	}
	c := make([]Sample, n)
	copy(c, trk.samples[:n])
	return c
}

// TotalSeconds returns the sum of the seconds recorded in every sample.
func (trk *Tracker) TotalSeconds() float64 {
	var t float64
	for _, s := range trk.samples {
		t += s.Seconds
	}
	return t
}

// Reset clears all samples.
func (trk *Tracker) Reset() {
	clear(trk.samples)
	trk.idx = 0
}

// Write the frame count of every started sample to io.Writer, one value per
// line.
func (trk *Tracker) Write(w io.Writer) error {
	for _, s := range trk.Samples() {
		if _, err := fmt.Fprintf(w, "%f\n", s.Frames); err != nil {
			return fmt.Errorf("fps: %w", err)
		}
	}
	return nil
}

func (trk *Tracker) String() string {
	return fmt.Sprintf("%d of %d seconds tracked", trk.idx, len(trk.samples))
}
