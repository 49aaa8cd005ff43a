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
	"path/filepath"
	"testing"
	"time"

	"github.com/jetsetilly/scenepipe/prefs"
	"github.com/jetsetilly/scenepipe/test"
)

func TestPreferencesDefaults(t *testing.T) {
	p, err := newPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Options(), DefaultOptions())
}

func TestPreferencesValidation(t *testing.T) {
	p, err := newPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, p.FrameSlots.Set(1))
	test.ExpectFailure(t, p.FrameSlots.Set(4))
	test.ExpectSuccess(t, p.FrameSlots.Set(3))
	test.ExpectFailure(t, p.VSyncsPerRender.Set(0))
	test.ExpectFailure(t, p.StallWarning.Set(-1.0))

	// a failed value does not replace the current value
	test.ExpectEquality(t, p.Options().FrameSlots, 3)
	test.ExpectEquality(t, p.Options().VSyncsPerRender, 1)
}

func TestPreferencesSaveLoad(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "preferences")

	p, err := newPreferences(pth)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, p.FrameSlots.Set(3))
	test.ExpectSuccess(t, p.StallWarning.Set(0.5))
	test.ExpectSuccess(t, p.HardwareVSync.Set(false))
	test.ExpectSuccess(t, p.Save())

	q, err := newPreferences(pth)
	test.DemandSuccess(t, err)
	opts := q.Options()
	test.ExpectEquality(t, opts.FrameSlots, 3)
	test.ExpectEquality(t, opts.StallWarning, 500*time.Millisecond)
	test.ExpectEquality(t, opts.HardwareVSync, false)

	test.ExpectSuccess(t, q.SetDefaults())
	test.ExpectEquality(t, q.Options(), DefaultOptions())

	// reloading from disk restores the saved values
	test.ExpectSuccess(t, q.Load())
	test.ExpectEquality(t, q.Options().FrameSlots, 3)
}

func TestPreferencesCommandLine(t *testing.T) {
	prefs.PushCommandLineStack("pipeline.vsyncsPerRender::2; pipeline.fpsTrackingSeconds::5")
	defer prefs.PopCommandLineStack()

	p, err := newPreferences(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Options().VSyncsPerRender, 2)
	test.ExpectEquality(t, p.Options().FPSTrackingSeconds, 5)
}

func TestPreferencesFromResourcePath(t *testing.T) {
	t.Chdir(t.TempDir())

	p, err := NewPreferences()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Options().FrameSlots, MinFrameSlots)
}

func TestOptionsNormalise(t *testing.T) {
	o := Options{FrameSlots: 10, VSyncsPerRender: -1, StallWarning: -time.Second}.normalise()
	test.ExpectEquality(t, o.FrameSlots, MaxFrameSlots)
	test.ExpectEquality(t, o.VSyncsPerRender, 1)
	test.ExpectEquality(t, o.StallWarning, time.Duration(0))

	o = Options{}.normalise()
	test.ExpectEquality(t, o.FrameSlots, MinFrameSlots)
}
