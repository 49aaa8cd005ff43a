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
	"errors"
	"fmt"
	"time"

	"github.com/jetsetilly/scenepipe/paths"
	"github.com/jetsetilly/scenepipe/prefs"
)

// Preferences defines and collates all the preference values used by the
// pipeline.
type Preferences struct {
	dsk *prefs.Disk

	// number of frame slots shared by the update and render goroutines
	FrameSlots prefs.Int

	// number of vsyncs for every update/render cycle. a value of two halves
	// the frame rate
	VSyncsPerRender prefs.Int

	// use the hardware vsync if the VSyncMonitor supports it
	HardwareVSync prefs.Bool

	// seconds of FPS samples to collect. zero disables tracking
	FPSTrackingSeconds prefs.Int
	FPSFile            prefs.String

	// log update status every N frames. zero disables logging
	UpdateStatusLogInterval prefs.Int

	// seconds without render progress before a warning is logged
	StallWarning prefs.Float
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences() (*Preferences, error) {
	pth, err := paths.ResourcePath("", prefs.DefaultPrefsFile)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return newPreferences(pth)
}

func newPreferences(pth string) (*Preferences, error) {
	p := &Preferences{}

	p.FrameSlots.SetHookPre(func(v prefs.Value) error {
		n := v.(int)
		if n < MinFrameSlots || n > MaxFrameSlots {
			return fmt.Errorf("pipeline: frame slots must be between %d and %d", MinFrameSlots, MaxFrameSlots)
		}
		return nil
	})
	p.VSyncsPerRender.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 1 {
			return fmt.Errorf("pipeline: vsyncs per render must be at least one")
		}
		return nil
	})
	p.StallWarning.SetHookPre(func(v prefs.Value) error {
		if v.(float64) < 0 {
			return fmt.Errorf("pipeline: stall warning cannot be negative")
		}
		return nil
	})

	if err := p.SetDefaults(); err != nil {
		return nil, err
	}

	var err error
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	for _, e := range []struct {
		key string
		p   prefs.Preference
	}{
		{key: "pipeline.frameSlots", p: &p.FrameSlots},
		{key: "pipeline.vsyncsPerRender", p: &p.VSyncsPerRender},
		{key: "pipeline.hardwareVSync", p: &p.HardwareVSync},
		{key: "pipeline.fpsTrackingSeconds", p: &p.FPSTrackingSeconds},
		{key: "pipeline.fpsFile", p: &p.FPSFile},
		{key: "pipeline.updateStatusLogInterval", p: &p.UpdateStatusLogInterval},
		{key: "pipeline.stallWarning", p: &p.StallWarning},
	} {
		if err := p.dsk.Add(e.key, e.p); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !errors.Is(err, prefs.NoPrefsFile) {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() error {
	def := DefaultOptions()
	if err := p.FrameSlots.Set(def.FrameSlots); err != nil {
		return err
	}
	if err := p.VSyncsPerRender.Set(def.VSyncsPerRender); err != nil {
		return err
	}
	if err := p.HardwareVSync.Set(def.HardwareVSync); err != nil {
		return err
	}
	if err := p.FPSTrackingSeconds.Set(def.FPSTrackingSeconds); err != nil {
		return err
	}
	if err := p.FPSFile.Set(def.FPSFile); err != nil {
		return err
	}
	if err := p.UpdateStatusLogInterval.Set(def.UpdateStatusLogInterval); err != nil {
		return err
	}
	return p.StallWarning.Set(def.StallWarning.Seconds())
}

// Load pipeline preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current pipeline preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Options converts the current preference values into an Options instance
// suitable for NewController().
func (p *Preferences) Options() Options {
	return Options{
		FrameSlots:              p.FrameSlots.Get().(int),
		VSyncsPerRender:         p.VSyncsPerRender.Get().(int),
		HardwareVSync:           p.HardwareVSync.Get().(bool),
		FPSTrackingSeconds:      p.FPSTrackingSeconds.Get().(int),
		FPSFile:                 p.FPSFile.Get().(string),
		UpdateStatusLogInterval: p.UpdateStatusLogInterval.Get().(int),
		StallWarning:            time.Duration(p.StallWarning.Get().(float64) * float64(time.Second)),
	}
}
